// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package testing

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kraklabs/jnkn/pkg/graph"
	"github.com/kraklabs/jnkn/pkg/memgraph"
	"github.com/kraklabs/jnkn/pkg/store"
)

// SetupTestStore creates a temp-file sqlite-backed store for testing. The
// store is automatically closed when the test finishes. A real file (not
// ":memory:") is used so tests exercise the same WAL/pragma path
// production opens with.
func SetupTestStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "jnkn.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// SeedFile replaces file's nodes and edges in st via ReplaceFile, with a
// ScanMetadata carrying only Path, NodeCount and EdgeCount (tests that care
// about other scan metadata fields should call st.SaveScanMetadata
// directly instead).
func SeedFile(t *testing.T, st *store.Store, file string, nodes []graph.Node, edges []graph.Edge) {
	t.Helper()

	meta := store.ScanMetadata{Path: file, NodeCount: len(nodes), EdgeCount: len(edges)}
	if err := st.ReplaceFile(context.Background(), file, nodes, edges, meta); err != nil {
		t.Fatalf("failed to seed file %s: %v", file, err)
	}
}

// SetupTestGraph builds an in-memory graph directly from nodes and edges,
// for tests that exercise pkg/stitch, pkg/impact, or pkg/suppress without
// a store round trip.
func SetupTestGraph(nodes []graph.Node, edges []graph.Edge) *memgraph.Graph {
	return memgraph.Build(nodes, edges)
}

// EnvNode builds a minimal environment-variable node.
func EnvNode(name string) graph.Node {
	return graph.Node{ID: graph.EnvID(name), Name: name, Type: graph.NodeEnvVar}
}

// FileNode builds a minimal file node.
func FileNode(path string) graph.Node {
	return graph.Node{ID: graph.FileID(path), Name: filepath.Base(path), Type: graph.NodeFile, Path: path}
}

// InfraNode builds a minimal infrastructure-resource node. metadata may be
// nil.
func InfraNode(provider, resource, localName string, metadata map[string]string) graph.Node {
	return graph.Node{
		ID:       graph.InfraID(provider, resource, localName),
		Name:     localName,
		Type:     graph.NodeInfra,
		Metadata: metadata,
	}
}
