// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/jnkn/pkg/graph"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "jnkn.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUpsertNodesIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n := graph.Node{ID: graph.EnvID("PAYMENT_DB_HOST"), Name: "PAYMENT_DB_HOST", Type: graph.NodeEnvVar}
	require.NoError(t, s.UpsertNodes(ctx, "src/app.go", []graph.Node{n}))
	require.NoError(t, s.UpsertNodes(ctx, "src/app.go", []graph.Node{n}))

	nodes, _, err := s.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func TestUpsertEdgesIdempotentByTriple(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := graph.Edge{SourceID: "infra:x", TargetID: "env:Y", Type: graph.EdgeProvides, Confidence: 0.9}
	require.NoError(t, s.UpsertEdges(ctx, []graph.Edge{e}))
	e.Confidence = 0.95
	require.NoError(t, s.UpsertEdges(ctx, []graph.Edge{e}))

	_, edges, err := s.LoadGraph(ctx)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, 0.95, edges[0].Confidence)
}

func TestDeleteNodesByFileCascadesEdges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fileNode := graph.Node{ID: graph.FileID("src/app.go"), Name: "app.go", Type: graph.NodeFile, Path: "src/app.go"}
	envNode := graph.Node{ID: graph.EnvID("PAYMENT_DB_HOST"), Name: "PAYMENT_DB_HOST", Type: graph.NodeEnvVar}
	require.NoError(t, s.UpsertNodes(ctx, "src/app.go", []graph.Node{fileNode, envNode}))

	edge := graph.Edge{SourceID: fileNode.ID, TargetID: envNode.ID, Type: graph.EdgeReads, Confidence: graph.DirectEdgeConfidence}
	require.NoError(t, s.UpsertEdges(ctx, []graph.Edge{edge}))

	require.NoError(t, s.DeleteNodesByFile(ctx, "src/app.go"))

	nodes, edges, err := s.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Empty(t, nodes)
	assert.Empty(t, edges)
}

func TestDeleteNodesByFileKeepsNodesOwnedByAnotherFile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	envNode := graph.Node{ID: graph.EnvID("SHARED"), Name: "SHARED", Type: graph.NodeEnvVar}
	require.NoError(t, s.UpsertNodes(ctx, "a.go", []graph.Node{envNode}))
	require.NoError(t, s.UpsertNodes(ctx, "b.go", []graph.Node{envNode}))

	require.NoError(t, s.DeleteNodesByFile(ctx, "a.go"))

	nodes, _, err := s.LoadGraph(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, envNode.ID, nodes[0].ID)
}

func TestReplaceFileIsAtomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fileNode := graph.Node{ID: graph.FileID("src/app.go"), Name: "app.go", Type: graph.NodeFile, Path: "src/app.go"}
	envNode := graph.Node{ID: graph.EnvID("A"), Name: "A", Type: graph.NodeEnvVar}
	edge := graph.Edge{SourceID: fileNode.ID, TargetID: envNode.ID, Type: graph.EdgeReads, Confidence: 1.0}
	meta := ScanMetadata{Path: "src/app.go", Hash: "h1", NodeCount: 2, EdgeCount: 1, Timestamp: 100}

	require.NoError(t, s.ReplaceFile(ctx, "src/app.go", []graph.Node{fileNode, envNode}, []graph.Edge{edge}, meta))

	nodes, edges, err := s.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
	assert.Len(t, edges, 1)

	got, ok, err := s.ScanMetadataFor(ctx, "src/app.go")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "h1", got.Hash)

	// Re-running with a smaller node set must drop the stale env node.
	meta2 := ScanMetadata{Path: "src/app.go", Hash: "h2", NodeCount: 1, EdgeCount: 0, Timestamp: 200}
	require.NoError(t, s.ReplaceFile(ctx, "src/app.go", []graph.Node{fileNode}, nil, meta2))

	nodes, edges, err = s.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
	assert.Empty(t, edges)
}

func TestScanMetadataDeleteAndMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.ScanMetadataFor(ctx, "nope.go")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SaveScanMetadata(ctx, ScanMetadata{Path: "a.go", Hash: "x", Timestamp: 1}))
	require.NoError(t, s.DeleteScanMetadata(ctx, "a.go"))

	_, ok, err = s.ScanMetadataFor(ctx, "a.go")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpsertNodesPreservesMetadata(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n := graph.Node{ID: "infra:aws_db.main", Name: "main", Type: graph.NodeInfra, Metadata: map[string]string{"output": "true"}}
	require.NoError(t, s.UpsertNodes(ctx, "infra.yaml", []graph.Node{n}))

	nodes, _, err := s.LoadGraph(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "true", nodes[0].Metadata["output"])
}
