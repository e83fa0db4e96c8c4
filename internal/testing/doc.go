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

// Package testing provides test helpers shared across jnkn's package
// tests: a disposable sqlite-backed store and a few node/edge builders
// for assembling small graphs without repeating the same struct
// literals in every test file.
//
// # Quick Start
//
// Use SetupTestStore to create a temp-file sqlite store with schema
// already applied:
//
//	func TestMyFeature(t *testing.T) {
//	    st := testing.SetupTestStore(t)
//
//	    testing.SeedFile(t, st, "app.go", []graph.Node{fileNode, envNode}, nil)
//
//	    nodes, _, err := st.LoadGraph(context.Background())
//	    require.NoError(t, err)
//	    require.Len(t, nodes, 2)
//	}
//
// # Building graphs
//
// SetupTestGraph wraps pkg/memgraph.Build for tests that only need an
// in-memory snapshot and never touch the store.
package testing
