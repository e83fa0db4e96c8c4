// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package memgraph is the in-memory dual-adjacency view of the graph
// stored by pkg/store. A Graph is an immutable snapshot - the stitcher
// and impact analyser read it without locking, and any mutation goes
// through pkg/store followed by a fresh Load.
package memgraph

import (
	"context"
	"fmt"

	"github.com/kraklabs/jnkn/pkg/graph"
)

// loader is the subset of pkg/store.Store that building a Graph needs. The
// interface keeps memgraph from importing pkg/store directly.
type loader interface {
	LoadGraph(ctx context.Context) ([]graph.Node, []graph.Edge, error)
}

// Graph is an immutable snapshot of the node/edge graph with O(1)
// amortised lookup by id, by type, and by token.
type Graph struct {
	nodes    map[string]graph.Node
	out      map[string][]graph.Edge
	in       map[string][]graph.Edge
	byType   map[graph.NodeType][]string
	tokens   map[string]map[string]struct{}
	nodeList []graph.Node
	edgeList []graph.Edge
}

// Load hydrates a new Graph snapshot from a store.
func Load(ctx context.Context, s loader) (*Graph, error) {
	nodes, edges, err := s.LoadGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	return Build(nodes, edges), nil
}

// Build constructs a Graph snapshot directly from node/edge slices,
// without touching a store. Used by tests and by callers that already
// hold the node and edge slices in memory.
func Build(nodes []graph.Node, edges []graph.Edge) *Graph {
	g := &Graph{
		nodes:    make(map[string]graph.Node, len(nodes)),
		out:      make(map[string][]graph.Edge),
		in:       make(map[string][]graph.Edge),
		byType:   make(map[graph.NodeType][]string),
		tokens:   make(map[string]map[string]struct{}),
		nodeList: nodes,
		edgeList: edges,
	}

	for _, n := range nodes {
		g.nodes[n.ID] = n
		g.byType[n.Type] = append(g.byType[n.Type], n.ID)
		for _, tok := range graph.SignificantTokens(n.Name) {
			set, ok := g.tokens[tok]
			if !ok {
				set = make(map[string]struct{})
				g.tokens[tok] = set
			}
			set[n.ID] = struct{}{}
		}
	}

	for _, e := range edges {
		g.out[e.SourceID] = append(g.out[e.SourceID], e)
		g.in[e.TargetID] = append(g.in[e.TargetID], e)
	}

	return g
}

// Node returns the node for id, and whether it exists.
func (g *Graph) Node(id string) (graph.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node in the snapshot. The returned slice must not
// be mutated by callers.
func (g *Graph) Nodes() []graph.Node {
	return g.nodeList
}

// Edges returns every edge in the snapshot. The returned slice must not
// be mutated by callers.
func (g *Graph) Edges() []graph.Edge {
	return g.edgeList
}

// Out returns the edges with id as their source.
func (g *Graph) Out(id string) []graph.Edge {
	return g.out[id]
}

// In returns the edges with id as their target.
func (g *Graph) In(id string) []graph.Edge {
	return g.in[id]
}

// ByType returns the ids of every node of the given type.
func (g *Graph) ByType(t graph.NodeType) []string {
	return g.byType[t]
}

// ByToken returns the ids of every node whose name tokenises to include
// tok, using the same significant-token filtering the stitcher matches on.
func (g *Graph) ByToken(tok string) []string {
	set := g.tokens[tok]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// NodeCount returns the number of nodes in the snapshot.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the snapshot.
func (g *Graph) EdgeCount() int {
	return len(g.edgeList)
}
