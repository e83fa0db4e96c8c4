// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package memgraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/jnkn/pkg/graph"
)

type fakeLoader struct {
	nodes []graph.Node
	edges []graph.Edge
	err   error
}

func (f fakeLoader) LoadGraph(context.Context) ([]graph.Node, []graph.Edge, error) {
	return f.nodes, f.edges, f.err
}

func sampleNodesEdges() ([]graph.Node, []graph.Edge) {
	fileNode := graph.Node{ID: graph.FileID("src/app.go"), Name: "app.go", Type: graph.NodeFile}
	envNode := graph.Node{ID: graph.EnvID("PAYMENT_DB_HOST"), Name: "PAYMENT_DB_HOST", Type: graph.NodeEnvVar}
	infraNode := graph.Node{ID: "infra:aws_db_instance.payment_db_host", Name: "payment_db_host", Type: graph.NodeInfra}

	nodes := []graph.Node{fileNode, envNode, infraNode}
	edges := []graph.Edge{
		{SourceID: fileNode.ID, TargetID: envNode.ID, Type: graph.EdgeReads, Confidence: 1.0},
		{SourceID: infraNode.ID, TargetID: envNode.ID, Type: graph.EdgeProvides, Confidence: 0.95},
	}
	return nodes, edges
}

func TestBuildIndexesByIDTypeAndToken(t *testing.T) {
	nodes, edges := sampleNodesEdges()
	g := Build(nodes, edges)

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())

	n, ok := g.Node(graph.EnvID("PAYMENT_DB_HOST"))
	require.True(t, ok)
	assert.Equal(t, "PAYMENT_DB_HOST", n.Name)

	_, ok = g.Node("env:NOPE")
	assert.False(t, ok)

	envIDs := g.ByType(graph.NodeEnvVar)
	assert.Equal(t, []string{graph.EnvID("PAYMENT_DB_HOST")}, envIDs)

	matches := g.ByToken("payment")
	assert.Contains(t, matches, graph.EnvID("PAYMENT_DB_HOST"))
	assert.Contains(t, matches, "infra:aws_db_instance.payment_db_host")
}

func TestOutInAdjacency(t *testing.T) {
	nodes, edges := sampleNodesEdges()
	g := Build(nodes, edges)

	envID := graph.EnvID("PAYMENT_DB_HOST")
	incoming := g.In(envID)
	assert.Len(t, incoming, 2)

	fileID := graph.FileID("src/app.go")
	outgoing := g.Out(fileID)
	require.Len(t, outgoing, 1)
	assert.Equal(t, graph.EdgeReads, outgoing[0].Type)
}

func TestLoadDelegatesToLoader(t *testing.T) {
	nodes, edges := sampleNodesEdges()
	l := fakeLoader{nodes: nodes, edges: edges}

	g, err := Load(context.Background(), l)
	require.NoError(t, err)
	assert.Equal(t, 3, g.NodeCount())
}

func TestByTokenUnknownReturnsNil(t *testing.T) {
	g := Build(nil, nil)
	assert.Nil(t, g.ByToken("nope"))
}
