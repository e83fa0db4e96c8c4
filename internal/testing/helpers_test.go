// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/jnkn/pkg/graph"
)

func TestSetupTestStoreIsUsable(t *testing.T) {
	st := SetupTestStore(t)
	require.NotNil(t, st)

	nodes, edges, err := st.LoadGraph(context.Background())
	require.NoError(t, err)
	assert.Empty(t, nodes)
	assert.Empty(t, edges)
}

func TestSeedFilePopulatesStore(t *testing.T) {
	st := SetupTestStore(t)

	file := FileNode("app.go")
	env := EnvNode("PAYMENT_DB_HOST")
	SeedFile(t, st, "app.go", []graph.Node{file, env}, []graph.Edge{
		{SourceID: file.ID, TargetID: env.ID, Type: graph.EdgeReads, Confidence: 1.0},
	})

	nodes, edges, err := st.LoadGraph(context.Background())
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
	assert.Len(t, edges, 1)
}

func TestSetupTestGraphIndexesNodes(t *testing.T) {
	env := EnvNode("PAYMENT_DB_HOST")
	infra := InfraNode("aws", "db_instance", "payment_db_host", map[string]string{"output": "true"})

	g := SetupTestGraph([]graph.Node{env, infra}, nil)
	n, ok := g.Node(env.ID)
	require.True(t, ok)
	assert.Equal(t, "PAYMENT_DB_HOST", n.Name)
}

func TestStoreIsolationBetweenTests(t *testing.T) {
	st1 := SetupTestStore(t)
	SeedFile(t, st1, "a.go", []graph.Node{FileNode("a.go")}, nil)

	st2 := SetupTestStore(t)
	nodes, _, err := st2.LoadGraph(context.Background())
	require.NoError(t, err)
	assert.Empty(t, nodes, "second store should be isolated from the first")
}
