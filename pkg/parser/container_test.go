// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/jnkn/pkg/graph"
)

const sampleComposeManifest = `
services:
  api:
    image: payment/api:latest
    environment:
      PAYMENT_DB_HOST: db.internal
      DEBUG: "false"
`

func TestContainerExtractorCanExtract(t *testing.T) {
	e := NewContainerExtractor()
	assert.True(t, e.CanExtract(FileContext{Path: "docker-compose.yml"}))
	assert.True(t, e.CanExtract(FileContext{Path: "k8s/api.deployment.yaml"}))
	assert.False(t, e.CanExtract(FileContext{Path: "docker-compose.txt"}))
}

func TestContainerExtractorProvidesEnv(t *testing.T) {
	e := NewContainerExtractor()
	nodes, edges, err := e.Extract(FileContext{Path: "docker-compose.yml", Content: []byte(sampleComposeManifest)})
	require.NoError(t, err)

	envIDs := map[string]bool{}
	for _, n := range nodes {
		if n.Type == graph.NodeEnvVar {
			envIDs[n.ID] = true
		}
	}
	assert.Contains(t, envIDs, graph.EnvID("PAYMENT_DB_HOST"))
	assert.Contains(t, envIDs, graph.EnvID("DEBUG"))

	provides := 0
	for _, edg := range edges {
		if edg.Type == graph.EdgeProvides {
			provides++
			assert.Equal(t, graph.InfraID("container", "service", "api"), edg.SourceID)
		}
	}
	assert.Equal(t, 2, provides)
}
