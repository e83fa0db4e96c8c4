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

const sampleInfraManifest = `
provider: aws
resources:
  - type: db_instance
    name: payment_db
    line: 3
  - type: output
    name: payment_db_host
    output: true
    depends_on:
      - db_instance.payment_db
    line: 10
`

func TestInfraExtractorCanExtract(t *testing.T) {
	e := NewInfraExtractor()
	assert.True(t, e.CanExtract(FileContext{Path: "main.infra.yaml"}))
	assert.False(t, e.CanExtract(FileContext{Path: "main.yaml"}))
}

func TestInfraExtractorProducesResourcesAndOutput(t *testing.T) {
	e := NewInfraExtractor()
	nodes, edges, err := e.Extract(FileContext{Path: "main.infra.yaml", Content: []byte(sampleInfraManifest)})
	require.NoError(t, err)

	var outputNode *graph.Node
	for i := range nodes {
		if nodes[i].Metadata["output"] == "true" {
			outputNode = &nodes[i]
		}
	}
	require.NotNil(t, outputNode)
	assert.Equal(t, graph.InfraID("aws", "output", "payment_db_host"), outputNode.ID)

	found := false
	for _, edg := range edges {
		if edg.Type == graph.EdgeConfigures &&
			edg.SourceID == graph.InfraID("aws", "db_instance", "payment_db") &&
			edg.TargetID == graph.InfraID("aws", "output", "payment_db_host") {
			found = true
		}
	}
	assert.True(t, found, "expected depends_on to produce a configures edge")
}
