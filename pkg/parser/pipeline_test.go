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

const samplePipelineManifest = `
namespace: warehouse
models:
  - name: orders
    depends_on: []
  - name: order_totals
    depends_on:
      - orders
`

func TestPipelineExtractorCanExtract(t *testing.T) {
	e := NewPipelineExtractor()
	assert.True(t, e.CanExtract(FileContext{Path: "models/orders.pipeline.yaml"}))
	assert.False(t, e.CanExtract(FileContext{Path: "models/orders.yaml"}))
}

func TestPipelineExtractorProducesTransformsEdges(t *testing.T) {
	e := NewPipelineExtractor()
	_, edges, err := e.Extract(FileContext{Path: "models.pipeline.yaml", Content: []byte(samplePipelineManifest)})
	require.NoError(t, err)

	found := false
	for _, edg := range edges {
		if edg.Type == graph.EdgeTransforms &&
			edg.SourceID == graph.DataID("warehouse.orders") &&
			edg.TargetID == graph.DataID("warehouse.order_totals") {
			found = true
		}
	}
	assert.True(t, found)
}
