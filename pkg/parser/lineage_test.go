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

func TestLineageExtractorIgnoresStartEvent(t *testing.T) {
	e := NewLineageExtractor()
	nodes, edges, err := e.Extract(FileContext{
		Path:    "run.lineage.json",
		Content: []byte(`{"eventType":"START","job":{"namespace":"a","name":"b"}}`),
	})
	require.NoError(t, err)
	assert.Empty(t, nodes)
	assert.Empty(t, edges)
}

func TestLineageExtractorReadsWrites(t *testing.T) {
	e := NewLineageExtractor()
	event := `{
		"eventType": "COMPLETE",
		"job": {"namespace": "spark", "name": "daily_etl"},
		"run": {"runId": "123"},
		"inputs": [{"namespace": "db", "name": "users"}],
		"outputs": [{"namespace": "s3", "name": "bucket/data"}]
	}`
	nodes, edges, err := e.Extract(FileContext{Path: "run.lineage.json", Content: []byte(event)})
	require.NoError(t, err)

	jobID := graph.JobID("spark/daily_etl")
	var jobNode *graph.Node
	for i := range nodes {
		if nodes[i].ID == jobID {
			jobNode = &nodes[i]
		}
	}
	require.NotNil(t, jobNode)
	assert.Equal(t, "123", jobNode.Metadata["run_id"])

	var readEdge, writeEdge *graph.Edge
	for i := range edges {
		switch edges[i].Type {
		case graph.EdgeReads:
			readEdge = &edges[i]
		case graph.EdgeWrites:
			writeEdge = &edges[i]
		}
	}
	require.NotNil(t, readEdge)
	require.NotNil(t, writeEdge)
	assert.Equal(t, jobID, readEdge.SourceID)
	assert.Equal(t, graph.DataID("db/users"), readEdge.TargetID)
	assert.Equal(t, jobID, writeEdge.SourceID)
	assert.Equal(t, graph.DataID("s3/bucket/data"), writeEdge.TargetID)
}

func TestLineageExtractorColumnLineage(t *testing.T) {
	e := NewLineageExtractor()
	event := `{
		"eventType": "COMPLETE",
		"job": {"namespace": "spark", "name": "daily_etl"},
		"outputs": [{
			"namespace": "db",
			"name": "target_table",
			"facets": {
				"schema": {"fields": [{"name": "id", "type": "INT"}]},
				"columnLineage": {
					"fields": {
						"id": {"inputFields": [{"namespace": "db", "name": "src_table", "field": "user_id"}]}
					}
				}
			}
		}]
	}`
	nodes, edges, err := e.Extract(FileContext{Path: "run.lineage.json", Content: []byte(event)})
	require.NoError(t, err)

	colID := graph.ColumnID("db", "target_table", "id")
	var colNode *graph.Node
	for i := range nodes {
		if nodes[i].ID == colID {
			colNode = &nodes[i]
		}
	}
	require.NotNil(t, colNode)
	assert.Equal(t, "INT", colNode.Metadata["data_type"])

	found := false
	for _, edg := range edges {
		if edg.Type == graph.EdgeTransforms &&
			edg.SourceID == graph.ColumnID("db", "src_table", "user_id") &&
			edg.TargetID == colID {
			found = true
		}
	}
	assert.True(t, found)
}
