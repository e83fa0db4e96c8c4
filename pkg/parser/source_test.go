// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/jnkn/pkg/graph"
)

const sampleGoSource = `package main

import "os"

func main() {
	host := os.Getenv("PAYMENT_DB_HOST")
	_ = host
	run()
}

func run() {}

type Server struct{}

func (s *Server) Start() {
	if _, ok := os.LookupEnv("DEBUG"); ok {
		return
	}
}
`

func TestSourceExtractorCanExtract(t *testing.T) {
	e := NewSourceExtractor()
	assert.True(t, e.CanExtract(FileContext{Path: "main.go"}))
	assert.False(t, e.CanExtract(FileContext{Path: "main_test.go"}))
	assert.False(t, e.CanExtract(FileContext{Path: "main.py"}))
}

func TestSourceExtractorFindsEnvReads(t *testing.T) {
	e := NewSourceExtractor()
	nodes, edges, err := e.Extract(FileContext{Path: "main.go", Content: []byte(sampleGoSource)})
	require.NoError(t, err)

	envIDs := map[string]bool{}
	for _, n := range nodes {
		if n.Type == graph.NodeEnvVar {
			envIDs[n.ID] = true
		}
	}
	assert.Contains(t, envIDs, graph.EnvID("PAYMENT_DB_HOST"))
	assert.Contains(t, envIDs, graph.EnvID("DEBUG"))

	readsCount := 0
	for _, edg := range edges {
		if edg.Type == graph.EdgeReads {
			readsCount++
			assert.Equal(t, graph.DirectEdgeConfidence, edg.Confidence)
		}
	}
	assert.Equal(t, 2, readsCount)
}

func TestSourceExtractorFindsDefinitions(t *testing.T) {
	e := NewSourceExtractor()
	nodes, _, err := e.Extract(FileContext{Path: "main.go", Content: []byte(sampleGoSource)})
	require.NoError(t, err)

	names := map[string]bool{}
	for _, n := range nodes {
		if n.Type == graph.NodeCodeEntity {
			names[n.Name] = true
		}
	}
	assert.Contains(t, names, "main")
	assert.Contains(t, names, "run")
	assert.Contains(t, names, "Server")
	assert.Contains(t, names, "Server.Start")
}

func TestSourceExtractorDeterministic(t *testing.T) {
	e := NewSourceExtractor()
	fc := FileContext{Path: "main.go", Content: []byte(sampleGoSource)}
	nodes1, edges1, err := e.Extract(fc)
	require.NoError(t, err)
	nodes2, edges2, err := e.Extract(fc)
	require.NoError(t, err)

	assert.Equal(t, nodes1, nodes2)
	assert.Equal(t, edges1, edges2)
}

// TestSourceExtractorGoSyntaxShapes runs the extractor over a set of
// testdata files, each exercising one Go construct the tree walk must
// not choke on or silently miss definitions for.
func TestSourceExtractorGoSyntaxShapes(t *testing.T) {
	cases := []struct {
		file        string
		wantDefined []string
	}{
		{"imports.go", []string{"UseImports"}},
		{"calls.go", []string{"helper", "Process", "Chain"}},
		{"multiple_returns.go", []string{"Divide", "ParseInt"}},
		{"method_receiver.go", []string{"Handler", "Handler.HandleRequest", "Handler.GetName"}},
		{"interface_impl.go", []string{"Reader", "Writer", "ReadWriter"}},
		{"generics.go", []string{"Map", "Container"}},
		{"anonymous_function.go", []string{"ProcessData", "Filter"}},
		{"embedded_struct.go", []string{"Base", "Base.GetID", "Extended", "Extended.GetName"}},
	}

	e := NewSourceExtractor()
	for _, tc := range cases {
		t.Run(tc.file, func(t *testing.T) {
			content, err := os.ReadFile(filepath.Join("testdata", "go", tc.file))
			require.NoError(t, err)

			nodes, _, err := e.Extract(FileContext{Path: tc.file, Content: content})
			require.NoError(t, err)

			names := map[string]bool{}
			for _, n := range nodes {
				if n.Type == graph.NodeCodeEntity {
					names[n.Name] = true
				}
			}
			for _, want := range tc.wantDefined {
				assert.Contains(t, names, want)
			}
		})
	}
}
