// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEdgeKeyUniqueTriple(t *testing.T) {
	a := Edge{SourceID: "infra:aws_output.db_host", TargetID: "env:PAYMENT_DB_HOST", Type: EdgeProvides, Confidence: 0.9}
	b := Edge{SourceID: "infra:aws_output.db_host", TargetID: "env:PAYMENT_DB_HOST", Type: EdgeProvides, Confidence: 0.4}
	assert.Equal(t, a.Key(), b.Key())

	c := Edge{SourceID: "infra:aws_output.db_host", TargetID: "env:PAYMENT_DB_HOST", Type: EdgeDependsOn}
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestDirectEdgeConfidenceIsOne(t *testing.T) {
	assert.Equal(t, 1.0, DirectEdgeConfidence)
}

func TestNodeSchemeParsesPrefix(t *testing.T) {
	n := Node{ID: "env:PAYMENT_DB_HOST"}
	assert.Equal(t, SchemeEnv, n.Scheme())

	malformed := Node{ID: "no-scheme-here"}
	assert.Equal(t, Scheme(""), malformed.Scheme())
}

func TestNodeLine(t *testing.T) {
	n := Node{Metadata: map[string]string{MetaLine: "42"}}
	line, ok := n.Line()
	assert.True(t, ok)
	assert.Equal(t, 42, line)

	withoutLine := Node{}
	_, ok = withoutLine.Line()
	assert.False(t, ok)

	malformed := Node{Metadata: map[string]string{MetaLine: "not-a-number"}}
	_, ok = malformed.Line()
	assert.False(t, ok)
}

func TestNodeWithMetadataIsCopyOnWrite(t *testing.T) {
	base := Node{ID: "file:a.go", Metadata: map[string]string{"k1": "v1"}}
	updated := base.WithMetadata("k2", "v2")

	assert.Len(t, base.Metadata, 1)
	assert.Len(t, updated.Metadata, 2)
	assert.Equal(t, "v1", updated.Metadata["k1"])
	assert.Equal(t, "v2", updated.Metadata["k2"])
}
