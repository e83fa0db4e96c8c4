// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/jnkn/pkg/graph"
)

type stubExtractor struct {
	name  string
	claim bool
}

func (s stubExtractor) Name() string                 { return s.name }
func (s stubExtractor) CanExtract(FileContext) bool   { return s.claim }
func (s stubExtractor) Extract(FileContext) ([]graph.Node, []graph.Edge, error) {
	return nil, nil, nil
}

func TestRegistryDispatchesFirstMatch(t *testing.T) {
	r := NewRegistry()
	r.Register(stubExtractor{name: "first", claim: false})
	r.Register(stubExtractor{name: "second", claim: true})
	r.Register(stubExtractor{name: "third", claim: true})

	got := r.Lookup(FileContext{Path: "x"})
	assert.NotNil(t, got)
	assert.Equal(t, "second", got.Name())
}

func TestRegistryLookupNilWhenNoMatch(t *testing.T) {
	r := NewRegistry()
	r.Register(stubExtractor{name: "only", claim: false})
	assert.Nil(t, r.Lookup(FileContext{Path: "x"}))
}
