// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package suppress

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/jnkn/pkg/graph"
)

func TestMatchIDWildcard(t *testing.T) {
	assert.True(t, MatchID("env:USER_NAME", "env:USER_*"))
	assert.True(t, MatchID("infra:aws_db.main", "infra:*"))
	assert.False(t, MatchID("env:OTHER", "env:USER_*"))
	assert.True(t, MatchID("env:EXACT", "env:EXACT"))
}

func TestEntryMatchesScopesByTypeAndRule(t *testing.T) {
	e := Entry{Source: "env:USER_*", Target: "infra:*", Type: string(graph.EdgeProvides), Rule: "env_infra"}

	assert.True(t, e.Matches("env:USER_NAME", "infra:aws_db.main", graph.EdgeProvides, "env_infra"))
	assert.False(t, e.Matches("env:USER_NAME", "infra:aws_db.main", graph.EdgeConfigures, "env_infra"))
	assert.False(t, e.Matches("env:USER_NAME", "infra:aws_db.main", graph.EdgeProvides, "config_infra"))
	assert.False(t, e.Matches("env:OTHER", "infra:aws_db.main", graph.EdgeProvides, "env_infra"))
}

func TestStoreFilterRemovesShadowedEdges(t *testing.T) {
	s := New([]Entry{{Source: "env:USER_*", Target: "infra:*"}})

	edges := []graph.Edge{
		{SourceID: "infra:a", TargetID: "env:USER_NAME", Type: graph.EdgeProvides, Confidence: 0.9},
		{SourceID: "infra:b", TargetID: "env:PAYMENT_DB_HOST", Type: graph.EdgeProvides, Confidence: 0.9},
	}

	filtered := s.Filter(edges)
	require.Len(t, filtered, 1)
	assert.Equal(t, "env:PAYMENT_DB_HOST", filtered[0].TargetID)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suppressions.yaml")
	s := New([]Entry{{Source: "env:USER_*", Target: "infra:*", Reason: "legacy naming"}})

	require.NoError(t, Save(s, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Entries(), 1)
	assert.Equal(t, "legacy naming", loaded.Entries()[0].Reason)
}

func TestLoadMissingFileReturnsEmptyStore(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, s.Entries())
}
