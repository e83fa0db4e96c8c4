// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigHasSaneDefaults(t *testing.T) {
	cfg := DefaultConfig("proj-1")
	assert.Equal(t, DefaultMinConfidence, cfg.Scan.MinConfidence)
	assert.Equal(t, 1, cfg.Rules.Version)
	assert.Contains(t, cfg.Scan.Exclude, ".git")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, Dir, "config.yaml")

	cfg := DefaultConfig("proj-2")
	cfg.Scan.Include = []string{"src"}
	cfg.Suppressions = append(cfg.Suppressions, Suppression{
		Source: "env:*_TEST",
		Target: "infra:*",
		Reason: "test fixtures never map to real infra",
	})

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.ProjectID, loaded.ProjectID)
	assert.Equal(t, cfg.Scan.Include, loaded.Scan.Include)
	assert.Len(t, loaded.Suppressions, 1)
}

func TestLoadDefaultsMinConfidenceWhenZero(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, Save(&Config{ProjectID: "bare"}, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultMinConfidence, loaded.Scan.MinConfidence)
}

func TestIsIgnoredDir(t *testing.T) {
	cfg := DefaultConfig("proj-3")
	assert.True(t, cfg.IsIgnoredDir(".git"))
	assert.True(t, cfg.IsIgnoredDir("node_modules"))
	assert.False(t, cfg.IsIgnoredDir("src"))
}

func TestIsIgnoredExtension(t *testing.T) {
	assert.True(t, IsIgnoredExtension("vendor/bundle.min.js"))
	assert.True(t, IsIgnoredExtension("package-lock.lock"))
	assert.False(t, IsIgnoredExtension("main.go"))
}
