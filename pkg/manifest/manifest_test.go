// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jnknerrors "github.com/kraklabs/jnkn/internal/errors"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))
}

func TestLoadMissingManifestReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	m, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(dir), m.Name)
	assert.Equal(t, DefaultVersion, m.Version)
	assert.Empty(t, m.Dependencies)
}

func TestLoadValidManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "test-project"
version = "1.2.3"

[dependencies]
infra = { path = "../infra" }
shared = { git = "https://github.com/org/shared.git", branch = "main" }
legacy = "../legacy"

[tool.jnkn.sources]
shared = { path = "../local-shared" }
`)

	m, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "test-project", m.Name)
	assert.Equal(t, "1.2.3", m.Version)
	assert.Equal(t, "../infra", m.Dependencies["infra"].Path)
	assert.Equal(t, "https://github.com/org/shared.git", m.Dependencies["shared"].Git)
	assert.Equal(t, "main", m.Dependencies["shared"].Branch)
	assert.Equal(t, "../legacy", m.Dependencies["legacy"].Path)
	assert.Equal(t, "../local-shared", m.SourceOverrides["shared"].Path)
}

func TestLoadInvalidTOMLReturnsConfigError(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "invalid [ toml")

	_, err := Load(dir)
	require.Error(t, err)
	var ue *jnknerrors.UserError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, jnknerrors.ExitConfig, ue.ExitCode)
}

func TestResolveLocalPath(t *testing.T) {
	root := t.TempDir()
	projectDir := filepath.Join(root, "app")
	infraDir := filepath.Join(root, "infra")
	require.NoError(t, os.MkdirAll(projectDir, 0o755))
	require.NoError(t, os.MkdirAll(infraDir, 0o755))
	writeManifest(t, projectDir, `
[dependencies]
infra = { path = "../infra" }
`)

	m, err := Load(projectDir)
	require.NoError(t, err)
	result, err := Resolve(m)
	require.NoError(t, err)

	require.Len(t, result.Dependencies, 1)
	dep := result.Dependencies[0]
	assert.Equal(t, "infra", dep.Name)
	assert.Equal(t, infraDir, dep.Path)
	assert.Equal(t, SourceLocal, dep.Source)
}

func TestResolveMissingPathReturnsNotFound(t *testing.T) {
	root := t.TempDir()
	projectDir := filepath.Join(root, "app")
	require.NoError(t, os.MkdirAll(projectDir, 0o755))
	writeManifest(t, projectDir, `
[dependencies]
missing = { path = "../does_not_exist" }
`)

	m, err := Load(projectDir)
	require.NoError(t, err)
	_, err = Resolve(m)
	require.Error(t, err)
	var ue *jnknerrors.UserError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, jnknerrors.ExitNotFound, ue.ExitCode)
}

func TestResolveOverridePrecedence(t *testing.T) {
	root := t.TempDir()
	projectDir := filepath.Join(root, "app")
	localOverride := filepath.Join(root, "shared-local")
	require.NoError(t, os.MkdirAll(projectDir, 0o755))
	require.NoError(t, os.MkdirAll(localOverride, 0o755))
	writeManifest(t, projectDir, `
[dependencies]
shared = { git = "https://example.com/repo.git" }

[tool.jnkn.sources]
shared = { path = "../shared-local" }
`)

	m, err := Load(projectDir)
	require.NoError(t, err)
	result, err := Resolve(m)
	require.NoError(t, err)

	require.Len(t, result.Dependencies, 1)
	dep := result.Dependencies[0]
	assert.Equal(t, "shared", dep.Name)
	assert.Equal(t, localOverride, dep.Path)
	assert.Equal(t, SourceLocalOverride, dep.Source)
}

func TestResolveGitRaisesNotImplemented(t *testing.T) {
	root := t.TempDir()
	projectDir := filepath.Join(root, "app")
	require.NoError(t, os.MkdirAll(projectDir, 0o755))
	writeManifest(t, projectDir, `
[dependencies]
remote = { git = "https://github.com/org/repo.git" }
`)

	m, err := Load(projectDir)
	require.NoError(t, err)
	_, err = Resolve(m)
	require.Error(t, err)
	var ue *jnknerrors.UserError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, jnknerrors.ExitNotImplemented, ue.ExitCode)
}
