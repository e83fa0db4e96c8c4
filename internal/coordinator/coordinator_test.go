// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package coordinator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitProjectCreatesStoreAndConfig(t *testing.T) {
	root := t.TempDir()

	p, err := InitProject(root, "test-proj", false, nil)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, "test-proj", p.Config.ProjectID)
	assert.FileExists(t, filepath.Join(root, ".jnkn", "config.yaml"))
}

func TestInitProjectRefusesReinitWithoutForce(t *testing.T) {
	root := t.TempDir()

	p1, err := InitProject(root, "proj", false, nil)
	require.NoError(t, err)
	p1.Close()

	_, err = InitProject(root, "proj", false, nil)
	assert.Error(t, err)

	p2, err := InitProject(root, "proj", true, nil)
	require.NoError(t, err)
	p2.Close()
}

func TestOpenProjectFailsWithoutInit(t *testing.T) {
	root := t.TempDir()
	_, err := OpenProject(root, nil)
	assert.Error(t, err)
}

func TestScanPersistsEnvVarNodes(t *testing.T) {
	root := t.TempDir()
	p, err := InitProject(root, "proj", false, nil)
	require.NoError(t, err)
	defer p.Close()

	src := "package main\n\nimport \"os\"\n\nfunc main() { _ = os.Getenv(\"PAYMENT_DB_HOST\") }\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte(src), 0o644))

	ctx := context.Background()
	result, err := p.Scan(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.FilesParsed, 1)

	nodes, _, err := p.Store.LoadGraph(ctx)
	require.NoError(t, err)
	var found bool
	for _, n := range nodes {
		if n.Name == "PAYMENT_DB_HOST" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRunStitcherOnEmptyProjectInfersNoEdges(t *testing.T) {
	root := t.TempDir()
	p, err := InitProject(root, "proj", false, nil)
	require.NoError(t, err)
	defer p.Close()

	ctx := context.Background()

	ids, err := p.RunStitcher(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestResolveRootDefaultsToWorkingDirectory(t *testing.T) {
	root, err := ResolveRoot("")
	require.NoError(t, err)
	assert.NotEmpty(t, root)
}

func TestResolveRootKeepsAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	abs, err := ResolveRoot(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, abs)
}
