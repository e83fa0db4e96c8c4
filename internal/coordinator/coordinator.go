// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package coordinator wires together a jnkn project's config, store,
// parsing engine and stitcher into one value commands can hold, instead of
// reaching through package-level globals from every subcommand.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kraklabs/jnkn/pkg/config"
	"github.com/kraklabs/jnkn/pkg/memgraph"
	"github.com/kraklabs/jnkn/pkg/parser"
	"github.com/kraklabs/jnkn/pkg/stitch"
	"github.com/kraklabs/jnkn/pkg/store"
	"github.com/kraklabs/jnkn/pkg/suppress"
)

// Project bundles every subsystem a CLI command needs for one repository
// root. It is built once per invocation and passed down explicitly,
// rather than reached for through package-level state.
type Project struct {
	Root   string
	Config *config.Config
	Store  *store.Store
	Engine *parser.Engine

	suppression *suppress.Store
	logger      *slog.Logger
}

// InitProject creates a new .jnkn directory under root with default
// configuration and an empty store. Calling it again on an
// already-initialized root returns an error unless force is true,
// since reinitializing in place would silently discard an existing graph.
func InitProject(root, projectID string, force bool, logger *slog.Logger) (*Project, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dataDir := config.DataDir(root)
	if _, err := os.Stat(dataDir); err == nil && !force {
		return nil, fmt.Errorf("project already initialized at %s (use --force to reinitialize)", dataDir)
	}

	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	cfg := config.DefaultConfig(projectID)
	if err := config.Save(cfg, config.Path(root)); err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}

	st, err := store.Open(config.DBPath(root))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	logger.Info("coordinator.project.init", "root", root, "project_id", projectID)

	return newProject(root, cfg, st, logger), nil
}

// OpenProject opens an already-initialized project at root.
func OpenProject(root string, logger *slog.Logger) (*Project, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := config.Load(config.Path(root))
	if err != nil {
		return nil, fmt.Errorf("project not found at %s (run 'jnkn init' first): %w", root, err)
	}

	st, err := store.Open(config.DBPath(root))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return newProject(root, cfg, st, logger), nil
}

func newProject(root string, cfg *config.Config, st *store.Store, logger *slog.Logger) *Project {
	registry := parser.NewRegistry()
	registry.Register(parser.NewContainerExtractor())
	registry.Register(parser.NewInfraExtractor())
	registry.Register(parser.NewPipelineExtractor())
	registry.Register(parser.NewLineageExtractor())
	registry.Register(parser.NewSourceExtractor())

	engine := parser.NewEngine(cfg, registry, logger)

	var suppressions []suppress.Entry
	for _, s := range cfg.Suppressions {
		suppressions = append(suppressions, suppress.Entry{
			Source: s.Source, Target: s.Target, Reason: s.Reason, Rule: s.Rule, Type: s.Type,
		})
	}

	return &Project{
		Root:        root,
		Config:      cfg,
		Store:       st,
		Engine:      engine,
		suppression: suppress.New(suppressions),
		logger:      logger,
	}
}

// Close releases the project's store handle.
func (p *Project) Close() error {
	return p.Store.Close()
}

// Stitcher builds a Stitcher from the project's configured thresholds and
// suppression list.
func (p *Project) Stitcher() *stitch.Stitcher {
	cfg := stitch.Config{
		MinConfidence:      p.Config.Scan.MinConfidence,
		AmbiguityThreshold: config.DefaultAmbiguityThreshold,
		RuleVersion:        p.Config.Rules.Version,
	}
	return stitch.New(cfg, p.suppression)
}

// Scan walks the project root, persists the results file-by-file, and
// returns the aggregate ScanResult.
func (p *Project) Scan(ctx context.Context) (*parser.ScanResult, error) {
	result, err := p.Engine.ScanTree(ctx, p.Root)
	if err != nil {
		return nil, err
	}

	for _, res := range result.Results {
		if res.SkipReason != parser.SkipNone {
			continue
		}
		meta := store.ScanMetadata{
			Path:      res.Path,
			Hash:      res.Hash,
			NodeCount: len(res.Nodes),
			EdgeCount: len(res.Edges),
		}
		if !res.Success {
			continue
		}
		if err := p.Store.ReplaceFile(ctx, res.Path, res.Nodes, res.Edges, meta); err != nil {
			return nil, fmt.Errorf("persist %s: %w", res.Path, err)
		}
	}

	return result, nil
}

// Graph loads the full persisted graph into memory, for the stitcher and
// the impact analyser.
func (p *Project) Graph(ctx context.Context) (*memgraph.Graph, error) {
	nodes, edges, err := p.Store.LoadGraph(ctx)
	if err != nil {
		return nil, err
	}
	return memgraph.Build(nodes, edges), nil
}

// RunStitcher loads the graph, runs the stitcher, and persists the
// inferred edges.
func (p *Project) RunStitcher(ctx context.Context) ([]string, error) {
	g, err := p.Graph(ctx)
	if err != nil {
		return nil, err
	}
	s := p.Stitcher()
	inferred := s.Run(g)
	if err := p.Store.UpsertEdges(ctx, inferred); err != nil {
		return nil, fmt.Errorf("persist inferred edges: %w", err)
	}
	ids := make([]string, 0, len(inferred))
	for _, e := range inferred {
		ids = append(ids, e.SourceID+"->"+e.TargetID)
	}
	return ids, nil
}

// ResolveRoot resolves the effective scan root: dir if given, else the
// current working directory.
func ResolveRoot(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	return abs, nil
}
