// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package config holds the project configuration and the ignore / size /
// depth gates that the parsing engine applies before dispatching a file to
// an extractor.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Dir is the fixed directory name for all jnkn project state.
const Dir = ".jnkn"

// ScanConfig controls what the parsing engine walks and how the stitcher
// gates its emissions.
type ScanConfig struct {
	Include       []string `yaml:"include,omitempty"`
	Exclude       []string `yaml:"exclude,omitempty"`
	MinConfidence float64  `yaml:"min_confidence"`
}

// RulesConfig tracks the stitcher rule-set version, so persisted edges can
// be recognized as stale and re-derived after the rule table changes.
type RulesConfig struct {
	Version int `yaml:"version"`
}

// Suppression is the YAML-serializable form of a suppression entry. See
// pkg/suppress for the runtime pattern type.
type Suppression struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
	Reason string `yaml:"reason,omitempty"`
	Rule   string `yaml:"rule,omitempty"`
	Type   string `yaml:"type,omitempty"`
}

// Config is the root of .jnkn/config.yaml.
type Config struct {
	ProjectID    string        `yaml:"project_id"`
	Scan         ScanConfig    `yaml:"scan"`
	Suppressions []Suppression `yaml:"suppressions,omitempty"`
	Rules        RulesConfig   `yaml:"rules"`
}

// DefaultMinConfidence is the floor below which the stitcher will not emit
// an edge, absent an override in config.yaml.
const DefaultMinConfidence = 0.5

// DefaultMaxDepth is the default directory walk depth bound.
const DefaultMaxDepth = 15

// DefaultMaxFileBytes is the default per-file size cap.
const DefaultMaxFileBytes = 500 * 1024

// DefaultMaxLineBytes is the default per-line length cap.
const DefaultMaxLineBytes = 10_000

// DefaultAmbiguityThreshold is the alt_count at or above which the
// confidence calculator's ambiguity penalty fires.
const DefaultAmbiguityThreshold = 3

// DefaultConfig returns a new Config populated with jnkn's defaults for a
// freshly initialized project.
func DefaultConfig(projectID string) *Config {
	return &Config{
		ProjectID: projectID,
		Scan: ScanConfig{
			Exclude:       DefaultIgnoreDirs(),
			MinConfidence: DefaultMinConfidence,
		},
		Rules: RulesConfig{Version: 1},
	}
}

// Path returns the path to config.yaml under the given repository root.
func Path(repoRoot string) string {
	return filepath.Join(repoRoot, Dir, "config.yaml")
}

// DataDir returns the jnkn state directory under the given repository root.
func DataDir(repoRoot string) string {
	return filepath.Join(repoRoot, Dir)
}

// DBPath returns the path to jnkn.db under the given repository root.
func DBPath(repoRoot string) string {
	return filepath.Join(repoRoot, Dir, "jnkn.db")
}

// SuppressionsPath returns the path to the externalised suppressions.yaml,
// if one is used instead of inlining suppressions into config.yaml.
func SuppressionsPath(repoRoot string) string {
	return filepath.Join(repoRoot, Dir, "suppressions.yaml")
}

// Load reads and parses config.yaml at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is caller-controlled, not untrusted input
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Scan.MinConfidence == 0 {
		cfg.Scan.MinConfidence = DefaultMinConfidence
	}
	return &cfg, nil
}

// Save writes cfg as YAML to path, creating parent directories as needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // G306: config is not sensitive
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
