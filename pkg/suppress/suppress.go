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

// Package suppress is the suppression pattern store consulted by the
// stitcher before emitting an edge and by review tooling. A suppression
// entry shadows all matching edges; matching is glob-based on either
// endpoint id and optionally scoped to an edge type or a named stitch
// rule.
package suppress

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/jnkn/pkg/config"
	"github.com/kraklabs/jnkn/pkg/graph"
)

// Entry is a compiled suppression pattern.
type Entry struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
	Reason string `yaml:"reason,omitempty"`
	Rule   string `yaml:"rule,omitempty"`
	Type   string `yaml:"type,omitempty"`
}

// Matches reports whether this entry shadows an edge with the given
// source id, target id, edge type, and (if known) stitch rule name. The
// Source and Target patterns are tried against the two endpoints in both
// orders, so env:USER_* -> infra:* also shadows an infra -> env edge.
func (e Entry) Matches(sourceID, targetID string, edgeType graph.EdgeType, rule string) bool {
	if e.Type != "" && e.Type != string(edgeType) {
		return false
	}
	if e.Rule != "" && e.Rule != rule {
		return false
	}
	endpoints := func(src, tgt string) bool {
		return (e.Source == "" || MatchID(src, e.Source)) && (e.Target == "" || MatchID(tgt, e.Target))
	}
	return endpoints(sourceID, targetID) || endpoints(targetID, sourceID)
}

// Store holds the full set of suppression entries for a project.
type Store struct {
	entries []Entry
}

// New builds a Store from a fixed entry slice.
func New(entries []Entry) *Store {
	return &Store{entries: entries}
}

// FromConfig converts a config.Config's inline suppression list into a
// Store.
func FromConfig(cfg *config.Config) *Store {
	entries := make([]Entry, 0, len(cfg.Suppressions))
	for _, s := range cfg.Suppressions {
		entries = append(entries, Entry{
			Source: s.Source,
			Target: s.Target,
			Reason: s.Reason,
			Rule:   s.Rule,
			Type:   s.Type,
		})
	}
	return &Store{entries: entries}
}

// Load reads an externalised suppressions.yaml file. A missing file is
// not an error; it yields an empty Store.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return &Store{}, nil
		}
		return nil, fmt.Errorf("read suppressions: %w", err)
	}
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse suppressions: %w", err)
	}
	return &Store{entries: entries}, nil
}

// Save writes entries to an externalised suppressions.yaml file.
func Save(s *Store, path string) error {
	data, err := yaml.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("marshal suppressions: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // G306: not sensitive
		return fmt.Errorf("write suppressions: %w", err)
	}
	return nil
}

// Entries returns the store's suppression entries.
func (s *Store) Entries() []Entry {
	return s.entries
}

// Add appends a suppression entry.
func (s *Store) Add(e Entry) {
	s.entries = append(s.entries, e)
}

// Suppressed reports whether any entry in the store shadows the given
// candidate edge.
func (s *Store) Suppressed(sourceID, targetID string, edgeType graph.EdgeType, rule string) bool {
	for _, e := range s.entries {
		if e.Matches(sourceID, targetID, edgeType, rule) {
			return true
		}
	}
	return false
}

// Filter removes every edge shadowed by the store's suppression entries.
// The rule name for an edge is read from its metadata, set by the
// stitcher as graph.MetaStitchRule.
func (s *Store) Filter(edges []graph.Edge) []graph.Edge {
	if len(s.entries) == 0 {
		return edges
	}
	out := make([]graph.Edge, 0, len(edges))
	for _, e := range edges {
		if s.Suppressed(e.SourceID, e.TargetID, e.Type, e.Metadata[graph.MetaStitchRule]) {
			continue
		}
		out = append(out, e)
	}
	return out
}
