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

// Package stitch is the cross-domain rule pipeline that infers edges
// between nodes an extractor cannot link syntactically, because the
// relationship holds only by name convention.
package stitch

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kraklabs/jnkn/pkg/graph"
	"github.com/kraklabs/jnkn/pkg/memgraph"
	"github.com/kraklabs/jnkn/pkg/metrics"
	"github.com/kraklabs/jnkn/pkg/suppress"
)

// Config controls the stitcher's thresholds.
type Config struct {
	MinConfidence      float64
	AmbiguityThreshold int
	RuleVersion        int
}

// DefaultConfig returns the stitcher's documented defaults.
func DefaultConfig() Config {
	return Config{MinConfidence: 0.5, AmbiguityThreshold: 3, RuleVersion: 1}
}

// Stitcher runs the rule pipeline against a graph snapshot.
type Stitcher struct {
	cfg         Config
	suppression *suppress.Store
}

// New builds a Stitcher. suppression may be nil, meaning no suppressions
// are consulted.
func New(cfg Config, suppression *suppress.Store) *Stitcher {
	if suppression == nil {
		suppression = suppress.New(nil)
	}
	return &Stitcher{cfg: cfg, suppression: suppression}
}

// Run evaluates every rule against g and returns the inferred edges that
// clear the confidence floor and are not shadowed by a suppression entry.
// Running Run twice on an unchanged graph yields the same edge set both
// times: the function is pure and the caller decides whether to persist
// duplicates, which pkg/store's UpsertEdges already treats as a no-op by
// primary key.
func (s *Stitcher) Run(g *memgraph.Graph) []graph.Edge {
	var out []graph.Edge
	for _, rule := range Rules {
		out = append(out, s.runRule(g, rule)...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SourceID != out[j].SourceID {
			return out[i].SourceID < out[j].SourceID
		}
		if out[i].TargetID != out[j].TargetID {
			return out[i].TargetID < out[j].TargetID
		}
		return out[i].Type < out[j].Type
	})
	metrics.RecordStitchRun(len(out))
	return out
}

// candidateScore records a candidate on which at least one signal fired
// when scored unambiguously (alt_count=0); the number of such candidates
// is the alt_count used when rescoring with the real penalty.
type candidateScore struct {
	id   string
	node graph.Node
}

func (s *Stitcher) runRule(g *memgraph.Graph, rule Rule) []graph.Edge {
	sourceIDs := filterNodes(g.ByType(rule.SourceType), g, rule.SourceFilter)
	candidateIDs := filterNodes(g.ByType(rule.CandidateType), g, rule.CandidateFilter)

	// For the self-joining infra_hierarchy rule, a node must not be
	// paired with itself, and each unordered pair is considered once -
	// edgeDirection decides which endpoint is the source.
	selfJoin := rule.SourceType == rule.CandidateType

	var edges []graph.Edge
	for _, sourceID := range sourceIDs {
		sourceNode, _ := g.Node(sourceID)

		var scored []candidateScore
		for _, candidateID := range candidateIDs {
			if candidateID == sourceID {
				continue
			}
			if selfJoin && candidateID < sourceID {
				continue
			}
			candidateNode, _ := g.Node(candidateID)
			exp := Score(sourceNode.Name, candidateNode.Name, 0, s.cfg.AmbiguityThreshold)
			if exp.SignalBase <= 0 {
				continue
			}
			scored = append(scored, candidateScore{id: candidateID, node: candidateNode})
		}
		if len(scored) == 0 {
			continue
		}

		altCount := len(scored)
		for _, c := range scored {
			exp := Score(sourceNode.Name, c.node.Name, altCount, s.cfg.AmbiguityThreshold)
			if exp.Score < s.cfg.MinConfidence {
				continue
			}

			fromID, toID := edgeDirection(rule, sourceNode, c.node, sourceID, c.id)
			if s.suppression.Suppressed(fromID, toID, rule.EdgeType, rule.Name) {
				continue
			}

			metrics.RecordRuleFired(rule.Name)
			edges = append(edges, graph.Edge{
				SourceID:   fromID,
				TargetID:   toID,
				Type:       rule.EdgeType,
				Confidence: exp.Score,
				Metadata: map[string]string{
					graph.MetaStitchRule:      rule.Name,
					graph.MetaStitchSignals:   strings.Join(exp.Signals, ","),
					graph.MetaStitchPenalties: strings.Join(exp.Penalties, ","),
					graph.MetaStitchTokens:    strings.Join(exp.Tokens, ","),
					graph.MetaRuleVersion:     strconv.Itoa(s.cfg.RuleVersion),
				},
			})
		}
	}
	return edges
}

func filterNodes(ids []string, g *memgraph.Graph, filter func(graph.Node) bool) []string {
	if filter == nil {
		return ids
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		n, ok := g.Node(id)
		if ok && filter(n) {
			out = append(out, id)
		}
	}
	return out
}

// edgeDirection resolves which of the rule's two endpoints is the edge
// source. For Forward rules the candidate is the provider. For the
// infra_hierarchy self-join, direction follows a domain hierarchy rank
// and falls back to a stable lexicographic order on id when neither side
// outranks the other.
func edgeDirection(rule Rule, sourceNode, candidateNode graph.Node, sourceID, candidateID string) (from, to string) {
	if rule.Name == "infra_hierarchy" {
		if rank(sourceNode) != rank(candidateNode) {
			if rank(sourceNode) > rank(candidateNode) {
				return sourceID, candidateID
			}
			return candidateID, sourceID
		}
		if sourceID < candidateID {
			return sourceID, candidateID
		}
		return candidateID, sourceID
	}
	if rule.Forward {
		return candidateID, sourceID
	}
	return sourceID, candidateID
}

// hierarchyRanks encodes the explicit domain ordering network > subnet >
// instance; unrecognised resource kinds rank 0 and fall through to the
// lexicographic tiebreak.
var hierarchyRanks = map[string]int{
	"network":  3,
	"vpc":      3,
	"subnet":   2,
	"instance": 1,
	"service":  1,
}

func rank(n graph.Node) int {
	lower := strings.ToLower(n.Name)
	best := 0
	for keyword, r := range hierarchyRanks {
		if strings.Contains(lower, keyword) && r > best {
			best = r
		}
	}
	return best
}

// Validate returns an error if cfg is unusable: a MinConfidence outside
// [0,1] or an AmbiguityThreshold below 1.
func (cfg Config) Validate() error {
	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be in [0,1], got %v", cfg.MinConfidence)
	}
	if cfg.AmbiguityThreshold < 1 {
		return fmt.Errorf("ambiguity threshold must be >= 1, got %d", cfg.AmbiguityThreshold)
	}
	return nil
}
