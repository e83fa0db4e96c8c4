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

package stitch

import (
	"sort"
	"strings"

	"github.com/kraklabs/jnkn/pkg/graph"
)

// signal is one entry in the closed set of name-similarity signals.
type signal struct {
	name   string
	weight float64
	fires  func(sourceName, targetName string, sourceTokens, targetTokens []string) bool
}

var signals = []signal{
	{"EXACT_MATCH", 1.00, func(s, t string, _, _ []string) bool { return s == t }},
	{"NORMALIZED_MATCH", 0.90, func(s, t string, _, _ []string) bool { return normalize(s) == normalize(t) }},
	{"TOKEN_OVERLAP_HIGH", 0.80, func(_, _ string, st, tt []string) bool { return len(sharedTokens(st, tt)) >= 3 }},
	{"TOKEN_OVERLAP_MEDIUM", 0.60, func(_, _ string, st, tt []string) bool { return len(sharedTokens(st, tt)) == 2 }},
	{"SUFFIX_MATCH", 0.55, func(_, _ string, st, tt []string) bool { return isTerminalSubsequence(st, tt) }},
	{"PREFIX_MATCH", 0.50, func(_, _ string, st, tt []string) bool { return isInitialSubsequence(st, tt) }},
	{"CONTAINS", 0.40, func(s, t string, _, _ []string) bool { return properSubstring(normalize(s), normalize(t)) }},
	{"SINGLE_TOKEN", 0.30, func(_, _ string, st, tt []string) bool { return len(sharedTokens(st, tt)) == 1 }},
}

// commonTokens is the configurable set of tokens too generic to carry
// matching weight on their own.
var commonTokens = map[string]bool{"id": true, "name": true, "type": true, "key": true, "value": true}

// lowValueTokens is the configurable set of tokens that dilute a match
// when no higher-value token is also shared.
var lowValueTokens = map[string]bool{"prod": true, "dev": true, "staging": true, "aws": true, "gcp": true, "azure": true}

// Explanation is the structured record of how a score was reached: the
// final score in [0,1] plus the signals and penalties that produced it.
type Explanation struct {
	Score      float64
	Signals    []string
	Penalties  []string
	Tokens     []string
	SignalBase float64
}

// Score computes the stitcher's confidence for a candidate (source,
// target) pair given the number of alternative candidates the source
// matched this rule against.
func Score(sourceName, targetName string, altCount int, threshold int) Explanation {
	sourceTokens := graph.SignificantTokens(sourceName)
	targetTokens := graph.SignificantTokens(targetName)
	shared := sharedTokens(sourceTokens, targetTokens)

	var fired []string
	maxWeight := 0.0
	for _, sig := range signals {
		if sig.fires(sourceName, targetName, sourceTokens, targetTokens) {
			fired = append(fired, sig.name)
			if sig.weight > maxWeight {
				maxWeight = sig.weight
			}
		}
	}

	signalScore := maxWeight
	if len(fired) > 1 {
		signalScore += 0.02 * float64(len(fired)-1)
	}
	if signalScore > 1 {
		signalScore = 1
	}

	var penalties []string
	score := signalScore

	if hasShortToken(shared) {
		score *= 0.5
		penalties = append(penalties, "short-token")
	}
	if allCommon(shared) && !hasUncommon(shared) {
		score *= 0.5
		penalties = append(penalties, "common-token")
	}
	if altCount >= threshold {
		score *= 0.6
		penalties = append(penalties, "ambiguity")
	}
	if allLowValue(shared) && !hasHighValue(shared) {
		score *= 0.5
		penalties = append(penalties, "low-value")
	}

	sort.Strings(shared)
	return Explanation{
		Score:      score,
		Signals:    fired,
		Penalties:  penalties,
		Tokens:     shared,
		SignalBase: signalScore,
	}
}

func normalize(name string) string {
	return strings.Join(graph.SignificantTokens(name), "")
}

func sharedTokens(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, t := range b {
		inB[t] = true
	}
	seen := make(map[string]bool, len(a))
	var out []string
	for _, t := range a {
		if inB[t] && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// isTerminalSubsequence reports whether one token list is a terminal
// (suffix) run of the other.
func isTerminalSubsequence(a, b []string) bool {
	return isSubsequenceAt(a, b, true) || isSubsequenceAt(b, a, true)
}

// isInitialSubsequence reports whether one token list is an initial
// (prefix) run of the other.
func isInitialSubsequence(a, b []string) bool {
	return isSubsequenceAt(a, b, false) || isSubsequenceAt(b, a, false)
}

func isSubsequenceAt(shorter, longer []string, terminal bool) bool {
	if len(shorter) == 0 || len(shorter) >= len(longer) {
		return false
	}
	offset := 0
	if terminal {
		offset = len(longer) - len(shorter)
	}
	for i, t := range shorter {
		if longer[offset+i] != t {
			return false
		}
	}
	return true
}

func properSubstring(a, b string) bool {
	if a == "" || b == "" || a == b {
		return false
	}
	return strings.Contains(b, a) || strings.Contains(a, b)
}

func hasShortToken(tokens []string) bool {
	for _, t := range tokens {
		if len(t) < 3 {
			return true
		}
	}
	return false
}

func allCommon(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		if !commonTokens[t] {
			return false
		}
	}
	return true
}

func hasUncommon(tokens []string) bool {
	for _, t := range tokens {
		if !commonTokens[t] {
			return true
		}
	}
	return false
}

func allLowValue(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		if !lowValueTokens[t] {
			return false
		}
	}
	return true
}

func hasHighValue(tokens []string) bool {
	for _, t := range tokens {
		if !lowValueTokens[t] {
			return true
		}
	}
	return false
}
