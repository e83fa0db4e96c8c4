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

// Package impact is the blast-radius analyser. It performs a bounded
// breadth-first traversal over the downstream (outgoing-edge) direction
// from a seed set, and reports the reached nodes bucketed by id scheme.
package impact

import (
	"sort"
	"time"

	"github.com/kraklabs/jnkn/pkg/graph"
	"github.com/kraklabs/jnkn/pkg/memgraph"
	"github.com/kraklabs/jnkn/pkg/metrics"
)

// NoDepthLimit requests an unbounded traversal.
const NoDepthLimit = -1

// Report is the result of a blast-radius query.
type Report struct {
	SeedIDs     []string       `json:"seed_ids"`
	ImpactedIDs []string       `json:"impacted_ids"`
	Count       int            `json:"count"`
	Breakdown   map[string]int `json:"breakdown"`
}

// BlastRadius traverses g downstream from seeds, honouring edge direction,
// up to maxDepth hops (NoDepthLimit for unbounded). Unknown seed ids are
// tolerated and simply contribute no reachable nodes, since a seed that
// no longer exists in the graph (e.g. a deleted file) shouldn't fail the
// whole query.
func BlastRadius(g *memgraph.Graph, seeds []string, maxDepth int) Report {
	metrics.RecordBlastRadiusQuery()
	start := time.Now()
	defer func() { metrics.ObserveImpactDuration(time.Since(start).Seconds()) }()

	seedSet := make(map[string]bool, len(seeds))
	for _, id := range seeds {
		seedSet[id] = true
	}

	type queued struct {
		id    string
		depth int
	}

	visited := make(map[string]bool)
	queue := make([]queued, 0, len(seeds))
	for _, id := range seeds {
		if visited[id] {
			continue
		}
		visited[id] = true
		queue = append(queue, queued{id: id, depth: 0})
	}

	reached := make(map[string]bool)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if maxDepth != NoDepthLimit && cur.depth >= maxDepth {
			continue
		}

		for _, edge := range g.Out(cur.id) {
			if visited[edge.TargetID] {
				continue
			}
			visited[edge.TargetID] = true
			if !seedSet[edge.TargetID] {
				reached[edge.TargetID] = true
			}
			queue = append(queue, queued{id: edge.TargetID, depth: cur.depth + 1})
		}
	}

	impacted := make([]string, 0, len(reached))
	for id := range reached {
		impacted = append(impacted, id)
	}
	sort.Strings(impacted)

	breakdown := map[string]int{}
	for _, id := range impacted {
		breakdown[categorize(id)]++
	}

	seedsSorted := append([]string(nil), seeds...)
	sort.Strings(seedsSorted)

	return Report{
		SeedIDs:     seedsSorted,
		ImpactedIDs: impacted,
		Count:       len(impacted),
		Breakdown:   breakdown,
	}
}

// categorize buckets a node id by its scheme into one of the five
// report categories.
func categorize(id string) string {
	switch graph.ParseScheme(id) {
	case graph.SchemeInfra:
		return "infra"
	case graph.SchemeData, graph.SchemeJob, graph.SchemeColumn:
		return "data"
	case graph.SchemeCode, graph.SchemeFile:
		return "code"
	case graph.SchemeConfig, graph.SchemeEnv, graph.SchemeSecret:
		return "config"
	default:
		return "other"
	}
}
