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

package graph

// EdgeType is the closed set of relation kinds an Edge can carry.
type EdgeType string

const (
	EdgeReads      EdgeType = "reads"
	EdgeWrites     EdgeType = "writes"
	EdgeProvides   EdgeType = "provides"
	EdgeProvisions EdgeType = "provisions" // reserved for future use; never emitted today, see DESIGN.md
	EdgeConfigures EdgeType = "configures"
	EdgeDependsOn  EdgeType = "depends_on"
	EdgeTransforms EdgeType = "transforms"
	EdgeDefines    EdgeType = "defines"
)

// Edge is a directed typed relation between two nodes.
//
// Direction convention: providers point to consumers (infra --provides-->
// env), code-to-variable usage points from file to variable (file
// --reads--> env). Impact therefore flows downstream from a changed
// provider.
type Edge struct {
	SourceID   string            `json:"source_id"`
	TargetID   string            `json:"target_id"`
	Type       EdgeType          `json:"type"`
	Confidence float64           `json:"confidence"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Key returns the (source, target, type) triple that forms an edge's
// primary key: no two edges may share one.
func (e Edge) Key() EdgeKey {
	return EdgeKey{Source: e.SourceID, Target: e.TargetID, Type: e.Type}
}

// EdgeKey is the primary key of an edge.
type EdgeKey struct {
	Source string
	Target string
	Type   EdgeType
}

// DirectEdgeConfidence is the confidence assigned to edges produced by
// direct parsing: always exactly 1.0, since the extractor read the
// relationship straight out of the source rather than inferring it.
const DirectEdgeConfidence = 1.0
