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

import "github.com/kraklabs/jnkn/pkg/graph"

// isInfraOutput reports whether a node is an infra_resource tagged as an
// output declaration.
func isInfraOutput(n graph.Node) bool {
	return n.Type == graph.NodeInfra && n.Metadata["output"] == "true"
}

// isInfraContainer reports whether a node is an infra_resource surfaced
// by a container manifest.
func isInfraContainer(n graph.Node) bool {
	return n.Type == graph.NodeInfra && n.Metadata["container"] == "true"
}

// Rule declares one stitch rule: which source/candidate node types it
// joins, the edge type and direction it produces, and how its two
// endpoints' names should be compared.
type Rule struct {
	Name          string
	SourceType    graph.NodeType
	CandidateType graph.NodeType
	EdgeType      graph.EdgeType
	// SourceFilter/CandidateFilter further restrict which nodes of
	// SourceType/CandidateType participate (e.g. "output" infra only).
	SourceFilter    func(graph.Node) bool
	CandidateFilter func(graph.Node) bool
	// Forward reports whether the edge runs candidate -> source (true,
	// the common "provider -> consumer" direction) or source ->
	// candidate (false).
	Forward bool
}

// Rules is the canonical, order-significant rule table.
var Rules = []Rule{
	{
		Name:            "env_infra",
		SourceType:      graph.NodeEnvVar,
		CandidateType:   graph.NodeInfra,
		EdgeType:        graph.EdgeProvides,
		CandidateFilter: isInfraOutput,
		Forward:         true,
	},
	{
		Name:            "env_manifest",
		SourceType:      graph.NodeEnvVar,
		CandidateType:   graph.NodeInfra,
		EdgeType:        graph.EdgeProvides,
		CandidateFilter: isInfraContainer,
		Forward:         true,
	},
	{
		Name:          "config_infra",
		SourceType:    graph.NodeConfigKey,
		CandidateType: graph.NodeInfra,
		EdgeType:      graph.EdgeProvides,
		Forward:       true,
	},
	{
		Name:          "infra_hierarchy",
		SourceType:    graph.NodeInfra,
		CandidateType: graph.NodeInfra,
		EdgeType:      graph.EdgeConfigures,
		Forward:       false,
	},
}
