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

package parser

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/jnkn/pkg/graph"
)

// pipelineManifest is jnkn's normalized data-transformation project model:
// one entry per model/source, each naming the upstream models it depends
// on. Shaped after dbt's manifest.json node.depends_on.nodes structure.
type pipelineManifest struct {
	Namespace string          `yaml:"namespace"`
	Models    []pipelineModel `yaml:"models"`
}

type pipelineModel struct {
	Name      string   `yaml:"name"`
	DependsOn []string `yaml:"depends_on"`
}

// PipelineExtractor is the transformation-manifest extractor.
type PipelineExtractor struct{}

func NewPipelineExtractor() *PipelineExtractor { return &PipelineExtractor{} }

func (e *PipelineExtractor) Name() string { return "pipeline" }

func (e *PipelineExtractor) CanExtract(fc FileContext) bool {
	return strings.HasSuffix(fc.Path, ".pipeline.yaml") || strings.HasSuffix(fc.Path, ".pipeline.yml")
}

func (e *PipelineExtractor) Extract(fc FileContext) ([]graph.Node, []graph.Edge, error) {
	var manifest pipelineManifest
	if err := yaml.Unmarshal(fc.Content, &manifest); err != nil {
		return nil, nil, fmt.Errorf("parse pipeline manifest: %w", err)
	}
	if manifest.Namespace == "" {
		manifest.Namespace = "default"
	}

	fileNode := graph.Node{ID: graph.FileID(fc.Path), Name: fc.Path, Type: graph.NodeFile, Path: fc.Path}
	nodes := []graph.Node{fileNode}
	var edges []graph.Edge

	modelID := func(name string) string {
		return graph.DataID(fmt.Sprintf("%s.%s", manifest.Namespace, name))
	}

	for _, m := range manifest.Models {
		id := modelID(m.Name)
		nodes = append(nodes, graph.Node{ID: id, Name: m.Name, Type: graph.NodeDataAsset, Path: fc.Path})
		edges = append(edges, graph.Edge{
			SourceID:   fileNode.ID,
			TargetID:   id,
			Type:       graph.EdgeDefines,
			Confidence: graph.DirectEdgeConfidence,
		})

		for _, upstream := range m.DependsOn {
			upstreamID := modelID(upstream)
			edges = append(edges, graph.Edge{
				SourceID:   upstreamID,
				TargetID:   id,
				Type:       graph.EdgeTransforms,
				Confidence: graph.DirectEdgeConfidence,
			})
		}
	}

	return nodes, edges, nil
}
