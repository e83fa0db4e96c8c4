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
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/jnkn/pkg/graph"
)

// infraManifest is jnkn's normalized infrastructure-as-code manifest shape:
// one resource per declared address, its explicit dependencies, and the
// implicit references Terraform's plan JSON would record under
// "expressions[...].references". Resources with Output=true represent a
// declared output value.
type infraManifest struct {
	Provider  string         `yaml:"provider"`
	Resources []infraResource `yaml:"resources"`
}

type infraResource struct {
	Type       string   `yaml:"type"`
	Name       string   `yaml:"name"`
	Output     bool     `yaml:"output"`
	DependsOn  []string `yaml:"depends_on"`
	References []string `yaml:"references"`
	Line       int      `yaml:"line"`
}

// InfraExtractor is the infrastructure-as-code extractor. It mirrors the
// dependency/reference relationship shape of a Terraform plan, but
// consumes jnkn's own YAML manifest form like every other extractor in the
// registry, rather than shelling out to `terraform show`.
type InfraExtractor struct{}

func NewInfraExtractor() *InfraExtractor { return &InfraExtractor{} }

func (e *InfraExtractor) Name() string { return "infra" }

func (e *InfraExtractor) CanExtract(fc FileContext) bool {
	return strings.HasSuffix(fc.Path, ".infra.yaml") || strings.HasSuffix(fc.Path, ".infra.yml")
}

func (e *InfraExtractor) Extract(fc FileContext) ([]graph.Node, []graph.Edge, error) {
	var manifest infraManifest
	if err := yaml.Unmarshal(fc.Content, &manifest); err != nil {
		return nil, nil, fmt.Errorf("parse infra manifest: %w", err)
	}
	if manifest.Provider == "" {
		manifest.Provider = "unknown"
	}

	fileNode := graph.Node{ID: graph.FileID(fc.Path), Name: fc.Path, Type: graph.NodeFile, Path: fc.Path}
	nodes := []graph.Node{fileNode}
	var edges []graph.Edge

	byAddress := make(map[string]string, len(manifest.Resources))
	for _, r := range manifest.Resources {
		id := graph.InfraID(manifest.Provider, r.Type, r.Name)
		byAddress[fmt.Sprintf("%s.%s", r.Type, r.Name)] = id
	}

	for _, r := range manifest.Resources {
		id := graph.InfraID(manifest.Provider, r.Type, r.Name)
		node := graph.Node{
			ID:   id,
			Name: fmt.Sprintf("%s.%s", r.Type, r.Name),
			Type: graph.NodeInfra,
			Path: fc.Path,
		}
		if r.Output {
			node = node.WithMetadata("output", "true")
		}
		if r.Line > 0 {
			node = node.WithMetadata(graph.MetaLine, strconv.Itoa(r.Line))
		}
		nodes = append(nodes, node)

		edges = append(edges, graph.Edge{
			SourceID:   fileNode.ID,
			TargetID:   id,
			Type:       graph.EdgeDefines,
			Confidence: graph.DirectEdgeConfidence,
		})

		for _, dep := range r.DependsOn {
			if target, ok := byAddress[dep]; ok {
				edges = append(edges, graph.Edge{
					SourceID:   target,
					TargetID:   id,
					Type:       graph.EdgeConfigures,
					Confidence: graph.DirectEdgeConfidence,
				})
			}
		}
		for _, ref := range r.References {
			if ref == fmt.Sprintf("%s.%s", r.Type, r.Name) || strings.HasPrefix(ref, "var.") {
				continue
			}
			if target, ok := byAddress[ref]; ok {
				edges = append(edges, graph.Edge{
					SourceID:   target,
					TargetID:   id,
					Type:       graph.EdgeConfigures,
					Confidence: graph.DirectEdgeConfidence,
				})
			}
		}
	}

	return nodes, edges, nil
}
