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
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/jnkn/pkg/graph"
)

// containerManifest models the portion of a docker-compose / Kubernetes
// deployment manifest that matters for dependency stitching: named
// services, each with env entries.
type containerManifest struct {
	Services map[string]containerService `yaml:"services"`
}

type containerService struct {
	Image string            `yaml:"image"`
	Env   map[string]string `yaml:"environment"`
	Line  int               `yaml:"line"`
}

// ContainerExtractor is the container-manifest extractor.
type ContainerExtractor struct{}

func NewContainerExtractor() *ContainerExtractor { return &ContainerExtractor{} }

func (e *ContainerExtractor) Name() string { return "container" }

func (e *ContainerExtractor) CanExtract(fc FileContext) bool {
	base := fc.Path
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	return base == "docker-compose.yml" || base == "docker-compose.yaml" ||
		strings.HasSuffix(fc.Path, ".deployment.yaml") || strings.HasSuffix(fc.Path, ".deployment.yml")
}

func (e *ContainerExtractor) Extract(fc FileContext) ([]graph.Node, []graph.Edge, error) {
	var manifest containerManifest
	if err := yaml.Unmarshal(fc.Content, &manifest); err != nil {
		return nil, nil, fmt.Errorf("parse container manifest: %w", err)
	}

	fileNode := graph.Node{ID: graph.FileID(fc.Path), Name: fc.Path, Type: graph.NodeFile, Path: fc.Path}
	nodes := []graph.Node{fileNode}
	var edges []graph.Edge

	serviceNames := make([]string, 0, len(manifest.Services))
	for name := range manifest.Services {
		serviceNames = append(serviceNames, name)
	}
	sort.Strings(serviceNames)

	for _, name := range serviceNames {
		svc := manifest.Services[name]
		svcID := graph.InfraID("container", "service", name)
		svcNode := graph.Node{ID: svcID, Name: name, Type: graph.NodeInfra, Path: fc.Path}
		svcNode = svcNode.WithMetadata("container", "true")
		if svc.Line > 0 {
			svcNode = svcNode.WithMetadata(graph.MetaLine, strconv.Itoa(svc.Line))
		}
		nodes = append(nodes, svcNode)
		edges = append(edges, graph.Edge{
			SourceID:   fileNode.ID,
			TargetID:   svcID,
			Type:       graph.EdgeDefines,
			Confidence: graph.DirectEdgeConfidence,
		})

		envNames := make([]string, 0, len(svc.Env))
		for envName := range svc.Env {
			envNames = append(envNames, envName)
		}
		sort.Strings(envNames)

		for _, envName := range envNames {
			envID := graph.EnvID(envName)
			nodes = append(nodes, graph.Node{ID: envID, Name: envName, Type: graph.NodeEnvVar})
			edges = append(edges, graph.Edge{
				SourceID:   svcID,
				TargetID:   envID,
				Type:       graph.EdgeProvides,
				Confidence: graph.DirectEdgeConfidence,
			})
		}
	}

	return nodes, edges, nil
}
