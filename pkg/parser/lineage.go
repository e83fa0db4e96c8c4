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
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kraklabs/jnkn/pkg/graph"
)

// lineageEvent is an OpenLineage-shaped runtime lineage event: a job run
// that reads some datasets and writes others, optionally carrying
// column-level lineage facets.
type lineageEvent struct {
	EventType string         `json:"eventType"`
	Job       lineageJobRef  `json:"job"`
	Run       lineageRunRef  `json:"run"`
	Inputs    []lineageAsset `json:"inputs"`
	Outputs   []lineageAsset `json:"outputs"`
}

type lineageJobRef struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

type lineageRunRef struct {
	RunID string `json:"runId"`
}

type lineageAsset struct {
	Namespace string         `json:"namespace"`
	Name      string         `json:"name"`
	Facets    lineageFacets  `json:"facets"`
}

type lineageFacets struct {
	Schema        *lineageSchemaFacet        `json:"schema"`
	ColumnLineage *lineageColumnLineageFacet `json:"columnLineage"`
}

type lineageSchemaFacet struct {
	Fields []lineageSchemaField `json:"fields"`
}

type lineageSchemaField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type lineageColumnLineageFacet struct {
	Fields map[string]lineageColumnLineage `json:"fields"`
}

type lineageColumnLineage struct {
	InputFields []lineageInputField `json:"inputFields"`
}

type lineageInputField struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Field     string `json:"field"`
}

// LineageExtractor is the runtime-lineage-event extractor. An event with
// eventType "START" carries no completed lineage and is ignored; only
// "COMPLETE" events produce nodes/edges, and every other eventType is
// ignored too.
type LineageExtractor struct{}

func NewLineageExtractor() *LineageExtractor { return &LineageExtractor{} }

func (e *LineageExtractor) Name() string { return "lineage" }

func (e *LineageExtractor) CanExtract(fc FileContext) bool {
	return strings.HasSuffix(fc.Path, ".lineage.json")
}

func (e *LineageExtractor) Extract(fc FileContext) ([]graph.Node, []graph.Edge, error) {
	var event lineageEvent
	if err := json.Unmarshal(fc.Content, &event); err != nil {
		return nil, nil, fmt.Errorf("parse lineage event: %w", err)
	}

	if event.EventType != "COMPLETE" {
		return nil, nil, nil
	}
	if event.Job.Namespace == "" || event.Job.Name == "" {
		return nil, nil, nil
	}

	jobID := graph.JobID(fmt.Sprintf("%s/%s", event.Job.Namespace, event.Job.Name))
	jobNode := graph.Node{ID: jobID, Name: event.Job.Name, Type: graph.NodeJob}
	if event.Run.RunID != "" {
		jobNode = jobNode.WithMetadata("run_id", event.Run.RunID)
	}

	nodes := []graph.Node{jobNode}
	var edges []graph.Edge

	assetID := func(a lineageAsset) string {
		return graph.DataID(fmt.Sprintf("%s/%s", a.Namespace, a.Name))
	}

	for _, in := range event.Inputs {
		id := assetID(in)
		nodes = append(nodes, graph.Node{ID: id, Name: in.Name, Type: graph.NodeDataAsset})
		edges = append(edges, graph.Edge{
			SourceID:   jobID,
			TargetID:   id,
			Type:       graph.EdgeReads,
			Confidence: graph.DirectEdgeConfidence,
		})
	}

	for _, out := range event.Outputs {
		id := assetID(out)
		nodes = append(nodes, graph.Node{ID: id, Name: out.Name, Type: graph.NodeDataAsset})
		edges = append(edges, graph.Edge{
			SourceID:   jobID,
			TargetID:   id,
			Type:       graph.EdgeWrites,
			Confidence: graph.DirectEdgeConfidence,
		})

		if out.Facets.Schema != nil {
			for _, field := range out.Facets.Schema.Fields {
				colID := graph.ColumnID(out.Namespace, out.Name, field.Name)
				colNode := graph.Node{ID: colID, Name: field.Name, Type: graph.NodeColumn}
				if field.Type != "" {
					colNode = colNode.WithMetadata("data_type", field.Type)
				}
				nodes = append(nodes, colNode)
			}
		}

		if out.Facets.ColumnLineage != nil {
			targetCols := make([]string, 0, len(out.Facets.ColumnLineage.Fields))
			for name := range out.Facets.ColumnLineage.Fields {
				targetCols = append(targetCols, name)
			}
			sort.Strings(targetCols)

			for _, colName := range targetCols {
				lineage := out.Facets.ColumnLineage.Fields[colName]
				targetColID := graph.ColumnID(out.Namespace, out.Name, colName)
				for _, in := range lineage.InputFields {
					sourceColID := graph.ColumnID(in.Namespace, in.Name, in.Field)
					edges = append(edges, graph.Edge{
						SourceID:   sourceColID,
						TargetID:   targetColID,
						Type:       graph.EdgeTransforms,
						Confidence: graph.DirectEdgeConfidence,
					})
				}
			}
		}
	}

	return nodes, edges, nil
}
