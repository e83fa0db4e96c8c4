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
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/kraklabs/jnkn/pkg/graph"
)

// SourceExtractor detects environment-variable reads and in-file symbol
// definitions in Go source files. It doesn't build a call graph or resolve
// cross-file references; it only needs two shallow facts per file: which
// env vars it reads, and what top-level symbols it defines.
type SourceExtractor struct {
	mu     sync.Mutex // guards parser, which is not safe for concurrent use
	parser *sitter.Parser
}

// NewSourceExtractor builds a SourceExtractor with a Go grammar loaded.
func NewSourceExtractor() *SourceExtractor {
	p := sitter.NewParser()
	p.SetLanguage(golang.GetLanguage())
	return &SourceExtractor{parser: p}
}

func (e *SourceExtractor) Name() string { return "source" }

func (e *SourceExtractor) CanExtract(fc FileContext) bool {
	return strings.HasSuffix(fc.Path, ".go") && !strings.HasSuffix(fc.Path, "_test.go")
}

func (e *SourceExtractor) Extract(fc FileContext) ([]graph.Node, []graph.Edge, error) {
	e.mu.Lock()
	tree, err := e.parser.ParseCtx(context.Background(), nil, fc.Content)
	e.mu.Unlock()
	if err != nil {
		return nil, nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	fileNode := graph.Node{
		ID:   graph.FileID(fc.Path),
		Name: fc.Path,
		Type: graph.NodeFile,
		Path: fc.Path,
	}
	nodes := []graph.Node{fileNode}
	var edges []graph.Edge

	seenEnv := make(map[string]bool)
	root := tree.RootNode()
	walkSource(root, fc.Content, func(n *sitter.Node) {
		if name, line, ok := envVarRead(n, fc.Content); ok {
			if !seenEnv[name] {
				seenEnv[name] = true
				envNode := graph.Node{
					ID:   graph.EnvID(name),
					Name: name,
					Type: graph.NodeEnvVar,
				}
				envNode = envNode.WithMetadata(graph.MetaLine, strconv.Itoa(line))
				nodes = append(nodes, envNode)
				edges = append(edges, graph.Edge{
					SourceID:   fileNode.ID,
					TargetID:   envNode.ID,
					Type:       graph.EdgeReads,
					Confidence: graph.DirectEdgeConfidence,
				})
			}
			return
		}
		if name, line, ok := topLevelDefinition(n, fc.Content); ok {
			start := n.StartPoint()
			end := n.EndPoint()
			entity := graph.Node{
				ID:   graph.CodeEntityID(fc.Path, name, int(start.Row)+1, int(end.Row)+1),
				Name: name,
				Type: graph.NodeCodeEntity,
				Path: fc.Path,
			}
			entity = entity.WithMetadata(graph.MetaLine, strconv.Itoa(line))
			nodes = append(nodes, entity)
			edges = append(edges, graph.Edge{
				SourceID:   fileNode.ID,
				TargetID:   entity.ID,
				Type:       graph.EdgeDefines,
				Confidence: graph.DirectEdgeConfidence,
			})
		}
	})

	return nodes, edges, nil
}

// walkSource walks every node in the tree depth-first, invoking visit on
// each, in a fixed left-to-right order so two runs over the same file
// always produce the same node and edge ordering.
func walkSource(n *sitter.Node, content []byte, visit func(*sitter.Node)) {
	if n == nil {
		return
	}
	visit(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		walkSource(n.Child(i), content, visit)
	}
}

// envVarRead recognizes os.Getenv("X") and os.LookupEnv("X") call
// expressions and returns the literal env var name.
func envVarRead(n *sitter.Node, content []byte) (string, int, bool) {
	if n.Type() != "call_expression" {
		return "", 0, false
	}
	fn := n.ChildByFieldName("function")
	if fn == nil || fn.Type() != "selector_expression" {
		return "", 0, false
	}
	operand := fn.ChildByFieldName("operand")
	field := fn.ChildByFieldName("field")
	if operand == nil || field == nil {
		return "", 0, false
	}
	if operand.Content(content) != "os" {
		return "", 0, false
	}
	method := field.Content(content)
	if method != "Getenv" && method != "LookupEnv" {
		return "", 0, false
	}
	args := n.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return "", 0, false
	}
	arg := args.NamedChild(0)
	if arg.Type() != "interpreted_string_literal" && arg.Type() != "raw_string_literal" {
		return "", 0, false
	}
	lit, err := strconv.Unquote(arg.Content(content))
	if err != nil {
		lit = strings.Trim(arg.Content(content), "\"`")
	}
	if lit == "" {
		return "", 0, false
	}
	return lit, int(n.StartPoint().Row) + 1, true
}

// topLevelDefinition recognizes package-level function, method, and type
// declarations.
func topLevelDefinition(n *sitter.Node, content []byte) (string, int, bool) {
	switch n.Type() {
	case "function_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			return name.Content(content), int(n.StartPoint().Row) + 1, true
		}
	case "method_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			recv := ""
			if r := n.ChildByFieldName("receiver"); r != nil {
				recv = receiverTypeName(r, content) + "."
			}
			return recv + name.Content(content), int(n.StartPoint().Row) + 1, true
		}
	case "type_spec":
		if name := n.ChildByFieldName("name"); name != nil {
			return name.Content(content), int(n.StartPoint().Row) + 1, true
		}
	}
	return "", 0, false
}

// receiverTypeName extracts the bare type name from a method receiver
// parameter list, stripping any pointer marker.
func receiverTypeName(recv *sitter.Node, content []byte) string {
	if recv.NamedChildCount() == 0 {
		return ""
	}
	param := recv.NamedChild(0)
	typeNode := param.ChildByFieldName("type")
	if typeNode == nil {
		return ""
	}
	text := typeNode.Content(content)
	return strings.TrimPrefix(text, "*")
}
