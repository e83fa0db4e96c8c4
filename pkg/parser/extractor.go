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

// Package parser holds the extractor registry and the parsing engine that
// walks a project tree, applies the ignore/size/depth gates, and dispatches
// each surviving file to the first extractor that claims it.
package parser

import (
	"github.com/kraklabs/jnkn/pkg/graph"
)

// FileContext is what an Extractor receives for a single candidate file.
type FileContext struct {
	// Path is the file path relative to the scan root, forward-slash
	// normalized.
	Path string
	// AbsPath is the absolute path on disk, for opening the file.
	AbsPath string
	// Content is the full file content, already bounded by the engine's
	// size gate.
	Content []byte
}

// Extractor turns one file's content into nodes and edges. Implementations
// must be side-effect free and safe to call concurrently with themselves
// and other extractors on different files.
type Extractor interface {
	// Name identifies the extractor for diagnostics and scan metadata.
	Name() string

	// CanExtract reports whether this extractor claims fc. The registry
	// dispatches to the first extractor (in registration order) that
	// returns true.
	CanExtract(fc FileContext) bool

	// Extract parses fc and returns the nodes and edges it found. An error
	// here is recorded against the file's ParseResult and does not abort
	// the scan: one unparsable file should not cost the rest of the graph.
	Extract(fc FileContext) ([]graph.Node, []graph.Edge, error)
}

// Registry holds an ordered list of extractors. Order matters: more
// specific extractors (e.g. a container-manifest extractor recognizing
// docker-compose.yml) should be registered before general ones that would
// otherwise also claim the same extension.
type Registry struct {
	extractors []Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends e to the dispatch order.
func (r *Registry) Register(e Extractor) {
	r.extractors = append(r.extractors, e)
}

// Lookup returns the first extractor that claims fc, or nil if none do.
func (r *Registry) Lookup(fc FileContext) Extractor {
	for _, e := range r.extractors {
		if e.CanExtract(fc) {
			return e
		}
	}
	return nil
}

// Extractors returns the registered extractors in dispatch order.
func (r *Registry) Extractors() []Extractor {
	return r.extractors
}
