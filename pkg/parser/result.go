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

import "github.com/kraklabs/jnkn/pkg/graph"

// SkipReason records why the engine chose not to extract a file. An empty
// SkipReason means the file was dispatched to an extractor.
type SkipReason string

const (
	SkipNone           SkipReason = ""
	SkipIgnoredDir     SkipReason = "ignored_dir"
	SkipDepthExceeded  SkipReason = "depth_exceeded"
	SkipExtension      SkipReason = "ignored_extension"
	SkipTooLarge       SkipReason = "too_large"
	SkipLineTooLong    SkipReason = "line_too_long"
	SkipNoExtractor    SkipReason = "no_extractor"
	SkipUnreadableFile SkipReason = "unreadable"
)

// ParseResult is the outcome of parsing a single file. Callers persist
// scan metadata only for results whose extraction succeeded.
type ParseResult struct {
	Path       string
	Extractor  string
	Hash       string
	Nodes      []graph.Node
	Edges      []graph.Edge
	Success    bool
	SkipReason SkipReason
	Errors     []string
}

// ScanResult aggregates the per-file results of one full tree scan.
type ScanResult struct {
	Results      []ParseResult
	FilesWalked  int
	FilesSkipped int
	FilesParsed  int
	FilesFailed  int
}

// Failed files that were dispatched to an extractor but the extractor
// returned an error.
func (r ScanResult) Failed() []ParseResult {
	var out []ParseResult
	for _, res := range r.Results {
		if res.SkipReason == SkipNone && !res.Success {
			out = append(out, res)
		}
	}
	return out
}
