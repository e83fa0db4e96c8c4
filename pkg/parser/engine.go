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
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/kraklabs/jnkn/internal/limits"
	"github.com/kraklabs/jnkn/pkg/config"
	"github.com/kraklabs/jnkn/pkg/metrics"
)

// Engine walks a project tree, applies the ignore/size/depth/line-length
// gates, and dispatches surviving files to the registry.
type Engine struct {
	cfg      *config.Config
	registry *Registry
	logger   *slog.Logger

	maxDepth     int
	maxFileBytes int64
	maxLineBytes int
	concurrency  int64
}

// NewEngine builds an Engine with jnkn's default gate values: the config
// package's depth bound, the internal/limits size and line-length caps,
// and a parallelism of 8. These fields are unexported.
func NewEngine(cfg *config.Config, registry *Registry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:          cfg,
		registry:     registry,
		logger:       logger,
		maxDepth:     config.DefaultMaxDepth,
		maxFileBytes: limits.MaxFileBytes(),
		maxLineBytes: limits.MaxLineBytes(),
		concurrency:  8,
	}
}

// ScanTree walks root and parses every file the gates admit. Extraction
// runs with bounded parallelism; callers on single-core or test
// environments still get correct, if sequential, behavior because the
// semaphore degrades to serialized execution at concurrency 1.
func (e *Engine) ScanTree(ctx context.Context, root string) (*ScanResult, error) {
	type walked struct {
		path string
		rel  string
	}

	var candidates []walked
	var result ScanResult

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			e.logger.Warn("parser.walk.error", "path", path, "err", walkErr)
			return nil
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if e.cfg.IsIgnoredDir(d.Name()) {
				result.FilesSkipped++
				return filepath.SkipDir
			}
			if depth := strings.Count(rel, "/") + 1; depth > e.maxDepth {
				result.FilesSkipped++
				return filepath.SkipDir
			}
			return nil
		}

		result.FilesWalked++

		if config.IsIgnoredExtension(rel) {
			result.Results = append(result.Results, ParseResult{Path: rel, SkipReason: SkipExtension})
			result.FilesSkipped++
			return nil
		}

		candidates = append(candidates, walked{path: path, rel: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk tree: %w", err)
	}

	sem := semaphore.NewWeighted(e.concurrency)
	group, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for _, c := range candidates {
		c := c
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		group.Go(func() error {
			defer sem.Release(1)
			res := e.ScanFile(c.path, c.rel)
			mu.Lock()
			result.Results = append(result.Results, res)
			switch {
			case res.SkipReason != SkipNone:
				result.FilesSkipped++
			case res.Success:
				result.FilesParsed++
			default:
				result.FilesFailed++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	metrics.RecordScan(result.FilesParsed, result.FilesSkipped, result.FilesFailed)
	return &result, nil
}

// ScanFile applies the size and line-length gates to the file at absPath
// and, if it survives, dispatches it to the registry. rel is the path
// recorded on the result (relative to the scan root).
func (e *Engine) ScanFile(absPath, rel string) ParseResult {
	info, err := os.Stat(absPath)
	if err != nil {
		return ParseResult{Path: rel, SkipReason: SkipUnreadableFile, Errors: []string{err.Error()}}
	}
	if e.maxFileBytes > 0 && info.Size() > e.maxFileBytes {
		return ParseResult{Path: rel, SkipReason: SkipTooLarge}
	}

	content, err := os.ReadFile(absPath) //nolint:gosec // G304: path comes from our own directory walk
	if err != nil {
		return ParseResult{Path: rel, SkipReason: SkipUnreadableFile, Errors: []string{err.Error()}}
	}

	if e.maxLineBytes > 0 && longestLine(content) > e.maxLineBytes {
		return ParseResult{Path: rel, SkipReason: SkipLineTooLong}
	}

	fc := FileContext{Path: rel, AbsPath: absPath, Content: content}
	extractor := e.registry.Lookup(fc)
	if extractor == nil {
		return ParseResult{Path: rel, SkipReason: SkipNoExtractor}
	}

	hash := sha256.Sum256(content)
	res := ParseResult{
		Path:      rel,
		Extractor: extractor.Name(),
		Hash:      hex.EncodeToString(hash[:]),
	}

	nodes, edges, err := extractor.Extract(fc)
	if err != nil {
		res.Success = false
		res.Errors = append(res.Errors, err.Error())
		e.logger.Warn("parser.extract.error", "path", rel, "extractor", extractor.Name(), "err", err)
		return res
	}

	res.Success = true
	res.Nodes = nodes
	res.Edges = edges
	return res
}

// longestLine returns the length in bytes of the longest line in content,
// without allocating the full split.
func longestLine(content []byte) int {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	longest := 0
	for scanner.Scan() {
		if n := len(scanner.Bytes()); n > longest {
			longest = n
		}
	}
	return longest
}
