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

// Package watch is the recursive filesystem watcher that keeps the graph
// store in sync with a live working tree between scans.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kraklabs/jnkn/pkg/config"
	"github.com/kraklabs/jnkn/pkg/memgraph"
	"github.com/kraklabs/jnkn/pkg/parser"
	"github.com/kraklabs/jnkn/pkg/stitch"
	"github.com/kraklabs/jnkn/pkg/store"
)

// State is a per-file node in the watcher's tracking state machine.
type State string

const (
	StateUnseen  State = "unseen"
	StateTracked State = "tracked"
	StateIgnored State = "ignored"
	StateFailed  State = "failed"
)

// DefaultCooldown is the minimum interval between stitch runs while the
// graph has pending changes.
const DefaultCooldown = 500 * time.Millisecond

// Stats counts the events a Watcher has processed, mirroring the shape of
// its source material's debounced-event counters.
type Stats struct {
	FilesCreated  int
	FilesModified int
	FilesDeleted  int
	Errors        int
	StitchRuns    int
}

// Watcher observes root recursively and keeps st in sync with the files
// that survive the engine's ignore gates.
type Watcher struct {
	root     string
	cfg      *config.Config
	engine   *parser.Engine
	st       *store.Store
	stitcher *stitch.Stitcher
	logger   *slog.Logger
	cooldown time.Duration

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	states  map[string]State
	dirty   bool
	lastRun time.Time
	stats   Stats

	stopCh chan struct{}
	doneCh chan struct{}
}

// New builds a Watcher. logger may be nil, in which case slog.Default is
// used.
func New(root string, cfg *config.Config, engine *parser.Engine, st *store.Store, stitcher *stitch.Stitcher, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		root:     root,
		cfg:      cfg,
		engine:   engine,
		st:       st,
		stitcher: stitcher,
		logger:   logger,
		cooldown: DefaultCooldown,
		states:   make(map[string]State),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// SetCooldown overrides the default stitch cooldown. It must be called
// before Start.
func (w *Watcher) SetCooldown(d time.Duration) {
	w.cooldown = d
}

// Stats returns a snapshot of the watcher's event counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// State reports the tracking state of rel, the path relative to root.
func (w *Watcher) State(rel string) State {
	w.mu.Lock()
	defer w.mu.Unlock()
	if s, ok := w.states[rel]; ok {
		return s
	}
	return StateUnseen
}

// Start begins watching root and returns once the event loop is running
// in its own goroutine; the loop runs until ctx is cancelled or Stop is
// called. It registers every directory under root up front, the same way
// the underlying notification library requires for recursive coverage.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw

	if err := w.addTree(w.root); err != nil {
		fsw.Close()
		return err
	}

	go w.run(ctx)
	return nil
}

// Stop signals the watcher's run loop to exit and waits for it to finish.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	if w.fsw != nil {
		w.fsw.Close()
	}
}

// addTree registers root and every non-ignored subdirectory beneath it
// with the underlying notify handle.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.cfg.IsIgnoredDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	pollInterval := w.cooldown / 4
	if pollInterval <= 0 {
		pollInterval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch.fsnotify.error", "err", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case <-ticker.C:
			w.maybeStitch(ctx)
		}
	}
}

// handleEvent classifies a single fsnotify event, applies the ignore gates
// and directory rejection, treats a rename as a delete followed by a
// create, then dispatches to handleWrite or handleRemove.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
		if event.Op&fsnotify.Create != 0 {
			if w.cfg.IsIgnoredDir(filepath.Base(event.Name)) {
				return
			}
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("watch.addtree.error", "path", event.Name, "err", err)
			}
		}
		return
	}

	if w.isGateIgnored(rel) {
		w.mu.Lock()
		w.states[rel] = StateIgnored
		w.mu.Unlock()
		return
	}

	switch {
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		w.handleRemove(ctx, rel)
		w.mu.Lock()
		w.stats.FilesDeleted++
		w.mu.Unlock()
	case event.Op&fsnotify.Write != 0, event.Op&fsnotify.Create != 0:
		created := event.Op&fsnotify.Create != 0
		w.handleWrite(ctx, event.Name, rel)
		w.mu.Lock()
		if created {
			w.stats.FilesCreated++
		} else {
			w.stats.FilesModified++
		}
		w.mu.Unlock()
	}
}

// isGateIgnored applies the same extension and directory-component gates
// the parsing engine applies during a full tree scan.
func (w *Watcher) isGateIgnored(rel string) bool {
	if config.IsIgnoredExtension(rel) {
		return true
	}
	for _, part := range strings.Split(rel, "/") {
		if w.cfg.IsIgnoredDir(part) {
			return true
		}
	}
	return false
}

// handleWrite parses the single file at absPath and atomically replaces
// its nodes, edges and scan metadata in the store.
func (w *Watcher) handleWrite(ctx context.Context, absPath, rel string) {
	res := w.engine.ScanFile(absPath, rel)
	if res.SkipReason != parser.SkipNone {
		w.mu.Lock()
		w.states[rel] = StateIgnored
		w.mu.Unlock()
		return
	}
	if !res.Success {
		w.logger.Warn("watch.parse.error", "path", rel, "errs", res.Errors)
		w.mu.Lock()
		w.states[rel] = StateFailed
		w.stats.Errors++
		w.mu.Unlock()
		return
	}

	meta := store.ScanMetadata{
		Path:      rel,
		Hash:      res.Hash,
		NodeCount: len(res.Nodes),
		EdgeCount: len(res.Edges),
		Timestamp: w.now(),
	}
	if err := w.st.ReplaceFile(ctx, rel, res.Nodes, res.Edges, meta); err != nil {
		w.logger.Warn("watch.store.error", "path", rel, "err", err)
		w.mu.Lock()
		w.states[rel] = StateFailed
		w.stats.Errors++
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	w.states[rel] = StateTracked
	w.dirty = true
	w.mu.Unlock()
}

// handleRemove deletes a file's nodes and scan metadata from the store.
func (w *Watcher) handleRemove(ctx context.Context, rel string) {
	if err := w.st.DeleteNodesByFile(ctx, rel); err != nil {
		w.logger.Warn("watch.delete.error", "path", rel, "err", err)
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
		return
	}
	if err := w.st.DeleteScanMetadata(ctx, rel); err != nil {
		w.logger.Warn("watch.delete_meta.error", "path", rel, "err", err)
	}

	w.mu.Lock()
	delete(w.states, rel)
	w.dirty = true
	w.mu.Unlock()
}

// maybeStitch re-runs the stitcher once the graph is dirty and the
// cooldown since the last run has elapsed. A fresh memgraph snapshot is
// loaded from the store so the stitcher sees every change applied since
// the previous run.
func (w *Watcher) maybeStitch(ctx context.Context) {
	w.mu.Lock()
	dirty := w.dirty
	elapsed := w.now().Sub(w.lastRun)
	w.mu.Unlock()

	if !dirty || elapsed < w.cooldown {
		return
	}

	nodes, edges, err := w.st.LoadGraph(ctx)
	if err != nil {
		w.logger.Warn("watch.stitch.load_error", "err", err)
		return
	}
	g := memgraph.Build(nodes, edges)
	inferred := w.stitcher.Run(g)
	if err := w.st.UpsertEdges(ctx, inferred); err != nil {
		w.logger.Warn("watch.stitch.save_error", "err", err)
		return
	}

	w.mu.Lock()
	w.dirty = false
	w.lastRun = w.now()
	w.stats.StitchRuns++
	w.mu.Unlock()
}

// now is overridden in tests to avoid real-time sleeps; production callers
// get time.Now.
var nowFunc = time.Now

func (w *Watcher) now() time.Time { return nowFunc() }

// SortedStates returns the watcher's tracked relative paths in sorted
// order, for deterministic reporting.
func (w *Watcher) SortedStates() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.states))
	for rel := range w.states {
		out = append(out, rel)
	}
	sort.Strings(out)
	return out
}
