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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/jnkn/internal/coordinator"
	jnknerrors "github.com/kraklabs/jnkn/internal/errors"
	"github.com/kraklabs/jnkn/internal/ui"
	"github.com/kraklabs/jnkn/pkg/watch"
)

func runWatch(args []string, root string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	noColor := fs.Bool("no-color", false, "Disable colored output")
	cooldown := fs.Duration("cooldown", watch.DefaultCooldown, "Minimum time between stitcher runs")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: jnkn watch [DIR] [options]

Watches DIR (default: repository root) for file changes and keeps the
dependency graph up to date, restitching at most once per cooldown.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	ui.InitColors(*noColor)

	repoRoot, err := coordinator.ResolveRoot(root)
	if err != nil {
		jnknerrors.FatalError(jnknerrors.NewInternalError("cannot resolve repository root", err.Error(), "", err), false)
	}

	watchRoot := repoRoot
	if fs.NArg() > 0 {
		watchRoot = fs.Arg(0)
	}

	p, err := coordinator.OpenProject(repoRoot, nil)
	if err != nil {
		jnknerrors.FatalError(jnknerrors.NewConfigError(
			"project not initialized",
			err.Error(),
			"run 'jnkn init' first",
			err,
		), false)
	}
	defer p.Close()

	w := watch.New(watchRoot, p.Config, p.Engine, p.Store, p.Stitcher(), nil)
	if *cooldown > 0 {
		w.SetCooldown(*cooldown)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		jnknerrors.FatalError(jnknerrors.NewInternalError("watcher failed to start", err.Error(), "", err), false)
	}
	ui.Successf("Watching %s (press Ctrl-C to stop)", watchRoot)

	<-ctx.Done()
	w.Stop()

	stats := w.Stats()
	ui.Header("Watch stopped")
	fmt.Printf("  files created:  %d\n", stats.FilesCreated)
	fmt.Printf("  files modified: %d\n", stats.FilesModified)
	fmt.Printf("  files deleted:  %d\n", stats.FilesDeleted)
	fmt.Printf("  stitch runs:    %d\n", stats.StitchRuns)
	fmt.Printf("  errors:         %d\n", stats.Errors)
}
