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

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/jnkn/internal/coordinator"
	jnknerrors "github.com/kraklabs/jnkn/internal/errors"
	"github.com/kraklabs/jnkn/internal/output"
	"github.com/kraklabs/jnkn/internal/ui"
	"github.com/kraklabs/jnkn/pkg/impact"
)

func runBlastRadius(args []string, root string) {
	fs := flag.NewFlagSet("blast-radius", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	maxDepth := fs.Int("max-depth", impact.NoDepthLimit, "Maximum traversal depth (-1 for unbounded)")
	noColor := fs.Bool("no-color", false, "Disable colored output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: jnkn blast-radius ID [ID...] [options]

Reports everything downstream of the given node ids.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	ui.InitColors(*noColor)

	if fs.NArg() == 0 {
		jnknerrors.FatalError(jnknerrors.NewInputError(
			"blast-radius requires at least one node id",
			"no arguments given",
			"jnkn blast-radius <id> [<id>...]",
		), *jsonOutput)
	}
	seeds := fs.Args()

	repoRoot, err := coordinator.ResolveRoot(root)
	if err != nil {
		jnknerrors.FatalError(jnknerrors.NewInternalError("cannot resolve repository root", err.Error(), "", err), *jsonOutput)
	}

	p, err := coordinator.OpenProject(repoRoot, nil)
	if err != nil {
		jnknerrors.FatalError(jnknerrors.NewConfigError(
			"project not initialized", err.Error(), "run 'jnkn init' first", err,
		), *jsonOutput)
	}
	defer p.Close()

	ctx := context.Background()
	g, err := p.Graph(ctx)
	if err != nil {
		jnknerrors.FatalError(jnknerrors.NewStoreError("failed to load graph", err.Error(), "", err), *jsonOutput)
	}

	report := impact.BlastRadius(g, seeds, *maxDepth)

	if *jsonOutput {
		_ = output.OK(map[string]string{"command": "blast-radius", "version": version}, report)
		return
	}

	ui.Header(fmt.Sprintf("Blast radius for %v", report.SeedIDs))
	fmt.Printf("  impacted: %d\n", report.Count)
	for category, count := range report.Breakdown {
		fmt.Printf("    %s: %d\n", category, count)
	}
	for _, id := range report.ImpactedIDs {
		fmt.Printf("  - %s\n", id)
	}
}
