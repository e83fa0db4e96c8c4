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
)

// scanResult is the --json payload for the scan command.
type scanResult struct {
	Mode         string   `json:"mode"`
	FilesWalked  int      `json:"files_walked"`
	FilesParsed  int      `json:"files_parsed"`
	FilesSkipped int      `json:"files_skipped"`
	FilesFailed  int      `json:"files_failed"`
	StitchEdges  []string `json:"stitched_edges"`
}

func runScan(args []string, root string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	mode := fs.String("mode", "discovery", "Scan mode: discovery (report only) or enforcement (non-zero exit on parse failures)")
	noColor := fs.Bool("no-color", false, "Disable colored output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: jnkn scan [options]

Parses the repository tree, persists the results, and runs the stitcher.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	ui.InitColors(*noColor)
	if *mode != "discovery" && *mode != "enforcement" {
		jnknerrors.FatalError(jnknerrors.NewInputError(
			"invalid --mode value",
			fmt.Sprintf("got %q", *mode),
			"use --mode discovery or --mode enforcement",
		), *jsonOutput)
	}

	repoRoot, err := coordinator.ResolveRoot(root)
	if err != nil {
		jnknerrors.FatalError(jnknerrors.NewInternalError("cannot resolve repository root", err.Error(), "", err), *jsonOutput)
	}

	p, err := coordinator.OpenProject(repoRoot, nil)
	if err != nil {
		jnknerrors.FatalError(jnknerrors.NewConfigError(
			"project not initialized",
			err.Error(),
			"run 'jnkn init' first",
			err,
		), *jsonOutput)
	}
	defer p.Close()

	progressCfg := NewProgressConfig(*jsonOutput, *noColor)
	spinner := NewSpinner(progressCfg, "Scanning")

	ctx := context.Background()
	scan, err := p.Scan(ctx)
	if spinner != nil {
		_ = spinner.Finish()
	}
	if err != nil {
		jnknerrors.FatalError(jnknerrors.NewParseError("scan failed", err.Error(), "", err), *jsonOutput)
	}

	edgeIDs, err := p.RunStitcher(ctx)
	if err != nil {
		jnknerrors.FatalError(jnknerrors.NewResolutionError("stitch failed", err.Error(), "", err), *jsonOutput)
	}

	result := scanResult{
		Mode:         *mode,
		FilesWalked:  scan.FilesWalked,
		FilesParsed:  scan.FilesParsed,
		FilesSkipped: scan.FilesSkipped,
		FilesFailed:  scan.FilesFailed,
		StitchEdges:  edgeIDs,
	}

	if *jsonOutput {
		_ = output.OK(map[string]string{"command": "scan", "version": version}, result)
		if *mode == "enforcement" && result.FilesFailed > 0 {
			os.Exit(1)
		}
		return
	}

	ui.Header("Scan complete")
	fmt.Printf("  files walked:  %d\n", result.FilesWalked)
	fmt.Printf("  files parsed:  %d\n", result.FilesParsed)
	fmt.Printf("  files skipped: %d\n", result.FilesSkipped)
	fmt.Printf("  files failed:  %d\n", result.FilesFailed)
	fmt.Printf("  edges stitched: %d\n", len(edgeIDs))
	for _, f := range scan.Failed() {
		ui.Warningf("  %s: %v", f.Path, f.Errors)
	}

	if *mode == "enforcement" && result.FilesFailed > 0 {
		os.Exit(1)
	}
}
