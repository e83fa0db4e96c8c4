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
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/jnkn/internal/coordinator"
	jnknerrors "github.com/kraklabs/jnkn/internal/errors"
	"github.com/kraklabs/jnkn/internal/output"
	"github.com/kraklabs/jnkn/internal/ui"
	"github.com/kraklabs/jnkn/pkg/graph"
	"github.com/kraklabs/jnkn/pkg/impact"
)

// checkResult is the --json payload for the check command.
type checkResult struct {
	ChangedFiles []string      `json:"changed_files"`
	Report       impact.Report `json:"blast_radius"`
	Critical     bool          `json:"critical"`
}

func runCheck(args []string, root string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	noColor := fs.Bool("no-color", false, "Disable colored output")
	gitDiff := fs.Bool("git-diff", false, "Compute the changed-file set from two git refs given as positional args")
	failIfCritical := fs.Bool("fail-if-critical", false, "Exit non-zero if the blast radius touches infra or config nodes")
	maxDepth := fs.Int("max-depth", impact.NoDepthLimit, "Maximum traversal depth (-1 for unbounded)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: jnkn check --git-diff A B [options]

Computes the blast radius of every file changed between two git refs.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	ui.InitColors(*noColor)

	if !*gitDiff || fs.NArg() != 2 {
		jnknerrors.FatalError(jnknerrors.NewInputError(
			"check requires --git-diff and exactly two refs",
			fmt.Sprintf("got %d positional arg(s), --git-diff=%v", fs.NArg(), *gitDiff),
			"jnkn check --git-diff A B",
		), *jsonOutput)
	}
	refs := fs.Args()

	repoRoot, err := coordinator.ResolveRoot(root)
	if err != nil {
		jnknerrors.FatalError(jnknerrors.NewInternalError("cannot resolve repository root", err.Error(), "", err), *jsonOutput)
	}

	changed, err := gitDiffNameStatus(repoRoot, refs[0], refs[1])
	if err != nil {
		jnknerrors.FatalError(jnknerrors.NewInputError(
			"git diff failed",
			err.Error(),
			"check that both refs exist and the root is a git repository",
		), *jsonOutput)
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

	seeds := make([]string, 0, len(changed))
	for _, path := range changed {
		seeds = append(seeds, graph.FileID(path))
	}

	report := impact.BlastRadius(g, seeds, *maxDepth)
	critical := report.Breakdown["infra"] > 0 || report.Breakdown["config"] > 0

	result := checkResult{ChangedFiles: changed, Report: report, Critical: critical}

	if *jsonOutput {
		_ = output.OK(map[string]string{"command": "check", "version": version}, result)
	} else {
		ui.Header(fmt.Sprintf("Blast radius for %d changed file(s)", len(changed)))
		for _, f := range changed {
			fmt.Printf("  - %s\n", f)
		}
		fmt.Printf("  impacted: %d\n", report.Count)
		for category, count := range report.Breakdown {
			fmt.Printf("    %s: %d\n", category, count)
		}
		if critical {
			ui.Critical("infrastructure or configuration nodes are in the blast radius")
		}
	}

	if *failIfCritical && critical {
		os.Exit(1)
	}
}

// gitDiffNameStatus runs `git diff --name-status old new` in repoRoot and
// returns the sorted, deduplicated set of changed paths. Renames surface
// their new path only, matching the blast-radius seed set (the old path no
// longer exists to be impacted).
func gitDiffNameStatus(repoRoot, oldRef, newRef string) ([]string, error) {
	cmd := exec.Command("git", "diff", "--name-status", oldRef, newRef) //nolint:gosec // G204: refs are operator-supplied CLI args, not untrusted input
	cmd.Dir = repoRoot
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w", strings.TrimSpace(stderr.String()), err)
	}

	seen := make(map[string]bool)
	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		status := fields[0]
		switch {
		case strings.HasPrefix(status, "R"):
			if len(fields) >= 3 {
				seen[fields[2]] = true
			}
		default:
			seen[fields[1]] = true
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}
