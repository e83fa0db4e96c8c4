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

// Package main implements the jnkn CLI: a cross-domain dependency graph
// engine over application source, infrastructure-as-code, container and
// pipeline manifests.
//
// Usage:
//
//	jnkn init [--demo] [--force]         Create .jnkn/config.yaml
//	jnkn scan [--mode M] [--json]        Parse the tree and run the stitcher
//	jnkn watch [DIR]                     Watch a tree and keep the graph live
//	jnkn check --git-diff A B [...]      Blast radius over a git diff
//	jnkn blast-radius ID... [--json]     Print a blast-radius report
//	jnkn query <id-or-pattern> [--json]  Inspect the stored graph
package main

import (
	"flag"
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		root        = flag.String("root", "", "Repository root (default: current directory)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `jnkn - cross-domain dependency graph engine

Usage:
  jnkn <command> [options]

Commands:
  init          Create .jnkn/config.yaml in the repository root
  scan          Parse the tree, persist results, run the stitcher
  watch         Watch the tree and keep the graph up to date
  check         Compute blast radius over a git diff
  blast-radius  Print a blast-radius report for one or more node ids
  query         Inspect the stored graph

Global Options:
  --root        Repository root (default: current directory)
  --version     Show version and exit

Examples:
  jnkn init
  jnkn scan --json
  jnkn watch
  jnkn check --git-diff HEAD~1 HEAD --fail-if-critical
  jnkn blast-radius env:PAYMENT_DB_HOST
  jnkn query PAYMENT_DB_HOST

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("jnkn version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs, *root)
	case "scan":
		runScan(cmdArgs, *root)
	case "watch":
		runWatch(cmdArgs, *root)
	case "check":
		runCheck(cmdArgs, *root)
	case "blast-radius":
		runBlastRadius(cmdArgs, *root)
	case "query":
		runQuery(cmdArgs, *root)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
