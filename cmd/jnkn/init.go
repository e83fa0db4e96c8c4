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
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/jnkn/internal/coordinator"
	"github.com/kraklabs/jnkn/internal/ui"
	"github.com/kraklabs/jnkn/pkg/config"
)

type initFlags struct {
	force     bool
	demo      bool
	projectID string
}

func runInit(args []string, root string) {
	flags := parseInitFlags(args)

	repoRoot, err := coordinator.ResolveRoot(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	projectID := flags.projectID
	if projectID == "" {
		projectID = filepath.Base(repoRoot)
	}

	p, err := coordinator.InitProject(repoRoot, projectID, flags.force, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	defer p.Close()

	ui.Successf("Created %s", config.Path(repoRoot))
	addToGitignore(repoRoot)

	if flags.demo {
		if err := scaffoldDemo(repoRoot); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: demo scaffold failed: %v\n", err)
		} else {
			ui.Success("Wrote demo tree to ./jnkn-demo/")
		}
	}

	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Review and edit .jnkn/config.yaml if needed")
	fmt.Println("  2. Run 'jnkn scan' to build the dependency graph")
	fmt.Println("  3. Run 'jnkn watch' to keep it live while you work")
}

func parseInitFlags(args []string) initFlags {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var f initFlags
	fs.BoolVar(&f.force, "force", false, "Reinitialize an already-initialized project")
	fs.BoolVar(&f.demo, "demo", false, "Scaffold a small example tree under ./jnkn-demo/")
	fs.StringVar(&f.projectID, "project-id", "", "Project identifier (default: directory name)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: jnkn init [options]

Creates .jnkn/config.yaml in the repository root.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	return f
}

// addToGitignore adds .jnkn/ to the project's .gitignore if present, without
// duplicating an existing entry. A missing .gitignore is left untouched.
func addToGitignore(dir string) {
	gitignorePath := filepath.Join(dir, ".gitignore")

	content, err := os.ReadFile(gitignorePath) //nolint:gosec // G304: gitignorePath built from repo dir
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == ".jnkn/" || line == ".jnkn" || line == "/.jnkn/" || line == "/.jnkn" {
			return
		}
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec // G304: gitignorePath built from repo dir
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()

	if len(content) > 0 && content[len(content)-1] != '\n' {
		_, _ = f.WriteString("\n")
	}
	_, _ = f.WriteString("\n# jnkn state\n.jnkn/\n")
	ui.Success("Added .jnkn/ to .gitignore")
}

// scaffoldDemo writes a tiny example tree demonstrating the three most
// common node kinds: application source, infrastructure-as-code, and a
// container manifest, enough to exercise a full scan -> stitch -> blast
// radius walk.
func scaffoldDemo(root string) error {
	demoDir := filepath.Join(root, "jnkn-demo")
	if err := os.MkdirAll(demoDir, 0o750); err != nil {
		return err
	}

	files := map[string]string{
		"app.go": "package main\n\nimport \"os\"\n\nfunc main() {\n\t_ = os.Getenv(\"PAYMENT_DB_HOST\")\n}\n",
		"payment.infra.yaml": "provider: aws\nresources:\n" +
			"  - type: db_instance\n    name: payment_db\n" +
			"  - type: output\n    name: payment_db_host\n    output: true\n" +
			"    depends_on: [db_instance.payment_db]\n",
		"docker-compose.yaml": "services:\n" +
			"  app:\n" +
			"    environment:\n" +
			"      PAYMENT_DB_HOST: ${PAYMENT_DB_HOST}\n",
	}

	for name, contents := range files {
		path := filepath.Join(demoDir, name)
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil { //nolint:gosec // G306: demo content is not sensitive
			return err
		}
	}
	return nil
}
