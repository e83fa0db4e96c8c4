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
	"sort"
	"strings"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/jnkn/internal/coordinator"
	jnknerrors "github.com/kraklabs/jnkn/internal/errors"
	"github.com/kraklabs/jnkn/internal/output"
	"github.com/kraklabs/jnkn/pkg/graph"
	"github.com/kraklabs/jnkn/pkg/memgraph"
)

// neighbor is one hop away from a queried node, in either direction.
type neighbor struct {
	NodeID       string `json:"node_id"`
	Relationship string `json:"relationship"`
	Direction    string `json:"direction"`
}

func runQuery(args []string, root string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	limit := fs.Int("limit", 20, "Maximum number of matches (0 = no limit)")
	neighbors := fs.Bool("neighbors", false, "Show neighbors of the first exact-id match instead of searching by substring")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: jnkn query <pattern> [options]

Searches the stored graph by substring over node id and name, or, with
--neighbors, lists everything one hop from an exact node id.

Examples:
  jnkn query PAYMENT_DB_HOST
  jnkn query env:PAYMENT_DB_HOST --neighbors
  jnkn query db --limit 50

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		jnknerrors.FatalError(jnknerrors.NewInputError(
			"query requires a search pattern",
			"no arguments given",
			"jnkn query <pattern>",
		), *jsonOutput)
	}
	pattern := fs.Arg(0)

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

	g, err := p.Graph(context.Background())
	if err != nil {
		jnknerrors.FatalError(jnknerrors.NewStoreError("failed to load graph", err.Error(), "", err), *jsonOutput)
	}

	if *neighbors {
		runQueryNeighbors(g, pattern, *jsonOutput)
		return
	}
	runQuerySearch(g, pattern, *limit, *jsonOutput)
}

func runQueryNeighbors(g *memgraph.Graph, id string, jsonOutput bool) {
	if _, ok := g.Node(id); !ok {
		jnknerrors.FatalError(jnknerrors.NewNotFoundError(
			"no such node",
			fmt.Sprintf("id %q is not in the graph", id),
			"run 'jnkn query <substring>' to find the exact id first",
		), jsonOutput)
	}

	var results []neighbor
	for _, e := range g.Out(id) {
		results = append(results, neighbor{NodeID: e.TargetID, Relationship: string(e.Type), Direction: "outgoing"})
	}
	for _, e := range g.In(id) {
		results = append(results, neighbor{NodeID: e.SourceID, Relationship: string(e.Type), Direction: "incoming"})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Direction != results[j].Direction {
			return results[i].Direction < results[j].Direction
		}
		return results[i].NodeID < results[j].NodeID
	})

	if jsonOutput {
		_ = output.OK(map[string]string{"command": "query", "version": version}, map[string]any{
			"id": id, "neighbors": results, "count": len(results),
		})
		return
	}
	printNeighborTable(id, results)
}

func runQuerySearch(g *memgraph.Graph, pattern string, limit int, jsonOutput bool) {
	needle := strings.ToLower(pattern)
	var matches []graph.Node
	for _, n := range g.Nodes() {
		if strings.Contains(strings.ToLower(n.ID), needle) || strings.Contains(strings.ToLower(n.Name), needle) {
			matches = append(matches, n)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	if jsonOutput {
		_ = output.OK(map[string]string{"command": "query", "version": version}, map[string]any{
			"pattern": pattern, "matches": matches, "count": len(matches),
		})
		return
	}
	printMatchTable(matches)
}

func printMatchTable(matches []graph.Node) {
	if len(matches) == 0 {
		fmt.Println("No results")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tNAME")
	fmt.Fprintln(w, "---\t---\t---")
	for _, n := range matches {
		fmt.Fprintf(w, "%s\t%s\t%s\n", formatCell(n.ID), string(n.Type), formatCell(n.Name))
	}
	w.Flush()
	fmt.Printf("\n(%d rows)\n", len(matches))
}

func printNeighborTable(id string, results []neighbor) {
	if len(results) == 0 {
		fmt.Printf("No neighbors for %s\n", id)
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DIRECTION\tRELATIONSHIP\tNODE")
	fmt.Fprintln(w, "---\t---\t---")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Direction, r.Relationship, formatCell(r.NodeID))
	}
	w.Flush()
	fmt.Printf("\n(%d rows)\n", len(results))
}

func formatCell(s string) string {
	if len(s) > 60 {
		return s[:57] + "..."
	}
	return s
}
