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

// Package manifest parses jnkn.toml and resolves the local dependencies it
// declares into absolute paths the scan engine can walk, so a graph can
// span more than one repository.
package manifest

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	jnknerrors "github.com/kraklabs/jnkn/internal/errors"
)

// FileName is the fixed manifest file name at a project's root.
const FileName = "jnkn.toml"

// Dependency is one entry under [dependencies] or [tool.jnkn.sources]. A
// dependency is either a local path or a git remote; the short form
// ("../legacy") is decoded as a Path.
type Dependency struct {
	Path   string `toml:"path,omitempty"`
	Git    string `toml:"git,omitempty"`
	Branch string `toml:"branch,omitempty"`
}

// project is the [project] table.
type project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// raw mirrors the on-disk TOML shape, including the short-form
// dependency value ("../legacy") that decodeDependencies expands.
type raw struct {
	Project project `toml:"project"`
	// Dependencies is decoded by decodeDependencies because go-toml/v2 does not
	// support per-field union unmarshaling for a bare string vs. a table.
	Tool struct {
		Jnkn struct {
			Sources map[string]Dependency `toml:"sources"`
		} `toml:"jnkn"`
	} `toml:"tool"`
}

// Manifest is a parsed jnkn.toml plus the directory it was loaded from.
type Manifest struct {
	Dir             string
	Name            string
	Version         string
	Dependencies    map[string]Dependency
	SourceOverrides map[string]Dependency
}

// DefaultVersion is used when jnkn.toml omits [project].version.
const DefaultVersion = "0.0.0"

// Load reads dir/jnkn.toml. A missing manifest is not an error: it
// returns defaults with Name taken from the directory's base name, per
// the original resolver's "load non-existent manifest returns defaults"
// behavior.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is caller-controlled
	if os.IsNotExist(err) {
		return &Manifest{
			Dir:             dir,
			Name:            filepath.Base(dir),
			Version:         DefaultVersion,
			Dependencies:    map[string]Dependency{},
			SourceOverrides: map[string]Dependency{},
		}, nil
	}
	if err != nil {
		return nil, jnknerrors.NewConfigError(
			"failed to read project manifest",
			err.Error(),
			"check that "+path+" is readable",
			err,
		)
	}

	var r raw
	if err := toml.Unmarshal(data, &r); err != nil {
		return nil, jnknerrors.NewConfigError(
			"failed to parse project manifest",
			err.Error(),
			"jnkn.toml must be valid TOML with [project] and [dependencies] tables",
			err,
		)
	}

	deps, err := decodeDependencies(data)
	if err != nil {
		return nil, jnknerrors.NewConfigError(
			"failed to parse project manifest dependencies",
			err.Error(),
			"each entry under [dependencies] must be a path string, or a table with path/git",
			err,
		)
	}

	name := r.Project.Name
	if name == "" {
		name = filepath.Base(dir)
	}
	version := r.Project.Version
	if version == "" {
		version = DefaultVersion
	}

	return &Manifest{
		Dir:             dir,
		Name:            name,
		Version:         version,
		Dependencies:    deps,
		SourceOverrides: r.Tool.Jnkn.Sources,
	}, nil
}

// decodeDependencies re-parses data a second time into a generic document
// so each [dependencies] value can be type-switched between the short
// string form and the table form before settling on a Dependency.
func decodeDependencies(data []byte) (map[string]Dependency, error) {
	var doc struct {
		Dependencies map[string]any `toml:"dependencies"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	out := make(map[string]Dependency, len(doc.Dependencies))
	for name, v := range doc.Dependencies {
		switch val := v.(type) {
		case string:
			out[name] = Dependency{Path: val}
		case map[string]any:
			d := Dependency{}
			if p, ok := val["path"].(string); ok {
				d.Path = p
			}
			if g, ok := val["git"].(string); ok {
				d.Git = g
			}
			if b, ok := val["branch"].(string); ok {
				d.Branch = b
			}
			out[name] = d
		}
	}
	return out, nil
}

// Source identifies how a resolved dependency's path was determined.
type Source string

const (
	SourceLocal         Source = "local"
	SourceLocalOverride Source = "local_override"
)

// Resolved is one dependency resolved to an absolute, existing path.
type Resolved struct {
	Name   string
	Path   string
	Source Source
}

// Resolution is the outcome of resolving every dependency in a manifest.
type Resolution struct {
	Dependencies []Resolved
}

// Resolve walks m's [dependencies], applying [tool.jnkn.sources] overrides
// before path resolution (an override always takes precedence, mirroring
// the original resolver's override-precedence behavior), and resolves
// each local dependency to an absolute path. A git dependency with no
// local override returns a NotImplementedError: jnkn resolves local
// multi-project graphs only (§9 Open Questions decision 5).
func Resolve(m *Manifest) (Resolution, error) {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	var resolved []Resolved
	for _, name := range names {
		dep := m.Dependencies[name]
		source := SourceLocal

		if override, ok := m.SourceOverrides[name]; ok {
			dep = override
			source = SourceLocalOverride
		}

		if dep.Path == "" {
			if dep.Git != "" {
				return Resolution{}, jnknerrors.NewNotImplementedError(
					"git-sourced dependencies are not supported",
					"dependency '"+name+"' declares a git source",
					"vendor the dependency locally and add a path under [tool.jnkn.sources]",
				)
			}
			return Resolution{}, jnknerrors.NewConfigError(
				"dependency has neither path nor git source",
				"dependency '"+name+"' is missing both fields",
				"add a path or git key under [dependencies]."+name,
				nil,
			)
		}

		abs := dep.Path
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(m.Dir, dep.Path)
		}
		abs = filepath.Clean(abs)

		if _, err := os.Stat(abs); err != nil {
			return Resolution{}, jnknerrors.NewNotFoundError(
				"dependency '"+name+"' not found",
				"resolved path "+abs+" does not exist",
				"check the path in jnkn.toml or remove the dependency",
			)
		}

		resolved = append(resolved, Resolved{Name: name, Path: abs, Source: source})
	}

	return Resolution{Dependencies: resolved}, nil
}
