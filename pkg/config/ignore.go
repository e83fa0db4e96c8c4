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

package config

import "strings"

// DefaultIgnoreDirs are directory names the walker never descends into,
// regardless of the .jnkn/config.yaml exclude list.
func DefaultIgnoreDirs() []string {
	return []string{
		".git",
		".jnkn",
		"node_modules",
		"vendor",
		"dist",
		"build",
		".venv",
		"venv",
		"__pycache__",
		".terraform",
		".mypy_cache",
		".pytest_cache",
		"target",
	}
}

// DefaultIgnoreExtensions are file extensions the parsing engine skips
// outright: binaries, lockfiles and generated minified/mapped assets.
func DefaultIgnoreExtensions() []string {
	return []string{
		".lock",
		".min.js",
		".map",
		".so",
		".dylib",
		".dll",
		".exe",
		".pyc",
		".class",
		".jar",
		".zip",
		".tar",
		".gz",
		".png",
		".jpg",
		".jpeg",
		".gif",
		".pdf",
		".woff",
		".woff2",
	}
}

// IsIgnoredDir reports whether dirName matches one of the default ignored
// directory names or one of the config's additional excludes.
func (c *Config) IsIgnoredDir(dirName string) bool {
	for _, d := range DefaultIgnoreDirs() {
		if dirName == d {
			return true
		}
	}
	for _, d := range c.Scan.Exclude {
		if dirName == d {
			return true
		}
	}
	return false
}

// IsIgnoredExtension reports whether path ends in one of the default
// ignored extensions.
func IsIgnoredExtension(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range DefaultIgnoreExtensions() {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
