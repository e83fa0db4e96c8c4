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

package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// NormalizePath normalizes a file path for consistent id generation:
// forward slashes, no leading "./" or "/", cleaned of redundant separators.
// This keeps ids identical across platforms.
func NormalizePath(path string) string {
	if len(path) >= 2 && path[0:2] == "./" {
		path = path[2:]
	}
	path = filepath.Clean(path)
	path = filepath.ToSlash(path)
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	return path
}

// FileID builds the canonical id of a file node: "file:<path>", hashed if
// the normalized path is too long to keep ids manageable.
func FileID(path string) string {
	normalized := NormalizePath(path)
	if len(normalized) <= 256 {
		return fmt.Sprintf("%s:%s", SchemeFile, normalized)
	}
	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%s:%s", SchemeFile, hex.EncodeToString(hash[:16]))
}

// EnvID builds the canonical id of an environment-variable node.
func EnvID(name string) string {
	return fmt.Sprintf("%s:%s", SchemeEnv, name)
}

// ConfigID builds the canonical id of a config-key node.
func ConfigID(name string) string {
	return fmt.Sprintf("%s:%s", SchemeConfig, name)
}

// SecretID builds the canonical id of a secret node.
func SecretID(name string) string {
	return fmt.Sprintf("%s:%s", SchemeSecret, name)
}

// InfraID builds the canonical id of an infrastructure resource, using the
// domain address format "<provider>_<resource>.<local_name>".
func InfraID(provider, resource, localName string) string {
	return fmt.Sprintf("%s:%s_%s.%s", SchemeInfra, provider, resource, localName)
}

// DataID builds the canonical id of a data asset.
func DataID(name string) string {
	return fmt.Sprintf("%s:%s", SchemeData, name)
}

// JobID builds the canonical id of a job.
func JobID(name string) string {
	return fmt.Sprintf("%s:%s", SchemeJob, name)
}

// ColumnID builds the canonical id of a column, using the address format
// "<namespace>/<table>/<field>".
func ColumnID(namespace, table, field string) string {
	return fmt.Sprintf("%s:%s/%s/%s", SchemeColumn, namespace, table, field)
}

// CodeEntityID builds the canonical id of an in-file symbol definition by
// hashing the stable parts of its identity (path, name, position), so ids
// stay stable across parser changes that touch unrelated details.
func CodeEntityID(path, name string, startLine, endLine int) string {
	normalizedPath := NormalizePath(path)
	idStr := fmt.Sprintf("%s|%s|%d|%d", normalizedPath, name, startLine, endLine)
	hash := sha256.Sum256([]byte(idStr))
	return fmt.Sprintf("%s:%s", SchemeCode, hex.EncodeToString(hash[:16]))
}

// ParseScheme returns the scheme prefix of an id ("" if malformed).
func ParseScheme(id string) Scheme {
	idx := strings.IndexByte(id, ':')
	if idx < 0 {
		return ""
	}
	return Scheme(id[:idx])
}
