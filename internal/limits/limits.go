// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package limits provides environment-overridable ceilings for the parsing
// engine's per-file and per-line size gates, so an operator can raise or
// lower them for one run without editing config.yaml.
package limits

import (
	"os"
	"strconv"

	"github.com/kraklabs/jnkn/pkg/config"
)

// MaxFileBytes returns the effective per-file size gate. Controlled via
// JNKN_MAX_FILE_BYTES; falls back to config.DefaultMaxFileBytes.
func MaxFileBytes() int64 {
	if v := os.Getenv("JNKN_MAX_FILE_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return config.DefaultMaxFileBytes
}

// MaxLineBytes returns the effective per-line length gate. Controlled via
// JNKN_MAX_LINE_BYTES; falls back to config.DefaultMaxLineBytes.
func MaxLineBytes() int {
	if v := os.Getenv("JNKN_MAX_LINE_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return config.DefaultMaxLineBytes
}
