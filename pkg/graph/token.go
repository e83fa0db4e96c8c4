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

import "strings"

// MinTokenLenForMatching is the length below which a token is discarded
// from stitching but still retained for display.
const MinTokenLenForMatching = 2

// Tokenize splits a name into lowercase tokens on non-alphanumeric
// boundaries and camelCase boundaries, deduplicating while preserving
// first-seen order. It never drops short tokens itself — callers that need
// matching-only tokens should filter with SignificantTokens.
//
// Tokenize("PAYMENT_DB_HOST") == Tokenize("payment-db-host") ==
// Tokenize("paymentDbHost") == ["payment", "db", "host"].
func Tokenize(name string) []string {
	var raw []rune
	var words []string

	flush := func() {
		if len(raw) > 0 {
			words = append(words, strings.ToLower(string(raw)))
			raw = raw[:0]
		}
	}

	runes := []rune(name)
	for i, r := range runes {
		switch {
		case isAlphaNumeric(r):
			if i > 0 && isCamelBoundary(runes, i) {
				flush()
			}
			raw = append(raw, r)
		default:
			flush()
		}
	}
	flush()

	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// SignificantTokens returns Tokenize(name) filtered to tokens of length
// >= MinTokenLenForMatching. Use this set for any stitching/matching
// computation; use Tokenize's full output for display.
func SignificantTokens(name string) []string {
	all := Tokenize(name)
	out := make([]string, 0, len(all))
	for _, t := range all {
		if len(t) >= MinTokenLenForMatching {
			out = append(out, t)
		}
	}
	return out
}

func isAlphaNumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// isCamelBoundary reports whether a camelCase/PascalCase word boundary
// falls immediately before runes[i]: a lowercase-to-uppercase transition,
// or the end of a run of uppercase letters followed by a lowercase letter
// (so "HTTPServer" splits as "http", "server", not "h","t","t","p",...).
func isCamelBoundary(runes []rune, i int) bool {
	prev := runes[i-1]
	cur := runes[i]

	if isLower(prev) && isUpper(cur) {
		return true
	}
	if isUpper(prev) && isUpper(cur) && i+1 < len(runes) && isLower(runes[i+1]) {
		return true
	}
	if isDigit(prev) && isAlpha(cur) && !isDigit(cur) {
		return false
	}
	return false
}

func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isAlpha(r rune) bool { return isLower(r) || isUpper(r) }
