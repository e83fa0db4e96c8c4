// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeLaws(t *testing.T) {
	want := []string{"payment", "db", "host"}
	assert.Equal(t, want, Tokenize("PAYMENT_DB_HOST"))
	assert.Equal(t, want, Tokenize("payment-db-host"))
	assert.Equal(t, want, Tokenize("paymentDbHost"))
}

func TestTokenizeDedup(t *testing.T) {
	assert.Equal(t, []string{"foo", "bar"}, Tokenize("foo_foo_bar_foo"))
}

func TestTokenizeAcronymBoundary(t *testing.T) {
	assert.Equal(t, []string{"http", "server"}, Tokenize("HTTPServer"))
}

func TestSignificantTokensDropsShort(t *testing.T) {
	got := SignificantTokens("db_id_a")
	assert.Equal(t, []string{"db", "id"}, got)
}
