// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package stitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreExactMatch(t *testing.T) {
	exp := Score("PAYMENT_DB_HOST", "PAYMENT_DB_HOST", 0, 3)
	assert.Equal(t, 1.0, exp.Score)
	assert.Contains(t, exp.Signals, "EXACT_MATCH")
}

func TestScoreNormalizedMatch(t *testing.T) {
	exp := Score("PAYMENT_DB_HOST", "payment-db-host", 0, 3)
	assert.InDelta(t, 0.90, exp.Score, 1e-9)
	assert.Contains(t, exp.Signals, "NORMALIZED_MATCH")
}

func TestScoreTokenOverlapHigh(t *testing.T) {
	exp := Score("paymentDbHostPrimary", "payment_db_host_replica", 0, 3)
	assert.Contains(t, exp.Signals, "TOKEN_OVERLAP_HIGH")
}

func TestScoreAmbiguityPenalty(t *testing.T) {
	unambiguous := Score("PAYMENT_DB_HOST", "payment_db_host", 1, 3)
	ambiguous := Score("PAYMENT_DB_HOST", "payment_db_host", 3, 3)
	assert.Less(t, ambiguous.Score, unambiguous.Score)
	assert.InDelta(t, unambiguous.Score*0.6, ambiguous.Score, 1e-9)
	assert.Contains(t, ambiguous.Penalties, "ambiguity")
}

func TestScoreShortTokenPenalty(t *testing.T) {
	exp := Score("DB_ID", "db_id", 0, 3)
	assert.Contains(t, exp.Penalties, "short-token")
}

func TestScoreCommonTokenPenalty(t *testing.T) {
	exp := Score("name", "name", 0, 3)
	// EXACT_MATCH fires regardless, but a common-token-only shared set
	// still triggers the penalty per spec (multiplicative, stacks with
	// other signals).
	assert.Contains(t, exp.Penalties, "common-token")
}

func TestScoreLowValueOnlyPenalty(t *testing.T) {
	exp := Score("prod", "prod", 0, 3)
	assert.Contains(t, exp.Penalties, "low-value")
}

func TestScoreNoSignalFiresIsZero(t *testing.T) {
	exp := Score("alpha", "omega", 0, 3)
	assert.Equal(t, 0.0, exp.SignalBase)
}

func TestScoreTokensAreSortedForDeterminism(t *testing.T) {
	a := Score("payment_db_host", "host_db_payment", 0, 3)
	b := Score("host_db_payment", "payment_db_host", 0, 3)
	assert.Equal(t, a.Tokens, b.Tokens)
}
