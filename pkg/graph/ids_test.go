// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileIDNormalizesSeparators(t *testing.T) {
	assert.Equal(t, FileID("./src/app.go"), FileID("src/app.go"))
	assert.Equal(t, "file:src/app.go", FileID("src/app.go"))
}

func TestFileIDHashesLongPaths(t *testing.T) {
	long := strings.Repeat("a", 300)
	id := FileID(long)
	assert.True(t, strings.HasPrefix(id, "file:"))
	assert.Less(t, len(id), len(long))
}

func TestEnvIDScheme(t *testing.T) {
	id := EnvID("PAYMENT_DB_HOST")
	assert.Equal(t, Scheme("env"), ParseScheme(id))
}

func TestInfraIDAddressFormat(t *testing.T) {
	assert.Equal(t, "infra:aws_output.payment_db_host", InfraID("aws", "output", "payment_db_host"))
}

func TestColumnIDAddressFormat(t *testing.T) {
	assert.Equal(t, "column:warehouse/orders/total", ColumnID("warehouse", "orders", "total"))
}

func TestCodeEntityIDDeterministic(t *testing.T) {
	a := CodeEntityID("src/app.go", "main", 1, 10)
	b := CodeEntityID("src/app.go", "main", 1, 10)
	assert.Equal(t, a, b)

	c := CodeEntityID("src/app.go", "main", 1, 11)
	assert.NotEqual(t, a, c)
}
