// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	input := "table_name, file_format ,location\n customers_raw , parquet ,s3://lake/c/\n"

	rows, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "customers_raw", rows[0]["table_name"])
	assert.Equal(t, "parquet", rows[0]["file_format"])
	assert.Equal(t, "s3://lake/c/", rows[0]["location"])
}

func TestReadCSV_Empty(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("a,b,c\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadCSV_Malformed(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n\"unterminated\n"))
	assert.Error(t, err)
}

func TestColumn_HasConstraint(t *testing.T) {
	col := Column{Constraints: []string{"not_null", "unique"}}
	assert.True(t, col.HasConstraint("not_null"))
	assert.False(t, col.HasConstraint("pattern"))
}
