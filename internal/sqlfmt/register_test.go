// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package sqlfmt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	f, err := New("sqlfluff", "bigquery")
	require.NoError(t, err)

	fluff, ok := f.(*SQLFluff)
	require.True(t, ok)
	assert.Equal(t, "bigquery", fluff.Dialect)
}

func TestNew_Unknown(t *testing.T) {
	_, err := New("prettier", "snowflake")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown formatter: prettier")
}

func TestAvailable(t *testing.T) {
	assert.Equal(t, []string{"passthrough", "sqlfluff"}, Available())
}

func TestPassthrough(t *testing.T) {
	f, err := New("passthrough", "snowflake")
	require.NoError(t, err)

	out, err := f.Format(context.Background(), "select 1")
	require.NoError(t, err)
	assert.Equal(t, "select 1", out)

	violations, err := f.Lint(context.Background(), "select 1")
	require.NoError(t, err)
	assert.Empty(t, violations)
}
