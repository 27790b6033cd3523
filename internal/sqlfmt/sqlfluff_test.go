// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package sqlfmt

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLFluff_Defaults(t *testing.T) {
	f := NewSQLFluff("snowflake")

	assert.Equal(t, "sqlfluff", f.Name())
	assert.Equal(t, "snowflake", f.Dialect)
	assert.Equal(t, 88, f.MaxLineLength)
	assert.True(t, strings.HasPrefix(f.Rules, "L001,L002,"))
	assert.True(t, strings.HasSuffix(f.Rules, ",L050"))
	assert.Len(t, strings.Split(f.Rules, ","), 50)
}

func TestSQLFluff_FixArgs(t *testing.T) {
	f := NewSQLFluff("bigquery")

	args := f.fixArgs("/tmp/x.sql")
	assert.Equal(t, []string{
		"fix",
		"--dialect", "bigquery",
		"--rules", f.Rules,
		"--config", "max_line_length=88",
		"/tmp/x.sql",
	}, args)
}

func TestSQLFluff_LintArgs(t *testing.T) {
	f := NewSQLFluff("snowflake")

	args := f.lintArgs("/tmp/x.sql")
	assert.Equal(t, []string{
		"lint",
		"--dialect", "snowflake",
		"--format", "json",
		"/tmp/x.sql",
	}, args)
}

func TestParseLintReport(t *testing.T) {
	report := `[{"filepath": "x.sql", "violations": [
		{"line_no": 2, "code": "L010", "description": "Keywords must be consistently upper case."},
		{"line_no": 5, "code": "L039", "description": "Unnecessary whitespace found."}
	]}]`

	violations, err := parseLintReport(report)
	require.NoError(t, err)
	require.Len(t, violations, 2)
	assert.Equal(t, Violation{Line: 2, Code: "L010", Description: "Keywords must be consistently upper case."}, violations[0])
	assert.Equal(t, 5, violations[1].Line)
}

func TestParseLintReport_Invalid(t *testing.T) {
	_, err := parseLintReport("fix failed")
	assert.Error(t, err)
}

// stubBinary writes an executable shell script and returns its path.
func stubBinary(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "sqlfluff")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestSQLFluff_LintParsesDespiteExitCode(t *testing.T) {
	f := NewSQLFluff("snowflake")
	f.binary = stubBinary(t, `echo '[{"filepath":"x.sql","violations":[{"line_no":1,"code":"L044","description":"Query produces an unknown number of result columns."}]}]'
exit 1`)

	violations, err := f.Lint(context.Background(), "select * from t")
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "L044", violations[0].Code)
}

func TestSQLFluff_LintRunFailure(t *testing.T) {
	f := NewSQLFluff("snowflake")
	f.binary = stubBinary(t, `echo "boom" >&2
exit 2`)

	_, err := f.Lint(context.Background(), "select 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestSQLFluff_FormatKeepsFileContent(t *testing.T) {
	f := NewSQLFluff("snowflake")
	f.binary = stubBinary(t, "exit 0")

	out, err := f.Format(context.Background(), "select 1\n")
	require.NoError(t, err)
	assert.Equal(t, "select 1\n", out)
}

func TestSQLFluff_FormatFailureReturnsOriginal(t *testing.T) {
	f := NewSQLFluff("snowflake")
	f.binary = stubBinary(t, `echo "unfixable" >&2
exit 1`)

	out, err := f.Format(context.Background(), "select 1\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unfixable")
	assert.Equal(t, "select 1\n", out)
}

func TestSQLFluff_MissingBinary(t *testing.T) {
	f := NewSQLFluff("snowflake")
	f.binary = filepath.Join(t.TempDir(), "absent")

	out, err := f.Format(context.Background(), "select 1")
	require.Error(t, err)
	assert.Equal(t, "select 1", out)

	assert.False(t, f.Installed(context.Background()))
}
