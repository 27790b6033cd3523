// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package sqlfmt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

func init() {
	Register("sqlfluff", func(dialect string) Formatter { return NewSQLFluff(dialect) })
}

// SQLFluff formats and lints SQL by shelling out to the sqlfluff binary.
// The tool only works on files, so each call round-trips through a
// temporary .sql file.
type SQLFluff struct {
	Dialect       string
	Rules         string
	MaxLineLength int
	Timeout       time.Duration

	binary string
}

// NewSQLFluff returns a sqlfluff backend for the given dialect with the
// default rule set, an 88 column limit and a 30 second run budget.
func NewSQLFluff(dialect string) *SQLFluff {
	return &SQLFluff{
		Dialect:       dialect,
		Rules:         ruleRange(1, 50),
		MaxLineLength: 88,
		Timeout:       30 * time.Second,
		binary:        "sqlfluff",
	}
}

// ruleRange renders the core rule codes Lfrom..Lto as a comma list.
func ruleRange(from, to int) string {
	rules := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		rules = append(rules, fmt.Sprintf("L%03d", i))
	}
	return strings.Join(rules, ",")
}

func (f *SQLFluff) Name() string { return "sqlfluff" }

// Format runs "sqlfluff fix" on the SQL and returns the fixed text. When
// the run fails the original text comes back with the error, so the
// caller can keep the unformatted SQL.
func (f *SQLFluff) Format(ctx context.Context, sql string) (string, error) {
	path, cleanup, err := tempSQL(sql)
	if err != nil {
		return sql, err
	}
	defer cleanup()

	_, stderr, runErr := f.run(ctx, f.fixArgs(path))

	data, readErr := os.ReadFile(path) //nolint:gosec // temp file created above
	if readErr != nil {
		if runErr != nil {
			return sql, runErr
		}
		return sql, fmt.Errorf("read fixed sql: %w", readErr)
	}
	if runErr != nil {
		if msg := strings.TrimSpace(stderr); msg != "" {
			return string(data), fmt.Errorf("sqlfluff fix: %v: %s", runErr, msg)
		}
		return string(data), fmt.Errorf("sqlfluff fix: %w", runErr)
	}
	return string(data), nil
}

// Lint runs "sqlfluff lint" and decodes its JSON report. A nonzero exit
// just means violations were found, so the output is parsed regardless
// and only an unreadable report is an error.
func (f *SQLFluff) Lint(ctx context.Context, sql string) ([]Violation, error) {
	path, cleanup, err := tempSQL(sql)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	stdout, stderr, runErr := f.run(ctx, f.lintArgs(path))

	violations, parseErr := parseLintReport(stdout)
	if parseErr == nil {
		return violations, nil
	}
	if runErr != nil {
		if msg := strings.TrimSpace(stderr); msg != "" {
			return nil, fmt.Errorf("sqlfluff lint: %v: %s", runErr, msg)
		}
		return nil, fmt.Errorf("sqlfluff lint: %w", runErr)
	}
	return nil, fmt.Errorf("parse sqlfluff report: %w", parseErr)
}

// Installed reports whether the sqlfluff binary responds to --version.
func (f *SQLFluff) Installed(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, f.binary, "--version").Run() == nil
}

func (f *SQLFluff) fixArgs(path string) []string {
	return []string{
		"fix",
		"--dialect", f.Dialect,
		"--rules", f.Rules,
		"--config", fmt.Sprintf("max_line_length=%d", f.MaxLineLength),
		path,
	}
}

func (f *SQLFluff) lintArgs(path string) []string {
	return []string{
		"lint",
		"--dialect", f.Dialect,
		"--format", "json",
		path,
	}
}

func (f *SQLFluff) run(ctx context.Context, args []string) (stdout, stderr string, err error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	var outBuf, errBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, f.binary, args...) //nolint:gosec // args are built above
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("sqlfluff timed out after %s", f.Timeout)
	}
	return outBuf.String(), errBuf.String(), err
}

type lintFile struct {
	Filepath   string      `json:"filepath"`
	Violations []Violation `json:"violations"`
}

func parseLintReport(report string) ([]Violation, error) {
	var files []lintFile
	if err := json.Unmarshal([]byte(report), &files); err != nil {
		return nil, err
	}
	var violations []Violation
	for _, file := range files {
		violations = append(violations, file.Violations...)
	}
	return violations, nil
}

func tempSQL(sql string) (path string, cleanup func(), err error) {
	file, err := os.CreateTemp("", "dbtgen-*.sql")
	if err != nil {
		return "", nil, fmt.Errorf("create temp sql file: %w", err)
	}
	path = file.Name()
	cleanup = func() { _ = os.Remove(path) }

	if _, err := file.WriteString(sql); err != nil {
		file.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp sql file: %w", err)
	}
	if err := file.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp sql file: %w", err)
	}
	return path, cleanup, nil
}
