// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package sqlfmt provides SQL formatting and linting backends.
package sqlfmt

import (
	"context"
	"fmt"
	"sort"
)

// Formatter defines the interface all SQL formatting backends must implement.
type Formatter interface {
	// Name returns the formatter's identifier (e.g., "sqlfluff")
	Name() string

	// Format rewrites sql in the backend's house style. On failure it
	// returns the best text it has, usually the input, together with
	// the error so callers can fall back without losing the SQL.
	Format(ctx context.Context, sql string) (string, error)

	// Lint reports style violations without changing the SQL.
	Lint(ctx context.Context, sql string) ([]Violation, error)
}

// Violation is one lint finding.
type Violation struct {
	Line        int    `json:"line_no"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Factory builds a formatter for a SQL dialect.
type Factory func(dialect string) Formatter

var factories = make(map[string]Factory)

// Register adds a formatter factory to the registry.
func Register(name string, f Factory) {
	factories[name] = f
}

// New builds the named formatter for the given dialect.
func New(name, dialect string) (Formatter, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return f(dialect), nil
}

// Available returns all registered formatter names, sorted.
func Available() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
