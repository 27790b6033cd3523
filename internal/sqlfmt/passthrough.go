// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package sqlfmt

import "context"

func init() {
	Register("passthrough", func(string) Formatter { return Passthrough{} })
}

// Passthrough is a no-op backend for environments without sqlfluff.
type Passthrough struct{}

func (Passthrough) Name() string { return "passthrough" }

func (Passthrough) Format(_ context.Context, sql string) (string, error) {
	return sql, nil
}

func (Passthrough) Lint(context.Context, string) ([]Violation, error) {
	return nil, nil
}
