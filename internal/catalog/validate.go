// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package catalog

import "fmt"

// Rules reported by the loader. Each Violation names the entity that
// broke the rule so issues can be traced back to a catalog line.
const (
	RuleMissingField      = "missing required field"
	RuleInvalidValue      = "invalid field value"
	RulePrimaryKey        = "primary key column must be non-nullable and unique"
	RuleDuplicateColumn   = "duplicate column name"
	RuleDuplicateSource   = "duplicate source table"
	RuleDuplicateModel    = "duplicate model name"
	RuleDanglingReference = "unresolved source table reference"
)

// Violation records one catalog rule broken by one entity.
type Violation struct {
	Entity string
	Rule   string
	Detail string
}

func (v Violation) String() string {
	if v.Detail == "" {
		return v.Entity + ": " + v.Rule
	}
	return fmt.Sprintf("%s: %s: %s", v.Entity, v.Rule, v.Detail)
}

// ValidationError aggregates every violation found in one load pass. The
// loader never stops at the first problem, so a single run surfaces all
// catalog issues at once.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return "catalog validation failed: " + e.Violations[0].String()
	}
	return fmt.Sprintf("catalog validation failed: %d violations", len(e.Violations))
}
