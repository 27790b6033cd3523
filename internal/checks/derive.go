// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package checks derives dbt test declarations from declared column
// constraints.
package checks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dacolabs/dbtgen/internal/catalog"
)

// Severity classifies a declaration as build-failing or advisory.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
)

// Test identifiers emitted under a column's tests list.
const (
	TestNotNull        = "not_null"
	TestUnique         = "unique"
	TestAcceptedValues = "accepted_values"
	TestRelationships  = "relationships"
	TestExpression     = "dbt_utils.expression_is_true"
	TestStringLength   = "dbt_utils.string_length"
)

// Declaration is one dbt test entry for a column. Structural constraints
// carry error severity and fail a build; soft validation constraints only
// warn.
type Declaration struct {
	Test     string
	Severity Severity

	Expression string   // set for expression tests
	Values     []string // set for accepted_values
	To         string   // set for relationships
	Field      string   // set for relationships
	MaxLength  *int     // set for string_length
}

type declarationConfig struct {
	Severity Severity `yaml:"severity"`
}

type declarationBody struct {
	Expression string            `yaml:"expression,omitempty"`
	Values     []string          `yaml:"values,omitempty"`
	To         string            `yaml:"to,omitempty"`
	Field      string            `yaml:"field,omitempty"`
	MaxLength  *int              `yaml:"max_length,omitempty"`
	Config     declarationConfig `yaml:"config"`
}

// MarshalYAML renders the declaration as the single-key mapping form dbt
// expects, e.g. "not_null: {config: {severity: error}}".
func (d Declaration) MarshalYAML() (any, error) {
	return map[string]declarationBody{
		d.Test: {
			Expression: d.Expression,
			Values:     d.Values,
			To:         d.To,
			Field:      d.Field,
			MaxLength:  d.MaxLength,
			Config:     declarationConfig{Severity: d.Severity},
		},
	}, nil
}

// Derive maps a column's constraints to test declarations in a fixed
// order: type check, not-null, unique, range, pattern, max length,
// accepted values, relationship. A primary key composes not-null plus
// unique rather than producing its own declaration. Unknown constraint
// names are ignored. The derivation is pure; identical input yields an
// identical sequence.
func Derive(col catalog.Column) []Declaration {
	var decls []Declaration

	if d, ok := typeCheck(col); ok {
		decls = append(decls, d)
	}

	if !col.Nullable || col.PrimaryKey || col.HasConstraint("not_null") || col.HasConstraint("primary_key") {
		decls = append(decls, Declaration{Test: TestNotNull, Severity: SeverityError})
	}

	if col.Unique || col.PrimaryKey || col.HasConstraint("unique") || col.HasConstraint("primary_key") {
		decls = append(decls, Declaration{Test: TestUnique, Severity: SeverityError})
	}

	if col.MinValue != nil || col.MaxValue != nil {
		var parts []string
		if col.MinValue != nil {
			parts = append(parts, fmt.Sprintf("%s >= %s", col.Name, formatNumber(*col.MinValue)))
		}
		if col.MaxValue != nil {
			parts = append(parts, fmt.Sprintf("%s <= %s", col.Name, formatNumber(*col.MaxValue)))
		}
		decls = append(decls, Declaration{
			Test:       TestExpression,
			Severity:   SeverityWarn,
			Expression: strings.Join(parts, " and "),
		})
	}

	if col.Pattern != "" {
		decls = append(decls, Declaration{
			Test:       TestExpression,
			Severity:   SeverityWarn,
			Expression: fmt.Sprintf("%s ~ '%s'", col.Name, col.Pattern),
		})
	}

	if col.MaxLength != nil {
		decls = append(decls, Declaration{
			Test:      TestStringLength,
			Severity:  SeverityWarn,
			MaxLength: col.MaxLength,
		})
	}

	if len(col.AcceptedValues) > 0 {
		decls = append(decls, Declaration{
			Test:     TestAcceptedValues,
			Severity: SeverityWarn,
			Values:   col.AcceptedValues,
		})
	}

	if col.Ref != nil {
		decls = append(decls, Declaration{
			Test:     TestRelationships,
			Severity: SeverityError,
			To:       fmt.Sprintf("ref('%s')", col.Ref.Table),
			Field:    col.Ref.Column,
		})
	}

	return decls
}

// typeCheck returns a format assertion for recognized data type families.
// Unrecognized types produce no declaration.
func typeCheck(col catalog.Column) (Declaration, bool) {
	expr := ""
	switch dt := strings.ToLower(col.DataType); {
	case dt == "":
	case strings.Contains(dt, "int"):
		expr = fmt.Sprintf("%s ~ '^-?[0-9]+$'", col.Name)
	case strings.Contains(dt, "decimal"), strings.Contains(dt, "numeric"):
		expr = fmt.Sprintf(`%s ~ '^-?[0-9]+\.?[0-9]*$'`, col.Name)
	case strings.Contains(dt, "timestamp"):
		expr = fmt.Sprintf("%s ~ '^[0-9]{4}-[0-9]{2}-[0-9]{2} [0-9]{2}:[0-9]{2}:[0-9]{2}'", col.Name)
	case strings.Contains(dt, "date"):
		expr = fmt.Sprintf("%s ~ '^[0-9]{4}-[0-9]{2}-[0-9]{2}$'", col.Name)
	case strings.Contains(dt, "boolean"):
		expr = fmt.Sprintf("%s in (true, false)", col.Name)
	}
	if expr == "" {
		return Declaration{}, false
	}
	return Declaration{Test: TestExpression, Severity: SeverityError, Expression: expr}, true
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
