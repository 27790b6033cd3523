// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package contract renders catalog entities as JSON Schema documents so
// downstream consumers can validate rows against the generated models.
package contract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dacolabs/dbtgen/internal/catalog"
	"github.com/google/jsonschema-go/jsonschema"
)

const draft = "https://json-schema.org/draft/2020-12/schema"

// ForModel returns the schema of the rows a mapping model produces.
func ForModel(m catalog.Model) *jsonschema.Schema {
	return build(m.Name, m.Description, m.Columns)
}

// ForTable returns the schema of a cataloged source table.
func ForTable(t catalog.Table) *jsonschema.Schema {
	return build(t.Name, t.Description, t.Columns)
}

func build(name, description string, columns []catalog.Column) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Schema:      draft,
		Title:       name,
		Description: description,
		Type:        "object",
		Properties:  make(map[string]*jsonschema.Schema, len(columns)),
	}

	for _, col := range columns {
		schema.Properties[col.Name] = property(col)
		if !col.Nullable || col.PrimaryKey {
			schema.Required = append(schema.Required, col.Name)
		}
	}

	return schema
}

// property maps one column to a property schema. The data type mapping is
// the inverse of the warehouse rendering: integers stay integers, decimal
// kinds become numbers, and temporal types are strings with a format.
func property(col catalog.Column) *jsonschema.Schema {
	prop := &jsonschema.Schema{Description: col.Description}

	dataType := strings.ToLower(col.DataType)
	switch {
	case strings.Contains(dataType, "int"):
		prop.Type = "integer"
	case strings.Contains(dataType, "decimal"),
		strings.Contains(dataType, "numeric"),
		strings.Contains(dataType, "float"),
		strings.Contains(dataType, "double"):
		prop.Type = "number"
	case strings.Contains(dataType, "bool"):
		prop.Type = "boolean"
	case strings.Contains(dataType, "timestamp"):
		prop.Type = "string"
		prop.Format = "date-time"
	case strings.Contains(dataType, "date"):
		prop.Type = "string"
		prop.Format = "date"
	default:
		prop.Type = "string"
	}

	if prop.Type == "string" && col.Pattern != "" {
		prop.Pattern = col.Pattern
	}
	if prop.Type == "integer" || prop.Type == "number" {
		prop.Minimum = col.MinValue
		prop.Maximum = col.MaxValue
	}
	if prop.Type == "string" && col.MaxLength != nil {
		prop.MaxLength = col.MaxLength
	}
	if len(col.AcceptedValues) > 0 {
		prop.Enum = make([]any, len(col.AcceptedValues))
		for i, v := range col.AcceptedValues {
			prop.Enum[i] = v
		}
	}

	return prop
}

// Encode renders the schema as indented JSON with a trailing newline.
// encoding/json orders object keys, so output is byte-stable.
func Encode(schema *jsonschema.Schema) ([]byte, error) {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode contract schema: %w", err)
	}
	return append(data, '\n'), nil
}
