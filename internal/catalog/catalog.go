// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package catalog parses the three project input catalogs (schema
// definitions, source tables, model mappings) into a typed, validated model.
package catalog

// ForeignKey is a reference from a column to a target table column.
type ForeignKey struct {
	Table  string
	Column string
}

// Column describes one column of a table or model output, together with
// its declared constraints.
type Column struct {
	Name        string
	DataType    string
	Description string

	Nullable   bool
	PrimaryKey bool
	Unique     bool
	Default    string

	// Constraints holds additional named constraints (e.g. "not_null")
	// declared alongside the flag fields.
	Constraints []string

	MinValue       *float64
	MaxValue       *float64
	MaxLength      *int
	Pattern        string
	AcceptedValues []string
	Ref            *ForeignKey
	Index          string
}

// HasConstraint reports whether a named constraint was declared on the column.
func (c *Column) HasConstraint(name string) bool {
	for _, n := range c.Constraints {
		if n == name {
			return true
		}
	}
	return false
}

// Table is one table of the schema-definition catalog. Column order follows
// the catalog; column names are unique within a table.
type Table struct {
	Schema      string
	Name        string
	Description string
	Columns     []Column
}

// Key returns the table identity as "schema.table".
func (t *Table) Key() string {
	return t.Schema + "." + t.Name
}

// SourceTable is one entry of the source-table catalog describing an
// external table.
type SourceTable struct {
	Name             string
	Schema           string
	Database         string
	FileFormat       string
	Location         string
	PartitionBy      string
	ClusterBy        string
	RefreshFrequency string
	Description      string
}

// Transformation maps a target column to its transformation expression.
// The expression is carried verbatim and never parsed.
type Transformation struct {
	Column     string
	Expression string
}

// StagingModel is a model derived mechanically from a single source table.
type StagingModel struct {
	Name        string
	SourceTable string
	Columns     []Transformation
}

// Model is a model whose SQL body is produced by the text-generation
// service from its business-logic narrative.
type Model struct {
	Name             string
	Type             string
	MartType         string
	Description      string
	SourceTables     []string
	BusinessLogic    string
	ExpectedBehavior string
	Columns          []Column
}

// Catalog is the validated in-memory form of the three input catalogs.
// It is built once per run and read-only afterwards.
type Catalog struct {
	Tables  []Table
	Sources []SourceTable
	Staging []StagingModel
	Models  []Model

	tableIndex  map[string]int
	sourceIndex map[string]int
}

// Table looks up a table by schema and name.
func (c *Catalog) Table(schema, name string) (*Table, bool) {
	idx, ok := c.tableIndex[schema+"."+name]
	if !ok {
		return nil, false
	}
	return &c.Tables[idx], true
}

// Source looks up a source table by name.
func (c *Catalog) Source(name string) (*SourceTable, bool) {
	idx, ok := c.sourceIndex[name]
	if !ok {
		return nil, false
	}
	return &c.Sources[idx], true
}
