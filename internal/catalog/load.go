// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Required headers for the two tabular catalogs. Unknown headers are
// ignored for forward compatibility.
var (
	schemaRequired = []string{"schema_name", "table_name", "column_name", "data_type"}
	sourceRequired = []string{"table_name", "file_format", "location"}
)

// Defaults applied when a source row leaves placement columns empty.
const (
	DefaultSourceSchema   = "public"
	DefaultSourceDatabase = "default"

	// DefaultModelType is assumed for entries of the mapping's models
	// section that carry no explicit type.
	DefaultModelType = "marts"
)

// Load parses the three input catalogs into a validated Catalog.
//
// All violations found in a pass are collected and returned together as a
// *ValidationError; the catalog is never partially built. A mapping
// document that is not valid YAML is a parse error, not a violation.
func Load(schemaRows, sourceRows []Row, mappingDoc []byte) (*Catalog, error) {
	l := &loader{}
	cat := &Catalog{
		tableIndex:  make(map[string]int),
		sourceIndex: make(map[string]int),
	}

	l.loadTables(cat, schemaRows)
	l.loadSources(cat, sourceRows)
	if err := l.loadMapping(cat, mappingDoc); err != nil {
		return nil, fmt.Errorf("parse mapping document: %w", err)
	}
	l.resolveReferences(cat)

	if len(l.violations) > 0 {
		return nil, &ValidationError{Violations: l.violations}
	}
	return cat, nil
}

type loader struct {
	violations []Violation
}

func (l *loader) violate(entity, rule, detail string) {
	l.violations = append(l.violations, Violation{Entity: entity, Rule: rule, Detail: detail})
}

func (l *loader) loadTables(cat *Catalog, rows []Row) {
	for i, row := range rows {
		// Header occupies line 1 of the file.
		entity := fmt.Sprintf("schema definitions row %d", i+2)

		missing := false
		for _, field := range schemaRequired {
			if row[field] == "" {
				l.violate(entity, RuleMissingField, field)
				missing = true
			}
		}
		if missing {
			continue
		}

		key := row["schema_name"] + "." + row["table_name"]
		idx, ok := cat.tableIndex[key]
		if !ok {
			cat.Tables = append(cat.Tables, Table{
				Schema:      row["schema_name"],
				Name:        row["table_name"],
				Description: row["table_description"],
			})
			idx = len(cat.Tables) - 1
			cat.tableIndex[key] = idx
		}
		table := &cat.Tables[idx]
		if table.Description == "" {
			table.Description = row["table_description"]
		}

		col := l.parseColumn(key+"."+row["column_name"], row)
		for j := range table.Columns {
			if table.Columns[j].Name == col.Name {
				l.violate(key, RuleDuplicateColumn, col.Name)
				break
			}
		}
		table.Columns = append(table.Columns, col)
	}
}

func (l *loader) parseColumn(entity string, row Row) Column {
	col := Column{
		Name:           row["column_name"],
		DataType:       row["data_type"],
		Description:    row["description"],
		Default:        row["default_value"],
		Pattern:        row["pattern"],
		Index:          row["index_hint"],
		Constraints:    splitList(row["constraints"]),
		AcceptedValues: splitList(row["accepted_values"]),
	}
	col.Nullable = l.parseBool(entity, "is_nullable", row, true)
	col.PrimaryKey = l.parseBool(entity, "is_primary_key", row, false)
	col.Unique = l.parseBool(entity, "is_unique", row, false)
	col.MinValue = l.parseFloat(entity, "min_value", row)
	col.MaxValue = l.parseFloat(entity, "max_value", row)
	col.MaxLength = l.parseInt(entity, "max_length", row)

	if ref := row["references"]; ref != "" {
		table, column, ok := strings.Cut(ref, ".")
		if !ok || table == "" || column == "" {
			l.violate(entity, RuleInvalidValue, fmt.Sprintf("references %q: want table.column", ref))
		} else {
			col.Ref = &ForeignKey{Table: table, Column: column}
		}
	}

	l.checkPrimaryKey(entity, &col)
	return col
}

// checkPrimaryKey flags primary key columns that are nullable or not
// unique. The declaration is kept as-is; the loader reports, it does not
// repair.
func (l *loader) checkPrimaryKey(entity string, col *Column) {
	if col.PrimaryKey && (col.Nullable || !col.Unique) {
		l.violate(entity, RulePrimaryKey, "")
	}
}

func (l *loader) loadSources(cat *Catalog, rows []Row) {
	for i, row := range rows {
		entity := fmt.Sprintf("source tables row %d", i+2)
		if name := row["table_name"]; name != "" {
			entity = "source " + name
		}

		missing := false
		for _, field := range sourceRequired {
			if row[field] == "" {
				l.violate(entity, RuleMissingField, field)
				missing = true
			}
		}
		if missing {
			continue
		}

		src := SourceTable{
			Name:             row["table_name"],
			Schema:           defaulted(row["source_schema"], DefaultSourceSchema),
			Database:         defaulted(row["source_database"], DefaultSourceDatabase),
			FileFormat:       row["file_format"],
			Location:         row["location"],
			PartitionBy:      row["partition_by"],
			ClusterBy:        row["cluster_by"],
			RefreshFrequency: row["refresh_frequency"],
			Description:      row["description"],
		}
		if _, ok := cat.sourceIndex[src.Name]; ok {
			l.violate(entity, RuleDuplicateSource, "")
			continue
		}
		cat.sourceIndex[src.Name] = len(cat.Sources)
		cat.Sources = append(cat.Sources, src)
	}
}

type rawMapping struct {
	StagingModels []rawStagingModel `yaml:"staging_models"`
	Models        []rawModel        `yaml:"models"`
}

type rawStagingModel struct {
	Name        string              `yaml:"name"`
	SourceTable string              `yaml:"source_table"`
	Columns     []rawTransformation `yaml:"columns"`
}

type rawTransformation struct {
	Name           string `yaml:"name"`
	Transformation string `yaml:"transformation"`
}

type rawModel struct {
	Name             string           `yaml:"name"`
	Type             string           `yaml:"type"`
	MartType         string           `yaml:"mart_type"`
	Description      string           `yaml:"description"`
	SourceTables     []string         `yaml:"source_tables"`
	BusinessLogic    string           `yaml:"business_logic"`
	ExpectedBehavior string           `yaml:"expected_behavior"`
	Columns          []rawModelColumn `yaml:"columns"`
}

type rawModelColumn struct {
	Name           string        `yaml:"name"`
	DataType       string        `yaml:"data_type"`
	Description    string        `yaml:"description"`
	NotNull        bool          `yaml:"not_null"`
	Unique         bool          `yaml:"unique"`
	PrimaryKey     bool          `yaml:"primary_key"`
	Default        string        `yaml:"default"`
	Constraints    []string      `yaml:"constraints"`
	MinValue       *float64      `yaml:"min_value"`
	MaxValue       *float64      `yaml:"max_value"`
	MaxLength      *int          `yaml:"max_length"`
	Pattern        string        `yaml:"pattern"`
	AcceptedValues []string      `yaml:"accepted_values"`
	References     *rawReference `yaml:"references"`
}

type rawReference struct {
	To    string `yaml:"to"`
	Field string `yaml:"field"`
}

func (l *loader) loadMapping(cat *Catalog, doc []byte) error {
	if len(doc) == 0 {
		return nil
	}

	var raw rawMapping
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return err
	}

	names := make(map[string]bool)
	for i, rm := range raw.StagingModels {
		entity := fmt.Sprintf("staging model %q", rm.Name)
		if rm.Name == "" {
			entity = fmt.Sprintf("staging_models[%d]", i)
			l.violate(entity, RuleMissingField, "name")
		}
		if rm.SourceTable == "" {
			l.violate(entity, RuleMissingField, "source_table")
		}
		if rm.Name != "" && names[rm.Name] {
			l.violate(entity, RuleDuplicateModel, "")
		}
		names[rm.Name] = true

		m := StagingModel{Name: rm.Name, SourceTable: rm.SourceTable}
		for j, rc := range rm.Columns {
			if rc.Name == "" {
				l.violate(entity, RuleMissingField, fmt.Sprintf("columns[%d].name", j))
				continue
			}
			m.Columns = append(m.Columns, Transformation{
				Column:     rc.Name,
				Expression: rc.Transformation,
			})
		}
		cat.Staging = append(cat.Staging, m)
	}

	for i, rm := range raw.Models {
		entity := fmt.Sprintf("model %q", rm.Name)
		if rm.Name == "" {
			entity = fmt.Sprintf("models[%d]", i)
			l.violate(entity, RuleMissingField, "name")
		}
		if rm.Name != "" && names[rm.Name] {
			l.violate(entity, RuleDuplicateModel, "")
		}
		names[rm.Name] = true

		m := Model{
			Name:             rm.Name,
			Type:             defaulted(rm.Type, DefaultModelType),
			MartType:         rm.MartType,
			Description:      rm.Description,
			SourceTables:     rm.SourceTables,
			BusinessLogic:    rm.BusinessLogic,
			ExpectedBehavior: rm.ExpectedBehavior,
		}
		for _, rc := range rm.Columns {
			m.Columns = append(m.Columns, l.mappingColumn(entity, rc))
		}
		cat.Models = append(cat.Models, m)
	}

	return nil
}

func (l *loader) mappingColumn(modelEntity string, rc rawModelColumn) Column {
	entity := modelEntity + " column " + rc.Name
	col := Column{
		Name:           rc.Name,
		DataType:       rc.DataType,
		Description:    rc.Description,
		Nullable:       !rc.NotNull,
		PrimaryKey:     rc.PrimaryKey,
		Unique:         rc.Unique,
		Default:        rc.Default,
		Constraints:    rc.Constraints,
		MinValue:       rc.MinValue,
		MaxValue:       rc.MaxValue,
		MaxLength:      rc.MaxLength,
		Pattern:        rc.Pattern,
		AcceptedValues: rc.AcceptedValues,
	}
	if rc.Name == "" {
		l.violate(modelEntity, RuleMissingField, "column name")
	}
	if rc.References != nil {
		if rc.References.To == "" || rc.References.Field == "" {
			l.violate(entity, RuleInvalidValue, "references: want to and field")
		} else {
			col.Ref = &ForeignKey{Table: rc.References.To, Column: rc.References.Field}
		}
	}
	l.checkPrimaryKey(entity, &col)
	return col
}

// resolveReferences checks that every source table named by a model exists
// as either a catalog source or a model declared earlier in the mapping.
func (l *loader) resolveReferences(cat *Catalog) {
	known := make(map[string]bool, len(cat.Sources))
	for i := range cat.Sources {
		known[cat.Sources[i].Name] = true
	}
	for _, m := range cat.Staging {
		if m.SourceTable != "" && !known[m.SourceTable] {
			l.violate("staging model "+m.Name, RuleDanglingReference, m.SourceTable)
		}
		known[m.Name] = true
	}
	for _, m := range cat.Models {
		for _, ref := range m.SourceTables {
			if !known[ref] {
				l.violate("model "+m.Name, RuleDanglingReference, ref)
			}
		}
		known[m.Name] = true
	}
}

func (l *loader) parseBool(entity, field string, row Row, def bool) bool {
	raw := row[field]
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "true", "yes", "1":
		return true
	case "false", "no", "0":
		return false
	}
	l.violate(entity, RuleInvalidValue, fmt.Sprintf("%s %q: want true or false", field, raw))
	return def
}

func (l *loader) parseFloat(entity, field string, row Row) *float64 {
	raw := row[field]
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		l.violate(entity, RuleInvalidValue, fmt.Sprintf("%s %q: want a number", field, raw))
		return nil
	}
	return &f
}

func (l *loader) parseInt(entity, field string, row Row) *int {
	raw := row[field]
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		l.violate(entity, RuleInvalidValue, fmt.Sprintf("%s %q: want an integer", field, raw))
		return nil
	}
	return &n
}

// splitList splits a pipe-separated cell into trimmed values.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var values []string
	for _, v := range strings.Split(raw, "|") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func defaulted(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
