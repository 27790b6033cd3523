// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package checks

import (
	"fmt"
	"io"

	"github.com/dacolabs/dbtgen/internal/catalog"
	"gopkg.in/yaml.v3"
)

// Doc is one schema.yml document listing the models of a directory with
// their column contracts and derived tests.
type Doc struct {
	Version int           `yaml:"version"`
	Models  []ModelSchema `yaml:"models"`
}

// ModelSchema is the schema entry for a single model. Contracts are
// enforced so the declared column set is binding.
type ModelSchema struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Config      ModelConfig    `yaml:"config"`
	Columns     []ColumnSchema `yaml:"columns"`
}

// ModelConfig carries the model-level dbt config block.
type ModelConfig struct {
	Contract ContractConfig `yaml:"contract"`
}

// ContractConfig toggles dbt contract enforcement.
type ContractConfig struct {
	Enforced bool `yaml:"enforced"`
}

// ColumnSchema is one column entry with its derived test declarations.
type ColumnSchema struct {
	Name        string        `yaml:"name"`
	DataType    string        `yaml:"data_type,omitempty"`
	Description string        `yaml:"description,omitempty"`
	Tests       []Declaration `yaml:"tests,omitempty"`
}

// ForModel builds the schema entry for one model, deriving tests for every
// output column.
func ForModel(m catalog.Model) ModelSchema {
	ms := ModelSchema{
		Name:        m.Name,
		Description: m.Description,
		Config:      ModelConfig{Contract: ContractConfig{Enforced: true}},
	}
	if ms.Description == "" {
		ms.Description = fmt.Sprintf("Model for %s", m.Name)
	}
	for _, col := range m.Columns {
		cs := ColumnSchema{
			Name:        col.Name,
			DataType:    col.DataType,
			Description: col.Description,
			Tests:       Derive(col),
		}
		if cs.Description == "" {
			cs.Description = fmt.Sprintf("Column %s", col.Name)
		}
		ms.Columns = append(ms.Columns, cs)
	}
	return ms
}

// NewDoc wraps model schema entries in a version 2 document.
func NewDoc(models ...ModelSchema) *Doc {
	return &Doc{Version: 2, Models: models}
}

// Encode writes the document as YAML with two-space indentation.
func (d *Doc) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}
