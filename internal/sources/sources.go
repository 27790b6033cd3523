// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package sources derives the external-table source declaration document
// from the source-table catalog.
package sources

import (
	"fmt"
	"io"

	"github.com/dacolabs/dbtgen/internal/catalog"
	"gopkg.in/yaml.v3"
)

// Document is a version 2 dbt sources file.
type Document struct {
	Version int     `yaml:"version"`
	Sources []Group `yaml:"sources"`
}

// Group declares the external tables of one source schema.
type Group struct {
	Name        string  `yaml:"name"`
	Database    string  `yaml:"database,omitempty"`
	Description string  `yaml:"description"`
	Tables      []Table `yaml:"tables"`
}

// Table is one external table declaration.
type Table struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	External    External `yaml:"external"`
}

// External carries the storage layout of an external table.
type External struct {
	Location         string      `yaml:"location"`
	FileFormat       string      `yaml:"file_format"`
	Partitions       []Partition `yaml:"partitions,omitempty"`
	ClusterBy        []string    `yaml:"cluster_by,omitempty"`
	RefreshFrequency string      `yaml:"refresh_frequency,omitempty"`
}

// Partition names one partition column of an external table.
type Partition struct {
	Name     string `yaml:"name"`
	DataType string `yaml:"data_type"`
}

// Build groups source tables by database and schema, preserving catalog
// order within each group and across groups by first appearance. The
// transformation is pure, so identical input yields a byte-identical
// encoded document.
func Build(tables []catalog.SourceTable) *Document {
	doc := &Document{Version: 2}
	index := make(map[string]int)

	for _, src := range tables {
		key := src.Database + "." + src.Schema
		idx, ok := index[key]
		if !ok {
			doc.Sources = append(doc.Sources, Group{
				Name:        src.Schema,
				Database:    src.Database,
				Description: fmt.Sprintf("External tables in %s schema", src.Schema),
			})
			idx = len(doc.Sources) - 1
			index[key] = idx
		}
		doc.Sources[idx].Tables = append(doc.Sources[idx].Tables, buildTable(src))
	}

	return doc
}

func buildTable(src catalog.SourceTable) Table {
	table := Table{
		Name:        src.Name,
		Description: src.Description,
		External: External{
			Location:         src.Location,
			FileFormat:       src.FileFormat,
			RefreshFrequency: src.RefreshFrequency,
		},
	}
	if src.PartitionBy != "" {
		table.External.Partitions = []Partition{{Name: src.PartitionBy, DataType: "date"}}
	}
	if src.ClusterBy != "" {
		table.External.ClusterBy = []string{src.ClusterBy}
	}
	return table
}

// Encode writes the document as YAML with two-space indentation.
func (d *Document) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}
