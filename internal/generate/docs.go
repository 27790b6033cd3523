// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package generate

import (
	"bytes"
	"fmt"
	"path"

	"github.com/dacolabs/dbtgen/internal/catalog"
	"github.com/dacolabs/dbtgen/internal/checks"
	"github.com/dacolabs/dbtgen/internal/contract"
	"github.com/dacolabs/dbtgen/internal/sources"
)

// SourcesDoc renders the external-table declarations of the catalog.
func (g *Generator) SourcesDoc() (Artifact, error) {
	doc := sources.Build(g.Catalog.Sources)

	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		return Artifact{}, fmt.Errorf("encode sources document: %w", err)
	}
	return Artifact{Path: path.Join("models", "sources.yml"), Data: buf.Bytes()}, nil
}

// SchemaDocs renders one schema.yml per model directory group. Marts
// models group by mart type; every other type gets one file. Groups keep
// the order models first appear in the mapping.
func (g *Generator) SchemaDocs() ([]Artifact, error) {
	var order []string
	groups := make(map[string][]checks.ModelSchema)

	for _, m := range g.Catalog.Models {
		key := schemaDocPath(m)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], checks.ForModel(m))
	}

	artifacts := make([]Artifact, 0, len(order))
	for _, key := range order {
		doc := checks.NewDoc(groups[key]...)

		var buf bytes.Buffer
		if err := doc.Encode(&buf); err != nil {
			return nil, fmt.Errorf("encode schema document %s: %w", key, err)
		}
		artifacts = append(artifacts, Artifact{Path: key, Data: buf.Bytes()})
	}
	return artifacts, nil
}

func schemaDocPath(m catalog.Model) string {
	if m.Type == "marts" {
		martType := m.MartType
		if martType == "" {
			martType = DefaultMartType
		}
		return path.Join("models", "marts", martType, "schema.yml")
	}
	return path.Join("models", m.Type, "schema.yml")
}

// Contracts renders one JSON Schema per mapping model under docs/contracts.
func (g *Generator) Contracts() ([]Artifact, error) {
	artifacts := make([]Artifact, 0, len(g.Catalog.Models))
	for _, m := range g.Catalog.Models {
		data, err := contract.Encode(contract.ForModel(m))
		if err != nil {
			return nil, fmt.Errorf("contract for %s: %w", m.Name, err)
		}
		artifacts = append(artifacts, Artifact{
			Path: path.Join("docs", "contracts", m.Name+".schema.json"),
			Data: data,
		})
	}
	return artifacts, nil
}
