// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package generate turns a loaded catalog into dbt project artifacts.
//
// Staging models are derived mechanically from their transformations.
// Mapping models go through the text generation service and are always
// written in the commented-out safety form. Failures of a single model
// never abort the run; safety invariant violations and context
// cancellation do.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/dacolabs/dbtgen/internal/catalog"
	"github.com/dacolabs/dbtgen/internal/llm"
	"github.com/dacolabs/dbtgen/internal/safety"
	"github.com/dacolabs/dbtgen/internal/sqlfmt"
	"golang.org/x/sync/errgroup"
)

// DefaultMartType places marts schema docs when a model names no mart type.
const DefaultMartType = "dimensions"

// Generator holds the catalog and the collaborators of one generation run.
type Generator struct {
	Catalog     *catalog.Catalog
	Client      *llm.Client
	Store       *llm.Store
	Formatter   sqlfmt.Formatter
	Concurrency int
}

// Artifact is one file the pipeline wants on disk. Path is relative to
// the project root and slash-separated.
type Artifact struct {
	Path string
	Data []byte
}

// ModelResult is the outcome of building one model artifact. Err marks a
// failed model; its Log still holds the audit trail of every attempt.
// Warnings carry non-fatal stage failures, like a formatter run that
// returned the SQL unchanged.
type ModelResult struct {
	Name     string
	Path     string
	Content  string
	Log      []llm.LogEntry
	Tokens   int
	Warnings []string
	Err      error
}

// Models builds every staging and mapping model of the catalog. Staging
// models are pure derivations and cannot fail. Mapping models run
// concurrently within the generator's limit; per-model failures are
// recorded in their result. The whole run fails only on a safety
// invariant violation or when ctx ends.
func (g *Generator) Models(ctx context.Context) ([]ModelResult, error) {
	results := make([]ModelResult, len(g.Catalog.Staging)+len(g.Catalog.Models))
	for i, m := range g.Catalog.Staging {
		results[i] = g.stagingModel(m)
	}

	modelTmpl, err := g.Store.Template(llm.KindModelGeneration)
	if err != nil {
		return nil, err
	}
	checklistTmpl, err := g.Store.Template(llm.KindTesterChecklist)
	if err != nil {
		return nil, err
	}

	offset := len(g.Catalog.Staging)
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(g.limit())
	for i, m := range g.Catalog.Models {
		grp.Go(func() error {
			res := g.buildModel(ctx, m, modelTmpl, checklistTmpl)
			if fatal(res.Err) {
				return res.Err
			}
			results[offset+i] = res
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// UnitTests asks the generation service for one singular test per mapping
// model. modelSQL maps model names to their generated SQL; models without
// an entry are skipped, matching a run where the model itself failed.
func (g *Generator) UnitTests(ctx context.Context, modelSQL map[string]string) ([]ModelResult, error) {
	tmpl, err := g.Store.Template(llm.KindUnitTest)
	if err != nil {
		return nil, err
	}

	targets := make([]catalog.Model, 0, len(g.Catalog.Models))
	for _, m := range g.Catalog.Models {
		if _, ok := modelSQL[m.Name]; ok {
			targets = append(targets, m)
		}
	}

	results := make([]ModelResult, len(targets))
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(g.limit())
	for i, m := range targets {
		grp.Go(func() error {
			res := g.buildUnitTest(ctx, m, tmpl, modelSQL[m.Name])
			if fatal(res.Err) {
				return res.Err
			}
			results[i] = res
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Review sends a model's SQL for review and returns the findings verbatim.
func (g *Generator) Review(ctx context.Context, name, sql string) (*llm.Result, error) {
	tmpl, err := g.Store.Template(llm.KindCodeReview)
	if err != nil {
		return nil, err
	}
	prompt, err := llm.Compose(tmpl, map[string]string{
		"model_name": name,
		"sql":        sql,
	})
	if err != nil {
		return nil, err
	}
	return g.Client.Generate(ctx, name, llm.KindCodeReview, prompt)
}

func (g *Generator) limit() int {
	if g.Concurrency > 0 {
		return g.Concurrency
	}
	return 1
}

// fatal reports errors that must abort the whole run instead of failing
// one model.
func fatal(err error) bool {
	var inv *safety.InvariantError
	if errors.As(err, &inv) {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (g *Generator) buildModel(ctx context.Context, m catalog.Model, modelTmpl, checklistTmpl string) ModelResult {
	res := ModelResult{Name: m.Name, Path: ModelArtifactPath(m)}

	prompt, err := llm.Compose(modelTmpl, map[string]string{
		"model_name": m.Name,
		"mapping":    mappingJSON(m),
	})
	if err != nil {
		res.Err = err
		return res
	}
	generated, err := g.Client.Generate(ctx, m.Name, llm.KindModelGeneration, prompt)
	res.Log = append(res.Log, generated.Log...)
	res.Tokens += generated.Tokens
	if err != nil {
		res.Err = err
		return res
	}
	sql := generated.Text

	checklistPrompt, err := llm.Compose(checklistTmpl, map[string]string{"model_name": m.Name})
	if err != nil {
		res.Err = err
		return res
	}
	checklist, err := g.Client.Generate(ctx, m.Name, llm.KindTesterChecklist, checklistPrompt)
	res.Log = append(res.Log, checklist.Log...)
	res.Tokens += checklist.Tokens
	if err != nil {
		res.Err = err
		return res
	}

	// Best effort. Format returns usable SQL alongside any error.
	if g.Formatter != nil {
		formatted, err := g.Formatter.Format(ctx, sql)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("format: %v", err))
		}
		sql = formatted
	}

	content, err := safety.Apply(sql, checklist.Text)
	if err != nil {
		res.Err = err
		return res
	}
	res.Content = content
	return res
}

func (g *Generator) buildUnitTest(ctx context.Context, m catalog.Model, tmpl, sql string) ModelResult {
	res := ModelResult{Name: m.Name, Path: TestArtifactPath(m.Name)}

	prompt, err := llm.Compose(tmpl, map[string]string{
		"model_name":        m.Name,
		"sql":               sql,
		"expected_behavior": m.ExpectedBehavior,
	})
	if err != nil {
		res.Err = err
		return res
	}
	generated, err := g.Client.Generate(ctx, m.Name, llm.KindUnitTest, prompt)
	res.Log = append(res.Log, generated.Log...)
	res.Tokens += generated.Tokens
	if err != nil {
		res.Err = err
		return res
	}

	content, err := safety.Apply(generated.Text, "")
	if err != nil {
		res.Err = err
		return res
	}
	res.Content = content
	return res
}

func (g *Generator) stagingModel(m catalog.StagingModel) ModelResult {
	return ModelResult{
		Name:    m.Name,
		Path:    path.Join("models", "staging", m.Name+".sql"),
		Content: g.stagingSQL(m),
	}
}

// stagingSQL renders a staging model in the conventional dbt shape: a
// source CTE, a renamed CTE carrying the declared transformations, and a
// final select. Upstream names resolve to source() for cataloged source
// tables and to ref() for models declared earlier in the mapping.
func (g *Generator) stagingSQL(m catalog.StagingModel) string {
	var b strings.Builder

	b.WriteString("with source as (\n\n")
	if src, ok := g.Catalog.Source(m.SourceTable); ok {
		fmt.Fprintf(&b, "    select * from {{ source('%s', '%s') }}\n\n", src.Schema, src.Name)
	} else {
		fmt.Fprintf(&b, "    select * from {{ ref('%s') }}\n\n", m.SourceTable)
	}
	b.WriteString("),\n\nrenamed as (\n\n    select\n")

	if len(m.Columns) == 0 {
		b.WriteString("        *\n")
	}
	for i, col := range m.Columns {
		expr := col.Expression
		if expr == "" {
			expr = col.Column
		}
		line := "        " + expr
		if expr != col.Column {
			line += " as " + col.Column
		}
		if i < len(m.Columns)-1 {
			line += ","
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n    from source\n\n)\n\nselect * from renamed\n")
	return b.String()
}

// ModelArtifactPath returns where a mapping model's SQL lives, relative
// to the project root. Marts models sit directly under models/marts.
func ModelArtifactPath(m catalog.Model) string {
	if m.Type == "marts" {
		return path.Join("models", "marts", m.Name+".sql")
	}
	return path.Join("models", m.Type, m.Name+".sql")
}

// TestArtifactPath returns where a model's singular test lives.
func TestArtifactPath(name string) string {
	return path.Join("tests", "test_"+name+".sql")
}

type mappingColumnView struct {
	Name        string `json:"name"`
	DataType    string `json:"data_type,omitempty"`
	Description string `json:"description,omitempty"`
}

type mappingView struct {
	Name             string              `json:"name"`
	Type             string              `json:"type,omitempty"`
	MartType         string              `json:"mart_type,omitempty"`
	Description      string              `json:"description,omitempty"`
	SourceTables     []string            `json:"source_tables,omitempty"`
	BusinessLogic    string              `json:"business_logic,omitempty"`
	ExpectedBehavior string              `json:"expected_behavior,omitempty"`
	Columns          []mappingColumnView `json:"columns,omitempty"`
}

// mappingJSON renders the model's mapping for prompt interpolation.
func mappingJSON(m catalog.Model) string {
	view := mappingView{
		Name:             m.Name,
		Type:             m.Type,
		MartType:         m.MartType,
		Description:      m.Description,
		SourceTables:     m.SourceTables,
		BusinessLogic:    m.BusinessLogic,
		ExpectedBehavior: m.ExpectedBehavior,
	}
	for _, col := range m.Columns {
		view.Columns = append(view.Columns, mappingColumnView{
			Name:        col.Name,
			DataType:    col.DataType,
			Description: col.Description,
		})
	}
	data, err := json.Marshal(view)
	if err != nil {
		// The view is plain strings and slices; Marshal cannot fail on it.
		return "{}"
	}
	return string(data)
}
