// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dacolabs/dbtgen/internal/config"
	"github.com/dacolabs/dbtgen/internal/generate"
	"github.com/dacolabs/dbtgen/internal/llm"
	"github.com/dacolabs/dbtgen/internal/prompts"
	"github.com/dacolabs/dbtgen/internal/scaffold"
	"github.com/dacolabs/dbtgen/internal/session"
	"github.com/dacolabs/dbtgen/internal/sqlfmt"
)

// newGenerator assembles the full generation pipeline for the session.
// It fails when the service credential is missing, so commands that never
// call the service should use docsGenerator instead.
func newGenerator(sess *session.Context) (*generate.Generator, error) {
	if sess.APIKey == "" {
		return nil, fmt.Errorf("%s is not set", config.EnvAPIKey)
	}
	formatter, err := sqlfmt.New(sess.Config.Generation.Formatter, sess.Config.Project.Database)
	if err != nil {
		return nil, err
	}

	llmCfg := sess.Config.LLM
	transport := llm.NewOpenAI(llmCfg.URL, sess.APIKey, &http.Client{Timeout: llmCfg.Timeout.Duration()})
	client := llm.NewClient(transport, llm.Settings{
		Model:       llmCfg.Model,
		MaxTokens:   llmCfg.MaxTokens,
		Temperature: llmCfg.Temperature,
		TopP:        llmCfg.TopP,
		Retries:     llmCfg.Retries,
		Backoff:     llmCfg.Backoff.Duration(),
	})

	return &generate.Generator{
		Catalog:     sess.Catalog,
		Client:      client,
		Store:       sess.Store(),
		Formatter:   formatter,
		Concurrency: sess.Config.Generation.Concurrency,
	}, nil
}

// docsGenerator builds artifacts that never talk to the service.
func docsGenerator(sess *session.Context) *generate.Generator {
	return &generate.Generator{Catalog: sess.Catalog}
}

// reportWarnings lists non-fatal stage failures without affecting the
// exit status.
func reportWarnings(report *generate.Report) {
	if len(report.Warnings) > 0 {
		prompts.PrintWarnings(report.Warnings)
	}
}

// reportError turns a write report with failures into a non-zero exit,
// listing the failed artifacts first.
func reportError(report *generate.Report, noun string) error {
	if !report.Failed() {
		return nil
	}
	problems := make([]string, len(report.Failures))
	for i, f := range report.Failures {
		problems[i] = fmt.Sprintf("%s: %v", f.Name, f.Err)
	}
	prompts.PrintProblems(problems)
	total := len(report.Failures) + len(report.Written)
	return fmt.Errorf("%d of %d %s failed", len(report.Failures), total, noun)
}

func runGenerate(ctx context.Context, sess *session.Context) error {
	gen, err := newGenerator(sess)
	if err != nil {
		return err
	}
	root := sess.ProjectRoot()
	if err := scaffold.EnsureLayout(root); err != nil {
		return err
	}
	writer := generate.NewWriter(root)

	docs, err := collectDocs(gen)
	if err != nil {
		return err
	}
	if _, err := writer.Artifacts(docs); err != nil {
		return err
	}

	results, err := gen.Models(ctx)
	if err != nil {
		return err
	}
	report, err := writer.Models(results)
	if err != nil {
		return err
	}

	msg := "Generation completed"
	if report.Failed() {
		msg = ""
	}
	prompts.PrintResult([]prompts.ResultField{
		{Label: "Project directory", Value: root},
		{Label: "Documents", Value: strconv.Itoa(len(docs))},
		{Label: "Models written", Value: strconv.Itoa(len(report.Written))},
		{Label: "Tokens used", Value: strconv.Itoa(report.Tokens)},
	}, msg)
	reportWarnings(report)

	return reportError(report, "models")
}

// collectDocs renders every artifact derived purely from the catalog:
// the sources declaration, the per-directory schema docs and the model
// contracts.
func collectDocs(gen *generate.Generator) ([]generate.Artifact, error) {
	sourcesDoc, err := gen.SourcesDoc()
	if err != nil {
		return nil, err
	}
	schemaDocs, err := gen.SchemaDocs()
	if err != nil {
		return nil, err
	}
	contracts, err := gen.Contracts()
	if err != nil {
		return nil, err
	}

	docs := make([]generate.Artifact, 0, 1+len(schemaDocs)+len(contracts))
	docs = append(docs, sourcesDoc)
	docs = append(docs, schemaDocs...)
	docs = append(docs, contracts...)
	return docs, nil
}
