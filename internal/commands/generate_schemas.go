// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dacolabs/dbtgen/internal/generate"
	"github.com/dacolabs/dbtgen/internal/prompts"
	"github.com/dacolabs/dbtgen/internal/scaffold"
	"github.com/dacolabs/dbtgen/internal/session"
)

func registerGenerateSchemasCmd(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "Write the schema docs and data tests for the models",
		Long: `Render a schema.yml per model directory, declaring every model with its
columns, contracts and the data tests derived from the catalog
constraints, plus a JSON Schema contract per model under docs/contracts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runGenerateSchemas(sess)
		},
	}
	parent.AddCommand(cmd)
}

func runGenerateSchemas(sess *session.Context) error {
	gen := docsGenerator(sess)
	schemaDocs, err := gen.SchemaDocs()
	if err != nil {
		return err
	}
	contracts, err := gen.Contracts()
	if err != nil {
		return err
	}

	root := sess.ProjectRoot()
	if err := scaffold.EnsureLayout(root); err != nil {
		return err
	}
	docs := append(schemaDocs, contracts...)
	written, err := generate.NewWriter(root).Artifacts(docs)
	if err != nil {
		return err
	}

	prompts.PrintResult([]prompts.ResultField{
		{Label: "Schema docs", Value: strconv.Itoa(len(schemaDocs))},
		{Label: "Contracts", Value: strconv.Itoa(len(contracts))},
		{Label: "Files written", Value: strconv.Itoa(len(written))},
	}, "Schemas written")
	return nil
}
