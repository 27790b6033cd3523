// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dacolabs/dbtgen/internal/generate"
	"github.com/dacolabs/dbtgen/internal/prompts"
	"github.com/dacolabs/dbtgen/internal/scaffold"
	"github.com/dacolabs/dbtgen/internal/session"
)

func registerGenerateExternalTablesCmd(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "external-tables",
		Short: "Write the dbt sources declaration",
		Long: `Render the source tables of the catalog as a dbt sources file with
external table metadata and freshness settings.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runGenerateExternalTables(sess)
		},
	}
	parent.AddCommand(cmd)
}

func runGenerateExternalTables(sess *session.Context) error {
	doc, err := docsGenerator(sess).SourcesDoc()
	if err != nil {
		return err
	}

	root := sess.ProjectRoot()
	if err := scaffold.EnsureLayout(root); err != nil {
		return err
	}
	if err := generate.NewWriter(root).Artifact(doc); err != nil {
		return err
	}

	prompts.PrintResult([]prompts.ResultField{
		{Label: "Source tables", Value: strconv.Itoa(len(sess.Catalog.Sources))},
		{Label: "File", Value: filepath.Join(root, filepath.FromSlash(doc.Path))},
	}, "External tables written")
	return nil
}
