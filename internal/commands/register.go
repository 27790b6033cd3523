// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package commands contains all CLI command definitions.
package commands

import (
	"github.com/dacolabs/dbtgen/internal/session"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command for the CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dbtgen",
		Short: "Scaffold a dbt project from catalog files",
	}

	registerInitCmd(rootCmd)
	registerValidateCmd(rootCmd)
	registerGenerateCmd(rootCmd)
	registerReviewCmd(rootCmd)
	registerFormatSQLCmd(rootCmd)
	registerLintSQLCmd(rootCmd)
	registerVersionCmd(rootCmd)

	return rootCmd
}

func registerGenerateCmd(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:               "generate",
		Short:             "Generate dbt project artifacts from the catalog",
		PersistentPreRunE: session.PreRunLoad,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), sess)
		},
	}

	registerGenerateExternalTablesCmd(cmd)
	registerGenerateModelsCmd(cmd)
	registerGenerateSchemasCmd(cmd)
	registerGenerateTestsCmd(cmd)

	parent.AddCommand(cmd)
}
