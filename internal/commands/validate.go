// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dacolabs/dbtgen/internal/catalog"
	"github.com/dacolabs/dbtgen/internal/prompts"
	"github.com/dacolabs/dbtgen/internal/session"
	"github.com/spf13/cobra"
)

func registerValidateCmd(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the catalog inputs",
		Long: `Validate the schema, source table and mapping inputs against the catalog
rules and print every violation found.`,
		Example: `  # Validate the project in the current directory
  dbtgen validate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate()
		},
	}
	parent.AddCommand(cmd)
}

func runValidate() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	sess, err := session.LoadDir(cwd, os.Getenv)
	var verr *catalog.ValidationError
	if errors.As(err, &verr) {
		problems := make([]string, len(verr.Violations))
		for i, v := range verr.Violations {
			problems[i] = v.String()
		}
		prompts.PrintProblems(problems)
		return verr
	}
	if err != nil {
		return err
	}

	prompts.PrintResult([]prompts.ResultField{
		{Label: "Tables", Value: strconv.Itoa(len(sess.Catalog.Tables))},
		{Label: "Source tables", Value: strconv.Itoa(len(sess.Catalog.Sources))},
		{Label: "Staging models", Value: strconv.Itoa(len(sess.Catalog.Staging))},
		{Label: "Models", Value: strconv.Itoa(len(sess.Catalog.Models))},
	}, "Catalog is valid")
	return nil
}
