// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dacolabs/dbtgen/internal/prompts"
	"github.com/dacolabs/dbtgen/internal/session"
	"github.com/dacolabs/dbtgen/internal/sqlfmt"
)

func registerLintSQLCmd(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "lint-sql",
		Short: "Lint the model SQL files",
		Long: `Run the configured formatter's linter over every .sql file under
models/ and report the violations. The command fails when any
violation is found.`,
		PreRunE: session.PreRunLoad,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runLintSQL(cmd.Context(), sess)
		},
	}
	parent.AddCommand(cmd)
}

func runLintSQL(ctx context.Context, sess *session.Context) error {
	formatter, err := sqlfmt.New(sess.Config.Generation.Formatter, sess.Config.Project.Database)
	if err != nil {
		return err
	}

	root := sess.ProjectRoot()
	files, err := modelSQLFiles(root)
	if err != nil {
		return err
	}

	var problems []string
	for _, rel := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		data, err := os.ReadFile(full) //nolint:gosec // path is derived from the project root
		if err != nil {
			return err
		}

		violations, err := formatter.Lint(ctx, string(data))
		if err != nil {
			return fmt.Errorf("lint %s: %w", rel, err)
		}
		for _, v := range violations {
			problems = append(problems, fmt.Sprintf("%s:%d %s %s", rel, v.Line, v.Code, v.Description))
		}
	}

	msg := "No lint violations"
	if len(problems) > 0 {
		msg = ""
	}
	prompts.PrintResult([]prompts.ResultField{
		{Label: "Linter", Value: formatter.Name()},
		{Label: "Files checked", Value: strconv.Itoa(len(files))},
		{Label: "Violations", Value: strconv.Itoa(len(problems))},
	}, msg)

	if len(problems) > 0 {
		prompts.PrintProblems(problems)
		return fmt.Errorf("%d lint violations in %d files", len(problems), len(files))
	}
	return nil
}
