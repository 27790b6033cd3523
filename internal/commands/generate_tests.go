// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dacolabs/dbtgen/internal/generate"
	"github.com/dacolabs/dbtgen/internal/prompts"
	"github.com/dacolabs/dbtgen/internal/scaffold"
	"github.com/dacolabs/dbtgen/internal/session"
)

func registerGenerateTestsCmd(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "tests",
		Short: "Generate unit test SQL for the mart models",
		Long: `Request a unit test for every generated mart model from the text
generation service. Models whose SQL has not been generated yet are
skipped; run "dbtgen generate models" first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runGenerateTests(cmd.Context(), sess)
		},
	}
	parent.AddCommand(cmd)
}

func runGenerateTests(ctx context.Context, sess *session.Context) error {
	gen, err := newGenerator(sess)
	if err != nil {
		return err
	}

	root := sess.ProjectRoot()
	if err := scaffold.EnsureLayout(root); err != nil {
		return err
	}

	modelSQL := make(map[string]string, len(sess.Catalog.Models))
	var skipped []string
	for _, m := range sess.Catalog.Models {
		full := filepath.Join(root, filepath.FromSlash(generate.ModelArtifactPath(m)))
		data, err := os.ReadFile(full) //nolint:gosec // path is derived from the project root
		if errors.Is(err, os.ErrNotExist) {
			skipped = append(skipped, m.Name)
			continue
		}
		if err != nil {
			return err
		}
		modelSQL[m.Name] = string(data)
	}

	results, err := gen.UnitTests(ctx, modelSQL)
	if err != nil {
		return err
	}
	report, err := generate.NewWriter(root).Models(results)
	if err != nil {
		return err
	}

	fields := []prompts.ResultField{
		{Label: "Tests written", Value: strconv.Itoa(len(report.Written))},
		{Label: "Tokens used", Value: strconv.Itoa(report.Tokens)},
	}
	if len(skipped) > 0 {
		fields = append(fields, prompts.ResultField{
			Label: "Skipped (no model SQL)",
			Value: strings.Join(skipped, ", "),
		})
	}
	msg := "Tests written"
	if report.Failed() {
		msg = ""
	}
	prompts.PrintResult(fields, msg)

	return reportError(report, "tests")
}
