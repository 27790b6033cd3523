// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dacolabs/dbtgen/internal/generate"
	"github.com/dacolabs/dbtgen/internal/prompts"
	"github.com/dacolabs/dbtgen/internal/scaffold"
	"github.com/dacolabs/dbtgen/internal/session"
)

func registerGenerateModelsCmd(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Generate the staging and mart model SQL",
		Long: `Build every staging model from its mapping and request the mart models
from the text generation service. Generated SQL is written commented out
for review, with the full service exchange logged under logs/.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runGenerateModels(cmd.Context(), sess)
		},
	}
	parent.AddCommand(cmd)
}

func runGenerateModels(ctx context.Context, sess *session.Context) error {
	gen, err := newGenerator(sess)
	if err != nil {
		return err
	}

	root := sess.ProjectRoot()
	if err := scaffold.EnsureLayout(root); err != nil {
		return err
	}

	results, err := gen.Models(ctx)
	if err != nil {
		return err
	}
	report, err := generate.NewWriter(root).Models(results)
	if err != nil {
		return err
	}

	msg := "Models written"
	if report.Failed() {
		msg = ""
	}
	prompts.PrintResult([]prompts.ResultField{
		{Label: "Models written", Value: strconv.Itoa(len(report.Written))},
		{Label: "Tokens used", Value: strconv.Itoa(report.Tokens)},
	}, msg)
	reportWarnings(report)

	return reportError(report, "models")
}
