// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dacolabs/dbtgen/internal/catalog"
	"github.com/dacolabs/dbtgen/internal/generate"
	"github.com/dacolabs/dbtgen/internal/prompts"
	"github.com/dacolabs/dbtgen/internal/session"
)

func registerReviewCmd(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "review [model]",
		Short: "Request a code review of the generated models",
		Long: `Send generated model SQL to the text generation service for review and
write the findings under docs/reviews. Without an argument every
generated model is reviewed.`,
		Example: `  dbtgen review
  dbtgen review customer_orders`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: session.PreRunLoad,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runReview(cmd.Context(), sess, name)
		},
	}
	parent.AddCommand(cmd)
}

func runReview(ctx context.Context, sess *session.Context, name string) error {
	gen, err := newGenerator(sess)
	if err != nil {
		return err
	}
	root := sess.ProjectRoot()

	targets := sess.Catalog.Models
	if name != "" {
		m, ok := findModel(sess.Catalog, name)
		if !ok {
			return fmt.Errorf("unknown model: %s", name)
		}
		targets = []catalog.Model{m}
	}

	var skipped []string
	var results []generate.ModelResult
	for _, m := range targets {
		full := filepath.Join(root, filepath.FromSlash(generate.ModelArtifactPath(m)))
		data, err := os.ReadFile(full) //nolint:gosec // path is derived from the project root
		if errors.Is(err, os.ErrNotExist) {
			skipped = append(skipped, m.Name)
			continue
		}
		if err != nil {
			return err
		}

		res := generate.ModelResult{
			Name: m.Name,
			Path: path.Join("docs", "reviews", m.Name+".md"),
		}
		review, err := gen.Review(ctx, m.Name, string(data))
		if review != nil {
			res.Log = review.Log
			res.Tokens = review.Tokens
		}
		if err != nil {
			res.Err = err
		} else {
			res.Content = fmt.Sprintf("# Code review: %s\n\n%s\n", m.Name, strings.TrimRight(review.Text, "\n"))
		}
		results = append(results, res)
	}

	report, err := generate.NewWriter(root).Models(results)
	if err != nil {
		return err
	}

	fields := []prompts.ResultField{
		{Label: "Reviews written", Value: strconv.Itoa(len(report.Written))},
		{Label: "Tokens used", Value: strconv.Itoa(report.Tokens)},
	}
	if len(skipped) > 0 {
		fields = append(fields, prompts.ResultField{
			Label: "Skipped (no model SQL)",
			Value: strings.Join(skipped, ", "),
		})
	}
	msg := "Review completed"
	if report.Failed() {
		msg = ""
	}
	prompts.PrintResult(fields, msg)

	return reportError(report, "reviews")
}

func findModel(cat *catalog.Catalog, name string) (catalog.Model, bool) {
	for _, m := range cat.Models {
		if m.Name == name {
			return m, true
		}
	}
	return catalog.Model{}, false
}
