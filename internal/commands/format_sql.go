// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dacolabs/dbtgen/internal/generate"
	"github.com/dacolabs/dbtgen/internal/prompts"
	"github.com/dacolabs/dbtgen/internal/session"
	"github.com/dacolabs/dbtgen/internal/sqlfmt"
)

func registerFormatSQLCmd(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "format-sql",
		Short: "Format the model SQL files in place",
		Long: `Run the configured formatter over every .sql file under models/ and
rewrite the files that change.`,
		PreRunE: session.PreRunLoad,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runFormatSQL(cmd.Context(), sess)
		},
	}
	parent.AddCommand(cmd)
}

func runFormatSQL(ctx context.Context, sess *session.Context) error {
	formatter, err := sqlfmt.New(sess.Config.Generation.Formatter, sess.Config.Project.Database)
	if err != nil {
		return err
	}

	root := sess.ProjectRoot()
	files, err := modelSQLFiles(root)
	if err != nil {
		return err
	}

	writer := generate.NewWriter(root)
	var changed int
	var problems []string
	for _, rel := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		data, err := os.ReadFile(full) //nolint:gosec // path is derived from the project root
		if err != nil {
			return err
		}

		formatted, err := formatter.Format(ctx, string(data))
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", rel, err))
			continue
		}
		if formatted == string(data) {
			continue
		}
		if err := writer.Artifact(generate.Artifact{Path: rel, Data: []byte(formatted)}); err != nil {
			return err
		}
		changed++
	}

	msg := "Formatting completed"
	if len(problems) > 0 {
		msg = ""
	}
	prompts.PrintResult([]prompts.ResultField{
		{Label: "Formatter", Value: formatter.Name()},
		{Label: "Files checked", Value: strconv.Itoa(len(files))},
		{Label: "Files rewritten", Value: strconv.Itoa(changed)},
	}, msg)

	if len(problems) > 0 {
		prompts.PrintProblems(problems)
		return fmt.Errorf("%d of %d files failed to format", len(problems), len(files))
	}
	return nil
}

// modelSQLFiles lists the .sql files under models/, as slash-separated
// paths relative to the project root. A missing models/ directory is an
// empty project, not an error.
func modelSQLFiles(root string) ([]string, error) {
	modelsDir := filepath.Join(root, "models")
	var files []string
	err := filepath.WalkDir(modelsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".sql") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return files, nil
}
