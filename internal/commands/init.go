// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/dacolabs/dbtgen/internal/config"
	"github.com/dacolabs/dbtgen/internal/prompts"
	"github.com/dacolabs/dbtgen/internal/scaffold"
	"github.com/dacolabs/dbtgen/internal/session"
	"github.com/dacolabs/dbtgen/internal/sqlfmt"
	"github.com/spf13/cobra"
)

type initOptions struct {
	name           string
	root           string
	database       string
	formatter      string
	samples        bool
	force          bool
	nonInteractive bool
}

func registerInitCmd(parent *cobra.Command) {
	defaults := config.Default()
	opts := &initOptions{samples: true}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new dbtgen project",
		Long: `Initialize a new dbtgen project with a dbtgen.yaml configuration file,
a scaffolded dbt project directory and starter catalog inputs.`,
		Example: `  # Interactive mode
  dbtgen init

  # Non-interactive
  dbtgen init --name warehouse --database databricks --non-interactive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", defaults.Project.Name, "Project name")
	cmd.Flags().StringVarP(&opts.root, "root", "r", defaults.Project.Root, "dbt project directory")
	cmd.Flags().StringVarP(&opts.database, "database", "d", defaults.Project.Database, "Target warehouse type")
	cmd.Flags().StringVarP(&opts.formatter, "formatter", "f", defaults.Generation.Formatter, "SQL formatter (sqlfluff or passthrough)")
	cmd.Flags().BoolVar(&opts.samples, "samples", true, "Write starter catalog inputs under ./config")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite existing starter inputs")
	cmd.Flags().BoolVar(&opts.nonInteractive, "non-interactive", false, "Run without prompts")

	parent.AddCommand(cmd)
}

func runInit(opts *initOptions) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	// Check that the current directory isn't already initialized
	configPath := filepath.Join(cwd, session.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		return errors.New("dbtgen.yaml already exists; project already initialized")
	}

	if !opts.nonInteractive {
		if err := prompts.RunInitForm(
			&opts.name,
			&opts.root,
			&opts.database,
			&opts.formatter,
			&opts.samples,
		); err != nil {
			return err
		}
	}

	if _, err := sqlfmt.New(opts.formatter, opts.database); err != nil {
		return err
	}

	cfg := config.Default()
	cfg.Project.Name = opts.name
	cfg.Project.Root = opts.root
	cfg.Project.Database = opts.database
	cfg.Generation.Formatter = opts.formatter
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("config file couldn't be saved: %w", err)
	}

	root := opts.root
	if !filepath.IsAbs(root) {
		root = filepath.Join(cwd, root)
	}
	if err := scaffold.EnsureLayout(root); err != nil {
		return err
	}
	project := scaffold.NewProject(cfg.Project.Name, cfg.Project.Version, cfg.Project.Profile)
	if err := scaffold.WriteProject(root, project); err != nil {
		return err
	}
	if err := scaffold.WriteProfiles(root, scaffold.NewProfiles(cfg.Project.Profile, cfg.Project.Database)); err != nil {
		return err
	}

	written := 0
	if opts.samples {
		samples := scaffold.Samples()
		paths := make([]string, 0, len(samples))
		for p := range samples {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			ok, err := scaffold.WriteSample(filepath.Join(cwd, p), samples[p], opts.force)
			if err != nil {
				return err
			}
			if ok {
				written++
			}
		}
	}

	prompts.PrintResult([]prompts.ResultField{
		{Label: "Project", Value: cfg.Project.Name},
		{Label: "Directory", Value: opts.root},
		{Label: "Database", Value: cfg.Project.Database},
		{Label: "Formatter", Value: cfg.Generation.Formatter},
		{Label: "Starter inputs", Value: strconv.Itoa(written)},
	}, "Initialization completed")

	return nil
}
