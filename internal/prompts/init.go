// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package prompts

import (
	"github.com/charmbracelet/huh"
)

// RunInitForm runs the interactive form for the init command.
// It fills the provided pointers with user input.
func RunInitForm(name, root, database, formatter *string, samples *bool) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Placeholder("dbt_automation_project").
				Validate(identifierValidator[string](nil)).
				Value(name),
			huh.NewInput().
				Title("Project directory").
				Placeholder("./dbt_project").
				Validate(requiredValidator("project directory")).
				Value(root),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Target warehouse").
				Options(
					huh.NewOption("Snowflake", "snowflake"),
					huh.NewOption("Databricks", "databricks"),
					huh.NewOption("BigQuery", "bigquery"),
					huh.NewOption("Redshift", "redshift"),
					huh.NewOption("Postgres", "postgres"),
				).
				Value(database),
			huh.NewSelect[string]().
				Title("SQL formatter").
				Options(
					huh.NewOption("sqlfluff (requires the sqlfluff binary)", "sqlfluff"),
					huh.NewOption("none", "passthrough"),
				).
				Value(formatter),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Write sample catalog inputs?").
				Affirmative("Yes").
				Negative("No").
				Value(samples),
		),
	).WithTheme(Theme()).Run()
}
