// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package scaffold lays out the skeleton of a generated dbt project.
package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Layout lists the directories every generated project carries.
var Layout = []string{
	"models",
	"macros",
	"tests",
	"docs",
	"logs",
	"target",
}

// Project describes the dbt_project.yml written during scaffolding.
type Project struct {
	Name          string                `yaml:"name"`
	Version       string                `yaml:"version"`
	Profile       string                `yaml:"profile"`
	ConfigVersion int                   `yaml:"config-version"`
	ModelPaths    []string              `yaml:"model-paths"`
	TestPaths     []string              `yaml:"test-paths"`
	MacroPaths    []string              `yaml:"macro-paths"`
	TargetPath    string                `yaml:"target-path"`
	CleanTargets  []string              `yaml:"clean-targets"`
	Models        map[string]ModelGroup `yaml:"models,omitempty"`
}

// ModelGroup holds group-level model configuration.
type ModelGroup struct {
	Materialized string `yaml:"+materialized,omitempty"`
}

// NewProject returns a project definition with the standard paths and
// view materialization for the project's own model group.
func NewProject(name, version, profile string) Project {
	return Project{
		Name:          name,
		Version:       version,
		Profile:       profile,
		ConfigVersion: 2,
		ModelPaths:    []string{"models"},
		TestPaths:     []string{"tests"},
		MacroPaths:    []string{"macros"},
		TargetPath:    "target",
		CleanTargets:  []string{"target", "dbt_packages"},
		Models: map[string]ModelGroup{
			name: {Materialized: "view"},
		},
	}
}

// EnsureLayout creates the project directories under root. Existing
// directories are kept, so the call is safe on every run.
func EnsureLayout(root string) error {
	for _, dir := range Layout {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o750); err != nil {
			return fmt.Errorf("create project directory %s: %w", dir, err)
		}
	}
	return nil
}

// WriteProject writes dbt_project.yml under root. An existing file is an
// error so a scaffold never clobbers a project someone has edited.
func WriteProject(root string, p Project) error {
	path := filepath.Join(root, "dbt_project.yml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("dbt_project.yml already exists in %s", root)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat dbt_project.yml: %w", err)
	}

	file, err := os.Create(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return fmt.Errorf("create dbt_project.yml: %w", err)
	}

	enc := yaml.NewEncoder(file)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		file.Close()
		return fmt.Errorf("encode dbt_project.yml: %w", err)
	}
	if err := enc.Close(); err != nil {
		file.Close()
		return fmt.Errorf("encode dbt_project.yml: %w", err)
	}
	return file.Close()
}
