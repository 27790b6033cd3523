// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output is one connection target in profiles.yml.
type Output struct {
	Type      string `yaml:"type"`
	Account   string `yaml:"account"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	Database  string `yaml:"database"`
	Warehouse string `yaml:"warehouse"`
	Schema    string `yaml:"schema"`
	Threads   int    `yaml:"threads"`
}

// ProfileEntry is the body of one named profile.
type ProfileEntry struct {
	Target  string            `yaml:"target"`
	Outputs map[string]Output `yaml:"outputs"`
}

// Profiles is the profiles.yml document, keyed by profile name.
type Profiles map[string]ProfileEntry

// NewProfiles returns a starter profile for the given warehouse type.
// Credentials resolve through env_var at dbt runtime, so the file holds
// no secrets and is safe to commit.
func NewProfiles(profile, database string) Profiles {
	prefix := strings.ToUpper(database)
	ev := func(name string) string {
		return fmt.Sprintf("{{ env_var('%s_%s') }}", prefix, name)
	}
	return Profiles{
		profile: {
			Target: "dev",
			Outputs: map[string]Output{
				"dev": {
					Type:      database,
					Account:   ev("ACCOUNT"),
					User:      ev("USER"),
					Password:  ev("PASSWORD"),
					Database:  ev("DATABASE"),
					Warehouse: ev("WAREHOUSE"),
					Schema:    ev("SCHEMA"),
					Threads:   4,
				},
			},
		},
	}
}

// WriteProfiles writes profiles.yml under root. An existing file is an
// error, same as WriteProject.
func WriteProfiles(root string, p Profiles) error {
	path := filepath.Join(root, "profiles.yml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("profiles.yml already exists in %s", root)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat profiles.yml: %w", err)
	}

	file, err := os.Create(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return fmt.Errorf("create profiles.yml: %w", err)
	}

	enc := yaml.NewEncoder(file)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		file.Close()
		return fmt.Errorf("encode profiles.yml: %w", err)
	}
	if err := enc.Close(); err != nil {
		file.Close()
		return fmt.Errorf("encode profiles.yml: %w", err)
	}
	return file.Close()
}
