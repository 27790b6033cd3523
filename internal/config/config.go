// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package config handles dbtgen project configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// CurrentConfigVersion is the current version of the config file format.
const CurrentConfigVersion = 1

// EnvAPIKey names the environment variable carrying the generation
// service credential. The key never lives in the config file.
const EnvAPIKey = "OPENAI_API_KEY"

// Duration wraps time.Duration so config values read like "50s" or "500ms".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in time.Duration notation.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the standard library form.
func (d Duration) Duration() time.Duration { return time.Duration(d) }

// Config represents the dbtgen.yaml project configuration file.
type Config struct {
	Version    int        `yaml:"version"`
	Project    Project    `yaml:"project"`
	Inputs     Inputs     `yaml:"inputs"`
	LLM        LLM        `yaml:"llm"`
	Generation Generation `yaml:"generation"`
}

// Project holds the dbt project settings used by scaffolding and writes.
type Project struct {
	Root     string `yaml:"root"`
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Profile  string `yaml:"profile"`
	Database string `yaml:"database"`
}

// Inputs names the catalog files the pipeline reads. Prompts maps a
// template name to an explicit override file.
type Inputs struct {
	SchemaCSV   string            `yaml:"schema_csv"`
	SourceCSV   string            `yaml:"source_csv"`
	MappingYAML string            `yaml:"mapping_yaml"`
	PromptsDir  string            `yaml:"prompts_dir"`
	Prompts     map[string]string `yaml:"prompts,omitempty"`
}

// LLM holds the text-generation service settings.
type LLM struct {
	URL         string   `yaml:"url"`
	Model       string   `yaml:"model"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature float64  `yaml:"temperature"`
	TopP        float64  `yaml:"top_p"`
	Timeout     Duration `yaml:"timeout"`
	Retries     int      `yaml:"retries"`
	Backoff     Duration `yaml:"backoff"`
}

// Generation tunes a pipeline run.
type Generation struct {
	Concurrency int    `yaml:"concurrency"`
	Formatter   string `yaml:"formatter"`
}

// Default returns the configuration init writes for a new project.
func Default() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Project: Project{
			Root:     "./dbt_project",
			Name:     "dbt_automation_project",
			Version:  "1.0.0",
			Profile:  "dbt_automation_profile",
			Database: "snowflake",
		},
		Inputs: Inputs{
			SchemaCSV:   "./config/database_schema.csv",
			SourceCSV:   "./config/source_tables.csv",
			MappingYAML: "./config/table_mappings.yaml",
			PromptsDir:  "./prompts",
		},
		LLM: LLM{
			URL:         "https://api.openai.com/v1/chat/completions",
			Model:       "gpt-4",
			MaxTokens:   4000,
			Temperature: 0.1,
			TopP:        1.0,
			Timeout:     Duration(50 * time.Second),
			Retries:     2,
			Backoff:     Duration(500 * time.Millisecond),
		},
		Generation: Generation{
			Concurrency: 4,
			Formatter:   "sqlfluff",
		},
	}
}

// Load reads a Config from a file path. Fields absent from the file keep
// their defaults, so an empty file is a valid all-defaults project.
func Load(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	cfg := Default()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment overrides onto the configuration. The
// variable names follow the OpenAI tooling convention; unset variables
// leave the file values untouched.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	for _, s := range []struct {
		name   string
		target *string
	}{
		{"OPENAI_MODEL", &c.LLM.Model},
		{"PROJECT_ROOT", &c.Project.Root},
		{"SCHEMA_DEFINITIONS_PATH", &c.Inputs.SchemaCSV},
		{"SOURCE_CSV_PATH", &c.Inputs.SourceCSV},
		{"MAPPING_YAML_PATH", &c.Inputs.MappingYAML},
		{"PROMPTS_PATH", &c.Inputs.PromptsDir},
	} {
		if v := getenv(s.name); v != "" {
			*s.target = v
		}
	}

	if v := getenv("OPENAI_MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("OPENAI_MAX_TOKENS: invalid value %q", v)
		}
		c.LLM.MaxTokens = n
	}
	if v := getenv("OPENAI_TEMPERATURE"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("OPENAI_TEMPERATURE: invalid value %q", v)
		}
		c.LLM.Temperature = t
	}
	return nil
}

// Save writes the Config to a file path.
func (c *Config) Save(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	if c.Version != CurrentConfigVersion {
		return errors.New("unsupported config version")
	}
	if c.Project.Name == "" {
		return errors.New("project.name is required")
	}
	if c.Project.Root == "" {
		return errors.New("project.root is required")
	}
	if c.Project.Profile == "" {
		return errors.New("project.profile is required")
	}
	if c.Project.Database == "" {
		return errors.New("project.database is required")
	}
	if c.LLM.URL == "" {
		return errors.New("llm.url is required")
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model is required")
	}
	if c.LLM.MaxTokens <= 0 {
		return errors.New("llm.max_tokens must be positive")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	if c.LLM.TopP <= 0 || c.LLM.TopP > 1 {
		return errors.New("llm.top_p must be between 0 and 1")
	}
	if c.LLM.Timeout <= 0 {
		return errors.New("llm.timeout must be positive")
	}
	if c.LLM.Retries < 0 {
		return errors.New("llm.retries must not be negative")
	}
	if c.LLM.Backoff < 0 {
		return errors.New("llm.backoff must not be negative")
	}
	if c.Generation.Concurrency < 1 {
		return errors.New("generation.concurrency must be at least 1")
	}
	if c.Generation.Formatter == "" {
		return errors.New("generation.formatter is required")
	}
	return nil
}
