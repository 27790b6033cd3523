// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package session loads the project configuration and catalog for CLI
// commands and carries them through context.Context.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dacolabs/dbtgen/internal/catalog"
	"github.com/dacolabs/dbtgen/internal/config"
	"github.com/dacolabs/dbtgen/internal/llm"
)

var (
	// ErrNotInitialized indicates no dbtgen.yaml was found in the current directory.
	ErrNotInitialized = errors.New("not in a dbtgen project (dbtgen.yaml not found)")

	// ErrInvalidConfig indicates the config file exists but is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInputNotFound indicates a catalog input named by the config doesn't exist.
	ErrInputNotFound = errors.New("catalog input not found")
)

// ConfigFileName is the name of the dbtgen configuration file.
const ConfigFileName = "dbtgen.yaml"

// contextKey is used to store Context in context.Context.
type contextKey struct{}

// Context holds the resolved project configuration and loaded catalog.
type Context struct {
	// Root is the directory holding dbtgen.yaml. Relative config paths
	// resolve against it.
	Root string

	// Config is the fully resolved configuration.
	Config *config.Config

	// Catalog is the validated catalog built from the input files.
	Catalog *catalog.Catalog

	// APIKey is the generation service credential from the environment.
	// Empty when the variable is unset.
	APIKey string
}

// Load loads the project context from the current working directory and
// returns a new context.Context with it stored.
func Load(ctx context.Context, getenv func(string) string) (context.Context, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	sess, err := LoadDir(cwd, getenv)
	if err != nil {
		return nil, err
	}
	return context.WithValue(ctx, contextKey{}, sess), nil
}

// LoadDir loads the project rooted at dir. Catalog violations come back
// as a *catalog.ValidationError so callers can list every finding.
func LoadDir(dir string, getenv func(string) string) (*Context, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotInitialized
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for name := range cfg.Inputs.Prompts {
		if !knownPromptKind(name) {
			return nil, fmt.Errorf("%w: unknown prompt template %q", ErrInvalidConfig, name)
		}
	}

	sess := &Context{Root: dir, Config: cfg, APIKey: getenv(config.EnvAPIKey)}

	cat, err := loadCatalog(sess)
	if err != nil {
		return nil, err
	}
	sess.Catalog = cat
	return sess, nil
}

// From extracts the session Context from a context.Context.
// Returns nil if no Context is stored.
func From(ctx context.Context) *Context {
	if sess, ok := ctx.Value(contextKey{}).(*Context); ok {
		return sess
	}
	return nil
}

// Resolve makes a config-relative path absolute against the project root.
func (c *Context) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Root, path)
}

// ProjectRoot returns the output dbt project directory.
func (c *Context) ProjectRoot() string {
	return c.Resolve(c.Config.Project.Root)
}

// Store returns the prompt template store for the project.
func (c *Context) Store() *llm.Store {
	overrides := make(map[llm.Kind]string, len(c.Config.Inputs.Prompts))
	for name, path := range c.Config.Inputs.Prompts {
		overrides[llm.Kind(name)] = c.Resolve(path)
	}
	return llm.NewStore(c.Resolve(c.Config.Inputs.PromptsDir), overrides)
}

func knownPromptKind(name string) bool {
	for _, kind := range llm.Kinds() {
		if string(kind) == name {
			return true
		}
	}
	return false
}

func loadCatalog(sess *Context) (*catalog.Catalog, error) {
	schemaRows, err := readRows(sess.Resolve(sess.Config.Inputs.SchemaCSV))
	if err != nil {
		return nil, err
	}
	sourceRows, err := readRows(sess.Resolve(sess.Config.Inputs.SourceCSV))
	if err != nil {
		return nil, err
	}

	mappingPath := sess.Resolve(sess.Config.Inputs.MappingYAML)
	mappingDoc, err := os.ReadFile(mappingPath) //nolint:gosec // path comes from the project config
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, mappingPath)
		}
		return nil, err
	}

	return catalog.Load(schemaRows, sourceRows, mappingDoc)
}

func readRows(path string) ([]catalog.Row, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the project config
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	rows, err := catalog.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}
