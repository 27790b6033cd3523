// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package llm

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed templates/*.txt
var builtin embed.FS

// ErrUnknownTemplate is returned for a prompt kind the store does not know.
var ErrUnknownTemplate = errors.New("unknown prompt template")

// Store resolves prompt templates. Built-in templates ship with the
// binary; a template directory shadows them file by file, and explicit
// per-kind overrides take precedence over both.
type Store struct {
	dir       string
	overrides map[Kind]string
}

// NewStore returns a store reading optional overrides from dir. The
// overrides map pins individual kinds to explicit files.
func NewStore(dir string, overrides map[Kind]string) *Store {
	return &Store{dir: dir, overrides: overrides}
}

// Template returns the template text for kind.
//
// An explicit override that cannot be read is an error, never a silent
// fallback. Directory templates are optional and fall back to the
// built-in text when the file does not exist.
func (s *Store) Template(kind Kind) (string, error) {
	if !known(kind) {
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, kind)
	}

	if path, ok := s.overrides[kind]; ok {
		data, err := os.ReadFile(path) //nolint:gosec // path is provided by caller
		if err != nil {
			return "", fmt.Errorf("read prompt override for %s: %w", kind, err)
		}
		return string(data), nil
	}

	if s.dir != "" {
		path := filepath.Join(s.dir, string(kind)+".txt")
		data, err := os.ReadFile(path) //nolint:gosec // path is provided by caller
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("read prompt template %s: %w", path, err)
		}
	}

	data, err := builtin.ReadFile("templates/" + string(kind) + ".txt")
	if err != nil {
		return "", fmt.Errorf("read built-in prompt template for %s: %w", kind, err)
	}
	return string(data), nil
}

func known(kind Kind) bool {
	for _, k := range Kinds() {
		if k == kind {
			return true
		}
	}
	return false
}
