// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package generate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dacolabs/dbtgen/internal/llm"
)

// TokenLedgerPath is the append-only token usage log, relative to the
// project root.
const TokenLedgerPath = "logs/llm_token_usage.log"

// Report summarizes what a write pass put on disk.
type Report struct {
	Written  []string
	Warnings []string
	Failures []Failure
	Tokens   int
}

// Failure names a model whose generation failed.
type Failure struct {
	Name string
	Err  error
}

// Failed reports whether any model failed.
func (r *Report) Failed() bool { return len(r.Failures) > 0 }

// Writer persists artifacts under a project root. Artifact writes go
// through a temp file and rename, so a crash never leaves a truncated
// file at the final path.
type Writer struct {
	root string
}

// NewWriter returns a writer rooted at the project directory.
func NewWriter(root string) *Writer {
	return &Writer{root: root}
}

// Artifact writes one artifact atomically, creating parent directories.
func (w *Writer) Artifact(a Artifact) error {
	full := filepath.Join(w.root, filepath.FromSlash(a.Path))
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("create directory for %s: %w", a.Path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".dbtgen-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", a.Path, err)
	}
	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", a.Path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", a.Path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", a.Path, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", a.Path, err)
	}
	return nil
}

// Artifacts writes artifacts in order and returns the paths written.
func (w *Writer) Artifacts(artifacts []Artifact) ([]string, error) {
	written := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		if err := w.Artifact(a); err != nil {
			return written, err
		}
		written = append(written, a.Path)
	}
	return written, nil
}

// Models persists a build pass: artifacts for the models that succeeded,
// generation logs and token ledger entries for every model that talked
// to the service, failures included.
func (w *Writer) Models(results []ModelResult) (*Report, error) {
	report := &Report{}

	for _, res := range results {
		if err := w.appendLogs(res); err != nil {
			return report, err
		}
		report.Tokens += res.Tokens
		for _, warn := range res.Warnings {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %s", res.Name, warn))
		}

		if res.Err != nil {
			report.Failures = append(report.Failures, Failure{Name: res.Name, Err: res.Err})
			continue
		}
		if err := w.Artifact(Artifact{Path: res.Path, Data: []byte(res.Content)}); err != nil {
			return report, err
		}
		report.Written = append(report.Written, res.Path)
	}
	return report, nil
}

func (w *Writer) appendLogs(res ModelResult) error {
	if len(res.Log) == 0 {
		return nil
	}

	var log, ledger strings.Builder
	for _, entry := range res.Log {
		log.WriteString(renderLogEntry(entry))
		if entry.Err == "" {
			fmt.Fprintf(&ledger, "%s - tokens_used: %d\n", entry.Time.Format(time.RFC3339), entry.Tokens)
		}
	}

	logPath := fmt.Sprintf("logs/model_generation_%s.log", res.Name)
	if err := w.appendFile(logPath, log.String()); err != nil {
		return err
	}
	if ledger.Len() == 0 {
		return nil
	}
	return w.appendFile(TokenLedgerPath, ledger.String())
}

func (w *Writer) appendFile(rel, content string) error {
	full := filepath.Join(w.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("create directory for %s: %w", rel, err)
	}

	file, err := os.OpenFile(full, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // path is derived from the project root
	if err != nil {
		return fmt.Errorf("open %s: %w", rel, err)
	}
	if _, err := file.WriteString(content); err != nil {
		file.Close()
		return fmt.Errorf("append %s: %w", rel, err)
	}
	return file.Close()
}

func renderLogEntry(e llm.LogEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] invocation=%s kind=%s attempt=%d",
		e.Time.Format(time.RFC3339), e.Invocation, e.Kind, e.Attempt)
	if e.Err != "" {
		fmt.Fprintf(&b, " error=%q\n", e.Err)
	} else {
		fmt.Fprintf(&b, " tokens=%d\n", e.Tokens)
	}
	b.WriteString("PROMPT:\n")
	b.WriteString(strings.TrimRight(e.Prompt, "\n"))
	b.WriteString("\n")
	if e.Response != "" {
		b.WriteString("RESPONSE:\n")
		b.WriteString(strings.TrimRight(e.Response, "\n"))
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat("-", 80))
	b.WriteString("\n")
	return b.String()
}
