// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package safety renders generated SQL inert before it reaches disk.
//
// Generated model bodies are never written in executable form. Apply
// prepends the review checklist and comments out every line, so a human
// has to read and deliberately uncomment a model before dbt can run it.
package safety

import (
	"fmt"
	"strings"
)

// CommentPrefix starts every rendered line.
const CommentPrefix = "-- "

// separator divides the checklist from the model body.
const separator = "--"

// InvariantError reports a safety transform whose output does not hold
// exactly the checklist lines, one separator, and the SQL lines. Callers
// must treat it as fatal for the whole run.
type InvariantError struct {
	WantLines int
	GotLines  int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("safety transform produced %d lines, want %d", e.GotLines, e.WantLines)
}

// Apply renders the checklist and SQL body as a fully commented artifact.
// Every input line is prefixed with "-- " (bare "--" for empty lines) and
// a lone "--" separates the two blocks. The output always ends with a
// newline and holds len(checklist)+1+len(sql) lines.
func Apply(sql, checklist string) (string, error) {
	checklistLines := splitLines(checklist)
	sqlLines := splitLines(sql)

	out := make([]string, 0, len(checklistLines)+1+len(sqlLines))
	out = append(out, commentLines(checklistLines)...)
	out = append(out, separator)
	out = append(out, commentLines(sqlLines)...)

	rendered := strings.Join(out, "\n") + "\n"

	want := len(checklistLines) + 1 + len(sqlLines)
	if got := len(splitLines(rendered)); got != want {
		return "", &InvariantError{WantLines: want, GotLines: got}
	}
	return rendered, nil
}

// splitLines normalizes line endings and drops trailing newlines so that
// a block's line count is stable no matter how the text was terminated.
// Empty text has zero lines.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func commentLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		if line == "" {
			out[i] = separator
			continue
		}
		out[i] = CommentPrefix + line
	}
	return out
}
