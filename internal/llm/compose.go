// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package llm

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholder matches single-brace template variables such as {model_name}.
// Jinja expressions like {{ ref('orders') }} do not match because the
// character after the brace must start an identifier.
var placeholder = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// MissingVariableError lists every template variable that had no value,
// in order of first appearance.
type MissingVariableError struct {
	Names []string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("prompt variables missing: %s", strings.Join(e.Names, ", "))
}

// Compose substitutes vars into the template. All placeholders are checked
// before any substitution happens, so a failed call reports the complete
// set of missing variables. Values for variables the template never names
// are ignored.
func Compose(template string, vars map[string]string) (string, error) {
	var missing []string
	seen := make(map[string]bool)
	for _, match := range placeholder.FindAllStringSubmatch(template, -1) {
		name := match[1]
		if _, ok := vars[name]; ok || seen[name] {
			continue
		}
		seen[name] = true
		missing = append(missing, name)
	}
	if len(missing) > 0 {
		return "", &MissingVariableError{Names: missing}
	}

	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		return vars[m[1:len(m)-1]]
	}), nil
}
