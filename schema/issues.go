package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Severity separates hard failures from advisory findings.
type Severity int

const (
	// SeverityError fails validation.
	SeverityError Severity = iota
	// SeverityWarning is reported but does not fail validation (string formats).
	SeverityWarning
)

// String returns "error" or "warning".
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Issue is a single problem found while validating a value.
type Issue struct {
	// Path locates the value, e.g. "user.tags[2]". Empty for the root value.
	Path string
	// Message is a human-readable description of the problem
	Message string
	// Severity of the problem
	Severity Severity
}

// String renders the issue as a single line.
func (i Issue) String() string {
	symbol := "✗"
	if i.Severity == SeverityWarning {
		symbol = "⚠"
	}
	path := i.Path
	if path == "" {
		path = "(root)"
	}
	return fmt.Sprintf("%s %s: %s", symbol, path, i.Message)
}

// Issues is the failure returned by the built-in provider.
type Issues []Issue

// Error renders one issue per line.
func (is Issues) Error() string {
	lines := make([]string, len(is))
	for i, issue := range is {
		lines[i] = issue.String()
	}
	return strings.Join(lines, "\n")
}

// HasErrors reports whether any issue has error severity.
func (is Issues) HasErrors() bool {
	for _, issue := range is {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the error-severity issues.
func (is Issues) Errors() Issues {
	var out Issues
	for _, issue := range is {
		if issue.Severity == SeverityError {
			out = append(out, issue)
		}
	}
	return out
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

func indexPath(base string, i int) string {
	return fmt.Sprintf("%s[%d]", base, i)
}

func sortStrings(s []string) {
	sort.Strings(s)
}
