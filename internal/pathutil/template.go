package pathutil

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Template is a parsed endpoint path such as "/users/:id/posts/:postId".
// Named segments start with ':' and continue over letters, digits and '_'.
type Template struct {
	// raw is the original path template
	raw string

	// parts alternates literal text and parameter references in order
	parts []templatePart

	// paramNames are the parameter names in order of appearance
	paramNames []string
}

type templatePart struct {
	literal string
	param   string
}

// ParseTemplate parses a path template.
//
// Returns an error if the template is empty, contains a ':' that is not
// followed by a parameter name, or repeats a parameter name.
func ParseTemplate(path string) (*Template, error) {
	if path == "" {
		return nil, fmt.Errorf("path template cannot be empty")
	}

	t := &Template{raw: path}
	var literal strings.Builder

	i := 0
	for i < len(path) {
		if path[i] != ':' {
			literal.WriteByte(path[i])
			i++
			continue
		}

		end := i + 1
		for end < len(path) && isParamChar(path[end]) {
			end++
		}
		name := path[i+1 : end]
		if name == "" {
			return nil, fmt.Errorf("empty path parameter at position %d in template %q", i, path)
		}
		for _, existing := range t.paramNames {
			if existing == name {
				return nil, fmt.Errorf("duplicate path parameter %q in template %q", name, path)
			}
		}

		if literal.Len() > 0 {
			t.parts = append(t.parts, templatePart{literal: literal.String()})
			literal.Reset()
		}
		t.parts = append(t.parts, templatePart{param: name})
		t.paramNames = append(t.paramNames, name)
		i = end
	}
	if literal.Len() > 0 {
		t.parts = append(t.parts, templatePart{literal: literal.String()})
	}

	return t, nil
}

func isParamChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// String returns the original template.
func (t *Template) String() string {
	return t.raw
}

// Params returns the parameter names in order of appearance.
func (t *Template) Params() []string {
	return t.paramNames
}

// Expand substitutes URL-escaped parameter values into the template.
// A parameter with no value (absent or nil) is an error.
func (t *Template) Expand(params map[string]any) (string, error) {
	var b strings.Builder
	for _, part := range t.parts {
		if part.param == "" {
			b.WriteString(part.literal)
			continue
		}
		v, ok := params[part.param]
		if !ok || v == nil {
			return "", fmt.Errorf("missing value for path parameter %q in %q", part.param, t.raw)
		}
		b.WriteString(url.PathEscape(fmt.Sprint(v)))
	}
	return b.String(), nil
}

// templates caches parsed templates (sync.Map[string, *Template]). Endpoint
// declarations are static, so the set of keys is bounded by the API size.
var templates sync.Map

// Cached parses path once and reuses the result on later calls.
func Cached(path string) (*Template, error) {
	if t, ok := templates.Load(path); ok {
		return t.(*Template), nil
	}
	t, err := ParseTemplate(path)
	if err != nil {
		return nil, err
	}
	actual, _ := templates.LoadOrStore(path, t)
	return actual.(*Template), nil
}

// ExpandPath expands a path template with params in one step.
func ExpandPath(path string, params map[string]any) (string, error) {
	t, err := Cached(path)
	if err != nil {
		return "", err
	}
	return t.Expand(params)
}
