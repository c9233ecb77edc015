package api

import "github.com/richiexuetang/zodmon/internal/pathutil"

// Template is a parsed endpoint path such as "/users/:id/posts/:postId".
type Template = pathutil.Template

// ParseTemplate parses a path template.
//
// Returns an error if the template is empty, contains a ':' that is not
// followed by a parameter name, or repeats a parameter name.
func ParseTemplate(path string) (*Template, error) {
	return pathutil.ParseTemplate(path)
}

// PathParams returns the parameter names of a path template, or nil when the
// template is malformed.
func PathParams(path string) []string {
	t, err := pathutil.Cached(path)
	if err != nil {
		return nil
	}
	return t.Params()
}
