package api

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DeriveAlias builds a camelCase name for an endpoint from its method and
// path: "get /users/:id/posts" becomes "getUsersByIdPosts".
// A declared alias is always preferred over the derived one.
func DeriveAlias(ep *Endpoint) string {
	if ep.Alias != "" {
		return ep.Alias
	}

	// Casers are stateful, so each call gets its own.
	titleCaser := cases.Title(language.English, cases.NoLower)

	var b strings.Builder
	b.WriteString(strings.ToLower(string(ep.Method)))
	for _, segment := range strings.Split(ep.Path, "/") {
		if segment == "" {
			continue
		}
		if strings.HasPrefix(segment, ":") {
			b.WriteString("By")
			segment = segment[1:]
		}
		for _, word := range splitWords(segment) {
			b.WriteString(titleCaser.String(word))
		}
	}
	return b.String()
}

// splitWords splits on any rune that cannot appear in a Go identifier.
func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
