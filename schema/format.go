package schema

import (
	"net/url"
	"regexp"
	"time"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	uuidRegex  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// checkFormat validates s against a known string format and returns the
// format's display name. Unknown formats always pass.
func checkFormat(format, s string) (string, bool) {
	switch format {
	case "email":
		return "email address", emailRegex.MatchString(s)
	case "uuid":
		return "UUID", uuidRegex.MatchString(s)
	case "uri":
		u, err := url.Parse(s)
		return "URI", err == nil && u.Scheme != ""
	case "uri-reference":
		_, err := url.Parse(s)
		return "URI reference", err == nil
	case "date":
		_, err := time.Parse(time.DateOnly, s)
		return "date (expected YYYY-MM-DD)", err == nil
	case "date-time":
		_, err := time.Parse(time.RFC3339, s)
		return "date-time (expected RFC 3339)", err == nil
	}
	return format, true
}
