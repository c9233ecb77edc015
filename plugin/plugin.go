// Package plugin implements the middleware engine that every call passes
// through, and the built-in plugins the client installs.
//
// # Ordering
//
// Each registration has a Priority. The request phase runs High, then Normal,
// then Low registrations, each tier in registration order. The response phase
// walks registrations in reverse registration order and runs Low, then Normal,
// then High tiers, so the plugins registered last see the response first and
// built-in High plugins such as schema validation see it last.
//
// # Response and error hooks
//
// The response phase threads a (response, error) pair through the chain.
// While there is no error, each plugin's Response hook may replace the
// response or fail. Once there is an error, each plugin's Error hook may
// recover it into a response or return a new error. A plugin's Error hook
// never sees a failure raised by its own Response hook.
//
// # Filters
//
// A Filter restricts a registration to matching endpoints. Every set field
// must match; an unset field matches anything. See Matcher for the rules.
package plugin

import (
	"context"
	"fmt"
	"regexp"

	"github.com/richiexuetang/zodmon/api"
	"github.com/richiexuetang/zodmon/transport"
)

// Priority selects the tier a plugin runs in.
type Priority int

// Priorities. The zero value is Normal.
const (
	Normal Priority = iota
	High
	Low
)

var (
	requestOrder  = []Priority{High, Normal, Low}
	responseOrder = []Priority{Low, Normal, High}
)

// String returns "high", "normal" or "low".
func (p Priority) String() string {
	switch p {
	case High:
		return "high"
	case Low:
		return "low"
	case Normal:
		return "normal"
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// ParsePriority parses "high", "normal" or "low". The empty string is Normal.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "high":
		return High, nil
	case "normal", "":
		return Normal, nil
	case "low":
		return Low, nil
	}
	return Normal, fmt.Errorf("invalid plugin priority %q", s)
}

// RequestHook transforms the request config before it is sent.
type RequestHook func(ctx context.Context, ep *api.Endpoint, cfg *transport.Config) (*transport.Config, error)

// ResponseHook transforms a successful response.
type ResponseHook func(ctx context.Context, ep *api.Endpoint, cfg *transport.Config, resp *transport.Response) (*transport.Response, error)

// ErrorHook handles a failure from the transport or an earlier plugin. It
// recovers by returning a response and a nil error.
type ErrorHook func(ctx context.Context, ep *api.Endpoint, cfg *transport.Config, err error) (*transport.Response, error)

// Plugin is a set of optional hooks. Hooks must not modify their inputs.
type Plugin struct {
	// Name identifies the plugin in logs and introspection.
	Name     string
	Request  RequestHook
	Response ResponseHook
	Error    ErrorHook
}

// ID identifies a registration. IDs are never reused, even after Eject.
type ID int

// Matcher matches one endpoint field. The zero Matcher is unset.
//
//   - Exact matches a non-empty field equal to the value.
//   - Pattern matches a non-empty field the expression matches.
//   - MatchFunc calls the function with the field, "" when absent.
type Matcher struct {
	set   bool
	exact string
	re    *regexp.Regexp
	fn    func(string) bool
}

// Exact matches fields equal to s.
func Exact(s string) Matcher {
	return Matcher{set: true, exact: s}
}

// Pattern matches fields matched by re.
func Pattern(re *regexp.Regexp) Matcher {
	return Matcher{set: true, re: re}
}

// MatchFunc matches fields for which fn returns true.
func MatchFunc(fn func(string) bool) Matcher {
	return Matcher{set: true, fn: fn}
}

// IsSet reports whether m constrains anything.
func (m Matcher) IsSet() bool {
	return m.set
}

// Match reports whether value satisfies m. An unset Matcher matches anything.
func (m Matcher) Match(value string) bool {
	switch {
	case !m.set:
		return true
	case m.fn != nil:
		return m.fn(value)
	case m.re != nil:
		return value != "" && m.re.MatchString(value)
	}
	return value != "" && value == m.exact
}

// String describes the matcher for introspection.
func (m Matcher) String() string {
	switch {
	case !m.set:
		return "*"
	case m.fn != nil:
		return "func"
	case m.re != nil:
		return "/" + m.re.String() + "/"
	}
	return m.exact
}

// Filter selects the endpoints a registration applies to.
type Filter struct {
	Method Matcher
	Path   Matcher
	Alias  Matcher
}

// Matches reports whether ep satisfies every set field of f.
func (f Filter) Matches(ep *api.Endpoint) bool {
	return f.Method.Match(string(ep.Method)) &&
		f.Path.Match(ep.Path) &&
		f.Alias.Match(ep.Alias)
}

// ForAlias returns a filter matching the endpoint with alias.
func ForAlias(alias string) Filter {
	return Filter{Alias: Exact(alias)}
}

// ForEndpoint returns a filter matching method and path exactly.
func ForEndpoint(method api.Method, path string) Filter {
	return Filter{Method: Exact(string(method)), Path: Exact(path)}
}

// ForDeclared returns a filter matching ep's method, path and, when declared,
// alias.
func ForDeclared(ep *api.Endpoint) Filter {
	f := ForEndpoint(ep.Method, ep.Path)
	if ep.Alias != "" {
		f.Alias = Exact(ep.Alias)
	}
	return f
}
