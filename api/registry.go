package api

import (
	"fmt"
	"slices"

	"github.com/richiexuetang/zodmon/zerrors"
)

// Registry is an immutable, indexed set of endpoints.
//
// A Registry is only obtainable through NewRegistry, so holding one means the
// endpoint list passed every construction check. It is safe for concurrent use.
type Registry struct {
	endpoints []Endpoint
	byKey     map[string]*Endpoint
	byAlias   map[string]*Endpoint
	templates map[string]*Template
}

// NewRegistry validates endpoints and builds the lookup indices.
//
// Every failure is a *zerrors.ConfigError. Duplicate (method, path) pairs
// report "Duplicate path '<method> <path>'"; duplicate aliases report
// "Duplicate alias '<alias>'".
func NewRegistry(endpoints []Endpoint) (*Registry, error) {
	if endpoints == nil {
		return nil, &zerrors.ConfigError{Option: "endpoints", Message: "missing api description"}
	}

	r := &Registry{
		endpoints: make([]Endpoint, len(endpoints)),
		byKey:     make(map[string]*Endpoint, len(endpoints)),
		byAlias:   make(map[string]*Endpoint),
		templates: make(map[string]*Template, len(endpoints)),
	}
	for i := range endpoints {
		r.endpoints[i] = endpoints[i].clone()
	}

	for i := range r.endpoints {
		ep := &r.endpoints[i]
		if err := checkEndpoint(ep); err != nil {
			return nil, err
		}

		key := ep.Key()
		if _, dup := r.byKey[key]; dup {
			return nil, &zerrors.ConfigError{
				Option:  "endpoints",
				Message: fmt.Sprintf("Duplicate path '%s'", key),
			}
		}
		r.byKey[key] = ep

		if ep.Alias != "" {
			if _, dup := r.byAlias[ep.Alias]; dup {
				return nil, &zerrors.ConfigError{
					Option:  "endpoints",
					Message: fmt.Sprintf("Duplicate alias '%s'", ep.Alias),
				}
			}
			r.byAlias[ep.Alias] = ep
		}

		if _, ok := r.templates[ep.Path]; !ok {
			tmpl, err := ParseTemplate(ep.Path)
			if err != nil {
				return nil, &zerrors.ConfigError{Option: "endpoints", Value: key, Cause: err}
			}
			r.templates[ep.Path] = tmpl
		}
	}

	return r, nil
}

// Check reports the first construction error for endpoints, without keeping
// the resulting registry.
func Check(endpoints []Endpoint) error {
	_, err := NewRegistry(endpoints)
	return err
}

func checkEndpoint(ep *Endpoint) error {
	if !ep.Method.Valid() {
		return &zerrors.ConfigError{Option: "endpoints", Value: string(ep.Method), Message: "unsupported method for " + ep.Path}
	}
	if ep.Path == "" {
		return &zerrors.ConfigError{Option: "endpoints", Message: "empty path for " + string(ep.Method) + " endpoint"}
	}
	if !ep.RequestFormat.Valid() {
		return &zerrors.ConfigError{Option: "endpoints", Value: string(ep.RequestFormat), Message: "unsupported request format for " + ep.Key()}
	}
	for _, p := range ep.Parameters {
		if !p.Type.Valid() {
			return &zerrors.ConfigError{
				Option:  "endpoints",
				Value:   string(p.Type),
				Message: fmt.Sprintf("unsupported parameter type for '%s' in %s", p.Name, ep.Key()),
			}
		}
	}
	return nil
}

// Endpoints returns a copy of the registered endpoints in declaration order.
func (r *Registry) Endpoints() []Endpoint {
	out := make([]Endpoint, len(r.endpoints))
	for i := range r.endpoints {
		out[i] = r.endpoints[i].clone()
	}
	return out
}

// Len returns the number of registered endpoints.
func (r *Registry) Len() int {
	return len(r.endpoints)
}

// FindByMethodAndPath returns the endpoint declared with exactly this method
// and path template, or nil. The returned endpoint must not be modified.
func (r *Registry) FindByMethodAndPath(method Method, path string) *Endpoint {
	return r.byKey[Key(method, path)]
}

// FindByAlias returns the endpoint declared with alias, or nil.
// The returned endpoint must not be modified.
func (r *Registry) FindByAlias(alias string) *Endpoint {
	if alias == "" {
		return nil
	}
	return r.byAlias[alias]
}

// Aliases returns the declared aliases in declaration order.
func (r *Registry) Aliases() []string {
	aliases := make([]string, 0, len(r.byAlias))
	for i := range r.endpoints {
		if a := r.endpoints[i].Alias; a != "" {
			aliases = append(aliases, a)
		}
	}
	return aliases
}

// clone copies ep without sharing its parameter and error slices.
// Schemas are shared.
func (e *Endpoint) clone() Endpoint {
	out := *e
	out.Parameters = slices.Clone(e.Parameters)
	out.Errors = slices.Clone(e.Errors)
	return out
}

// Template returns the parsed path template of a registered path.
func (r *Registry) Template(path string) (*Template, bool) {
	t, ok := r.templates[path]
	return t, ok
}

// FindErrorsByPath returns the error descriptors of the endpoint that apply to
// status (see Endpoint.ErrorsFor). It returns nil when the endpoint is unknown.
func (r *Registry) FindErrorsByPath(method Method, path string, status int) []ErrorDescriptor {
	ep := r.FindByMethodAndPath(method, path)
	if ep == nil {
		return nil
	}
	return ep.ErrorsFor(status)
}

// FindErrorsByAlias is FindErrorsByPath keyed by alias.
func (r *Registry) FindErrorsByAlias(alias string, status int) []ErrorDescriptor {
	ep := r.FindByAlias(alias)
	if ep == nil {
		return nil
	}
	return ep.ErrorsFor(status)
}
