package api

import (
	"sort"
	"strings"
)

// Builder accumulates endpoint declarations and checks them on Build.
//
//	endpoints, err := api.NewBuilder().
//	    Add(api.Endpoint{Method: api.MethodGet, Path: "/users", Alias: "listUsers"}).
//	    Add(api.Endpoint{Method: api.MethodGet, Path: "/users/:id", Alias: "getUser"}).
//	    Build()
type Builder struct {
	endpoints []Endpoint
}

// NewBuilder starts a Builder, optionally seeded with endpoints.
func NewBuilder(endpoints ...Endpoint) *Builder {
	return &Builder{endpoints: append([]Endpoint(nil), endpoints...)}
}

// Add appends an endpoint declaration.
func (b *Builder) Add(ep Endpoint) *Builder {
	b.endpoints = append(b.endpoints, ep)
	return b
}

// Build returns the accumulated endpoints, or the first construction error.
func (b *Builder) Build() ([]Endpoint, error) {
	out := append(make([]Endpoint, 0, len(b.endpoints)), b.endpoints...)
	if err := Check(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Prefix returns a copy of endpoints with prefix prepended to every path.
// Aliases are left untouched.
func Prefix(prefix string, endpoints []Endpoint) []Endpoint {
	prefix = strings.TrimSuffix(prefix, "/")
	out := make([]Endpoint, len(endpoints))
	for i, ep := range endpoints {
		ep.Path = prefix + ep.Path
		out[i] = ep
	}
	return out
}

// Merge flattens several APIs, keyed by path prefix, into one endpoint list.
// Prefixes are applied in lexical order so the result is deterministic.
func Merge(apis map[string][]Endpoint) []Endpoint {
	prefixes := make([]string, 0, len(apis))
	for prefix := range apis {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	var out []Endpoint
	for _, prefix := range prefixes {
		out = append(out, Prefix(prefix, apis[prefix])...)
	}
	return out
}

// Params collects parameter declarations for an Endpoint literal.
//
//	Parameters: api.Params(
//	    api.PathParam("id", schema.Integer()),
//	    api.QueryParam("expand", schema.Optional(schema.Boolean())),
//	),
func Params(params ...Parameter) []Parameter {
	return append([]Parameter(nil), params...)
}

// PathParam declares a path segment parameter.
func PathParam(name string, s any) Parameter {
	return Parameter{Name: name, Type: ParamPath, Schema: s}
}

// QueryParam declares a query string parameter.
func QueryParam(name string, s any) Parameter {
	return Parameter{Name: name, Type: ParamQuery, Schema: s}
}

// HeaderParam declares a header parameter.
func HeaderParam(name string, s any) Parameter {
	return Parameter{Name: name, Type: ParamHeader, Schema: s}
}

// BodyParam declares the request body.
func BodyParam(name string, s any) Parameter {
	return Parameter{Name: name, Type: ParamBody, Schema: s}
}

// Errors collects error declarations for an Endpoint literal.
func Errors(errs ...ErrorDescriptor) []ErrorDescriptor {
	return append([]ErrorDescriptor(nil), errs...)
}

// ErrorFor declares the payload schema of an exact status.
func ErrorFor(code int, s any) ErrorDescriptor {
	return ErrorDescriptor{Status: StatusCode(code), Schema: s}
}

// DefaultError declares the payload schema used when no exact status matches.
func DefaultError(s any) ErrorDescriptor {
	return ErrorDescriptor{Status: StatusDefault, Schema: s}
}
