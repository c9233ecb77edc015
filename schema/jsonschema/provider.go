// Package jsonschema provides a schema.Provider backed by
// github.com/google/jsonschema-go, for APIs whose schemas are already
// expressed as *jsonschema.Schema (for example schemas shared with an MCP
// server).
//
//	client, err := zodmon.New(endpoints,
//	    zodmon.WithBaseURL("https://api.example.com"),
//	    zodmon.WithTypeProvider(jsonschema.New()),
//	)
//
// Values are converted to their JSON form before validation, and successful
// results carry that JSON form with schema defaults applied to objects.
// Schemas of any other type are delegated to a fallback provider, which is
// schema.Default unless WithFallback says otherwise.
package jsonschema

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/richiexuetang/zodmon/schema"
)

// Option configures a Provider.
type Option func(*Provider)

// WithFallback sets the provider used for schemas that are not jsonschema values.
func WithFallback(p schema.Provider) Option {
	return func(pr *Provider) {
		pr.fallback = p
	}
}

// WithResolveOptions sets the options used when resolving schemas.
func WithResolveOptions(opts *jsonschema.ResolveOptions) Option {
	return func(pr *Provider) {
		pr.resolveOpts = opts
	}
}

// Provider validates values against *jsonschema.Schema and *jsonschema.Resolved.
// Resolved schemas are cached per schema pointer, so schemas must not be
// modified after first use.
type Provider struct {
	// resolved caches resolutions (sync.Map[*jsonschema.Schema, *jsonschema.Resolved])
	resolved    sync.Map
	resolveOpts *jsonschema.ResolveOptions
	fallback    schema.Provider
}

// New creates a Provider.
func New(opts ...Option) *Provider {
	p := &Provider{fallback: schema.Default}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Validate implements schema.Provider.
func (p *Provider) Validate(s, value any) schema.Result {
	return p.ValidateContext(context.Background(), s, value)
}

// ValidateContext implements schema.Provider.
func (p *Provider) ValidateContext(ctx context.Context, s, value any) schema.Result {
	if err := ctx.Err(); err != nil {
		return schema.Fail(err)
	}

	var rs *jsonschema.Resolved
	switch sc := s.(type) {
	case *jsonschema.Resolved:
		rs = sc
	case *jsonschema.Schema:
		if sc == nil {
			return schema.Ok(value)
		}
		var err error
		if rs, err = p.resolve(sc); err != nil {
			return schema.Fail(err)
		}
	default:
		return p.fallback.ValidateContext(ctx, s, value)
	}

	instance, err := toJSON(value)
	if err != nil {
		return schema.Fail(err)
	}
	if obj, ok := instance.(map[string]any); ok {
		if err := rs.ApplyDefaults(&obj); err != nil {
			return schema.Fail(fmt.Errorf("applying defaults: %w", err))
		}
		instance = obj
	}
	if err := rs.Validate(instance); err != nil {
		return schema.Fail(err)
	}
	return schema.Ok(instance)
}

func (p *Provider) resolve(s *jsonschema.Schema) (*jsonschema.Resolved, error) {
	if cached, ok := p.resolved.Load(s); ok {
		return cached.(*jsonschema.Resolved), nil
	}
	rs, err := s.Resolve(p.resolveOpts)
	if err != nil {
		return nil, fmt.Errorf("resolving schema: %w", err)
	}
	actual, _ := p.resolved.LoadOrStore(s, rs)
	return actual.(*jsonschema.Resolved), nil
}

// toJSON converts v into the value encoding/json would decode from its
// encoding.
func toJSON(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding value: %w", err)
	}
	return out, nil
}
