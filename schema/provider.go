// Package schema defines the schema capability consumed by the client and
// provides the built-in implementation.
//
// A Provider takes an opaque schema value and a Go value and reports either
// success with the (possibly transformed) data, or failure with an error. The
// client never inspects schemas itself; it only hands them to its Provider.
//
// # Built-in provider
//
// The Builtin provider understands two kinds of schema:
//
//   - *Schema, a JSON Schema subset. Values are normalized to the JSON data
//     model, absent values are filled from defaults, and the result is checked.
//   - Parser implementations such as Func, which validate and transform in
//     arbitrary Go code.
//
// A nil schema accepts any value unchanged.
//
//	res := schema.Default.Validate(schema.Object(map[string]*schema.Schema{
//	    "id": schema.Number(),
//	}), map[string]any{"id": 7})
//	if !res.Success() {
//	    fmt.Println(res.Err)
//	}
package schema

import (
	"context"
	"fmt"
)

// Result is the outcome of one validation.
type Result struct {
	// Data is the validated, possibly transformed value. Only set on success.
	Data any
	// Err describes the failure. Nil on success.
	Err error
}

// Success reports whether validation passed.
func (r Result) Success() bool {
	return r.Err == nil
}

// Ok returns a successful Result carrying data.
func Ok(data any) Result {
	return Result{Data: data}
}

// Fail returns a failed Result.
func Fail(err error) Result {
	return Result{Err: err}
}

// Provider validates and transforms values against schemas.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// Validate checks value against schema synchronously.
	Validate(schema, value any) Result

	// ValidateContext is Validate for schemas whose checks may block, such as
	// parsers that consult a remote service. It must honor ctx cancellation.
	ValidateContext(ctx context.Context, schema, value any) Result
}

// Parser is a schema implemented in Go code.
type Parser interface {
	Parse(ctx context.Context, value any) (any, error)
}

// Func adapts a function to the Parser interface.
//
//	fullName := schema.Func(func(_ context.Context, v any) (any, error) {
//	    m, ok := v.(map[string]any)
//	    if !ok {
//	        return nil, errors.New("expected an object")
//	    }
//	    return map[string]any{"name": fmt.Sprintf("%v %v", m["first"], m["last"])}, nil
//	})
type Func func(ctx context.Context, value any) (any, error)

// Parse calls f.
func (f Func) Parse(ctx context.Context, value any) (any, error) {
	return f(ctx, value)
}

// UnsupportedSchemaError is returned when a provider is given a schema value
// it does not understand.
type UnsupportedSchemaError struct {
	Schema any
}

// Error returns a human-readable error message.
func (e *UnsupportedSchemaError) Error() string {
	return fmt.Sprintf("unsupported schema type %T", e.Schema)
}

// BuiltinOption configures a Builtin provider.
type BuiltinOption func(*Builtin)

// WithRedactedValues keeps offending values out of issue messages. Use it when
// payloads may carry credentials.
func WithRedactedValues() BuiltinOption {
	return func(b *Builtin) {
		b.v.redactValues = true
	}
}

// Builtin is the default Provider.
type Builtin struct {
	v *validator
}

// NewBuiltin creates a Builtin provider.
func NewBuiltin(opts ...BuiltinOption) *Builtin {
	b := &Builtin{v: &validator{}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Default is the provider used when none is configured.
var Default Provider = NewBuiltin()

// Validate implements Provider.
func (b *Builtin) Validate(schema, value any) Result {
	return b.ValidateContext(context.Background(), schema, value)
}

// ValidateContext implements Provider.
func (b *Builtin) ValidateContext(ctx context.Context, schema, value any) Result {
	if err := ctx.Err(); err != nil {
		return Fail(err)
	}

	switch s := schema.(type) {
	case nil:
		return Ok(value)
	case *Schema:
		if s == nil {
			return Ok(value)
		}
		return b.validateSchema(s, value)
	case Schema:
		return b.validateSchema(&s, value)
	case Parser:
		data, err := s.Parse(ctx, value)
		if err != nil {
			return Fail(err)
		}
		return Ok(data)
	case func(context.Context, any) (any, error):
		return b.ValidateContext(ctx, Func(s), value)
	}
	return Fail(&UnsupportedSchemaError{Schema: schema})
}

func (b *Builtin) validateSchema(s *Schema, value any) Result {
	data, filled := applyDefaults(Normalize(value), s)
	if issues := b.v.validate(data, s, ""); issues.HasErrors() {
		return Fail(issues.Errors())
	}
	if filled {
		return Ok(data)
	}
	return Ok(value)
}
