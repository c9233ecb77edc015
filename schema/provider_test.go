package schema

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin_NilSchemaPassesThrough(t *testing.T) {
	value := map[string]any{"x": 1}
	res := Default.Validate(nil, value)
	require.True(t, res.Success())
	assert.Equal(t, value, res.Data)

	var typedNil *Schema
	res = Default.Validate(typedNil, "v")
	require.True(t, res.Success())
	assert.Equal(t, "v", res.Data)
}

func TestBuiltin_ValidDataIsReturnedUnchanged(t *testing.T) {
	s := Object(map[string]*Schema{"id": Number(), "name": String()})
	value := map[string]any{"id": 7, "name": "test"}

	first := Default.Validate(s, value)
	require.True(t, first.Success())
	assert.Equal(t, value, first.Data)

	second := Default.Validate(s, first.Data)
	require.True(t, second.Success())
	assert.Equal(t, first.Data, second.Data)
}

func TestBuiltin_Failure(t *testing.T) {
	s := Object(map[string]*Schema{"id": Number()})
	res := Default.Validate(s, map[string]any{"id": "7"})
	require.False(t, res.Success())

	var issues Issues
	require.ErrorAs(t, res.Err, &issues)
	assert.Equal(t, "id", issues[0].Path)
	assert.Nil(t, res.Data)
}

func TestBuiltin_WarningsDoNotFail(t *testing.T) {
	res := Default.Validate(&Schema{Type: "string", Format: "email"}, "nope")
	assert.True(t, res.Success())
}

func TestBuiltin_Defaults(t *testing.T) {
	s := &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"limit": {Type: "integer", Default: 20},
			"sort":  {Type: "string", Default: "asc"},
		},
		Required: []string{"limit"},
	}

	res := Default.Validate(s, map[string]any{"sort": "desc"})
	require.True(t, res.Success(), "error: %v", res.Err)
	assert.Equal(t, map[string]any{"limit": int64(20), "sort": "desc"}, res.Data)

	res = Default.Validate(&Schema{Type: "string", Default: "x"}, nil)
	require.True(t, res.Success())
	assert.Equal(t, "x", res.Data)
}

func TestBuiltin_Structs(t *testing.T) {
	type user struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	s := Object(map[string]*Schema{"id": Integer(), "name": String()})

	res := Default.Validate(s, user{ID: 1, Name: "a"})
	require.True(t, res.Success(), "error: %v", res.Err)
	assert.Equal(t, user{ID: 1, Name: "a"}, res.Data)

	res = Default.Validate(s, &user{ID: 1})
	assert.True(t, res.Success(), "empty name is still a string")
}

func TestBuiltin_Func(t *testing.T) {
	combine := Func(func(_ context.Context, v any) (any, error) {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, errors.New("expected an object")
		}
		return map[string]any{"name": m["first"].(string) + " " + m["last"].(string)}, nil
	})

	res := Default.Validate(combine, map[string]any{"first": "Ada", "last": "Lovelace"})
	require.True(t, res.Success())
	assert.Equal(t, map[string]any{"name": "Ada Lovelace"}, res.Data)

	res = Default.Validate(combine, 3)
	assert.EqualError(t, res.Err, "expected an object")

	plain := func(_ context.Context, v any) (any, error) { return v, nil }
	assert.True(t, Default.Validate(plain, 1).Success())
}

func TestBuiltin_Unsupported(t *testing.T) {
	res := Default.Validate(42, "x")
	var unsupported *UnsupportedSchemaError
	require.ErrorAs(t, res.Err, &unsupported)
	assert.Equal(t, "unsupported schema type int", res.Err.Error())
}

func TestBuiltin_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := Default.ValidateContext(ctx, String(), "x")
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestBuiltin_RedactedOption(t *testing.T) {
	p := NewBuiltin(WithRedactedValues())
	res := p.Validate(&Schema{Enum: []any{"a"}}, "hunter2")
	require.Error(t, res.Err)
	assert.NotContains(t, res.Err.Error(), "hunter2")
}

func TestNormalize(t *testing.T) {
	type level int
	type named string
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"int", 3, int64(3)},
		{"named int", level(2), int64(2)},
		{"uint8", uint8(4), uint64(4)},
		{"float32", float32(1.5), 1.5},
		{"named string", named("x"), "x"},
		{"bytes", []byte("raw"), "raw"},
		{"typed slice", []string{"a", "b"}, []any{"a", "b"}},
		{"typed map", map[string]int{"a": 1}, map[string]any{"a": int64(1)}},
		{"pointer", ptr(5), int64(5)},
		{"nil pointer", (*int)(nil), nil},
		{"marshaler", when, "2024-01-02T03:04:05Z"},
		{"struct", struct {
			A int `json:"a"`
		}{A: 1}, map[string]any{"a": float64(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestObjectRequiresAllProperties(t *testing.T) {
	s := Object(map[string]*Schema{"b": String(), "a": String()})
	assert.Equal(t, []string{"a", "b"}, s.Required)

	opt := Optional(String())
	assert.True(t, opt.IsNullable())
	assert.False(t, String().IsNullable())
}
