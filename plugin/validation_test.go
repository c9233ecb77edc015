package plugin

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richiexuetang/zodmon/api"
	"github.com/richiexuetang/zodmon/schema"
	"github.com/richiexuetang/zodmon/transport"
	"github.com/richiexuetang/zodmon/zerrors"
)

func allOn() ValidationOptions {
	return ValidationOptions{ValidateRequest: true, ValidateResponse: true, TransformRequest: true, TransformResponse: true}
}

func TestSchemaValidation_Hooks(t *testing.T) {
	p := SchemaValidation(allOn())
	assert.Equal(t, ValidationName, p.Name)
	assert.NotNil(t, p.Request)
	assert.NotNil(t, p.Response)

	p = SchemaValidation(ValidationOptions{ValidateResponse: true})
	assert.Nil(t, p.Request)
	assert.NotNil(t, p.Response)

	p = SchemaValidation(ValidationOptions{})
	assert.Nil(t, p.Request)
	assert.Nil(t, p.Response)
}

func TestSchemaValidation_RequestParameters(t *testing.T) {
	ep := &api.Endpoint{
		Method: api.MethodPost,
		Path:   "/users/:id",
		Parameters: []api.Parameter{
			{Name: "id", Type: api.ParamPath, Schema: schema.Integer()},
			{Name: "limit", Type: api.ParamQuery, Schema: schema.Number()},
			{Name: "x-token", Type: api.ParamHeader, Schema: schema.String()},
			{Name: "body", Type: api.ParamBody, Schema: schema.Object(map[string]*schema.Schema{"name": schema.String()})},
		},
	}

	tests := []struct {
		name    string
		cfg     *transport.Config
		wantMsg string
	}{
		{"all valid", &transport.Config{
			Params:  map[string]any{"id": 7},
			Queries: map[string]any{"limit": 10},
			Headers: map[string]string{"X-Token": "t"},
			Body:    map[string]any{"name": "n"},
		}, ""},
		{"absent values are skipped", &transport.Config{}, ""},
		{"bad path", &transport.Config{Params: map[string]any{"id": "seven"}}, "Invalid Path parameter 'id'"},
		{"bad query", &transport.Config{Queries: map[string]any{"limit": "ten"}}, "Invalid Query parameter 'limit'"},
		{"bad body", &transport.Config{Body: map[string]any{"name": 1}}, "Invalid Body parameter 'body'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := SchemaValidation(allOn())
			out, err := p.Request(context.Background(), ep, tt.cfg)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				assert.NotNil(t, out)
				return
			}
			var verr *zerrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantMsg, verr.Message)
			assert.Same(t, tt.cfg, verr.Config)
			assert.NotNil(t, verr.Value)
			var issues schema.Issues
			assert.ErrorAs(t, err, &issues, "schema failure is the cause")
		})
	}
}

func TestSchemaValidation_SendDefaults(t *testing.T) {
	ep := &api.Endpoint{
		Method: api.MethodGet,
		Path:   "/items",
		Parameters: []api.Parameter{
			{Name: "limit", Type: api.ParamQuery, Schema: &schema.Schema{Type: "integer", Default: 20}},
		},
	}

	opts := allOn()
	out, err := SchemaValidation(opts).Request(context.Background(), ep, &transport.Config{})
	require.NoError(t, err)
	assert.NotContains(t, out.Queries, "limit")

	opts.SendDefaults = true
	out, err = SchemaValidation(opts).Request(context.Background(), ep, &transport.Config{})
	require.NoError(t, err)
	assert.Equal(t, int64(20), out.Queries["limit"])
}

func TestSchemaValidation_RequestTransform(t *testing.T) {
	combine := schema.Func(func(_ context.Context, v any) (any, error) {
		m := v.(map[string]any)
		return map[string]any{"name": m["first"].(string) + " " + m["last"].(string)}, nil
	})
	upper := schema.Func(func(_ context.Context, v any) (any, error) {
		return 42, nil
	})
	ep := &api.Endpoint{
		Method: api.MethodPost,
		Path:   "/users",
		Parameters: []api.Parameter{
			{Name: "body", Type: api.ParamBody, Schema: combine},
			{Name: "x-version", Type: api.ParamHeader, Schema: upper},
		},
	}
	in := &transport.Config{
		Body:    map[string]any{"first": "Ada", "last": "Lovelace"},
		Headers: map[string]string{"x-version": "1"},
	}

	out, err := SchemaValidation(allOn()).Request(context.Background(), ep, in)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ada Lovelace"}, out.Body)
	assert.Equal(t, "42", out.Headers["x-version"])
	assert.Equal(t, "1", in.Headers["x-version"], "input config untouched")

	opts := allOn()
	opts.TransformRequest = false
	out, err = SchemaValidation(opts).Request(context.Background(), ep, in)
	require.NoError(t, err)
	assert.Equal(t, in.Body, out.Body)
}

func TestSchemaValidation_Response(t *testing.T) {
	ep := &api.Endpoint{
		Method:   api.MethodGet,
		Path:     "/:id",
		Response: schema.Object(map[string]*schema.Schema{"id": schema.Number(), "name": schema.String(), "more": schema.String()}),
	}
	cfg := &transport.Config{Method: "get", URL: "/:id", Params: map[string]any{"id": 1}}

	t.Run("invalid payload", func(t *testing.T) {
		resp := transport.JSONResponse(http.StatusOK, map[string]any{"id": float64(1), "name": "test"})
		_, err := SchemaValidation(allOn()).Response(context.Background(), ep, cfg, resp)

		var verr *zerrors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Invalid response from endpoint 'get /:id'\n"+
			"status: 200 OK\n"+
			"cause:\n"+
			"✗ more: required property is missing\n"+
			"received:\n"+
			"{\n  \"id\": 1,\n  \"name\": \"test\"\n}", verr.Message)
		assert.Equal(t, resp.Data, verr.Value)
		assert.Same(t, cfg, verr.Config)
	})

	t.Run("non json content is not validated", func(t *testing.T) {
		resp := &transport.Response{Status: 200, Header: http.Header{"Content-Type": {"text/plain"}}, Data: "hello"}
		out, err := SchemaValidation(allOn()).Response(context.Background(), ep, cfg, resp)
		require.NoError(t, err)
		assert.Same(t, resp, out)
	})

	t.Run("transform replaces data", func(t *testing.T) {
		ep := &api.Endpoint{Method: api.MethodGet, Path: "/", Response: schema.Func(func(context.Context, any) (any, error) {
			return "transformed", nil
		})}
		resp := transport.JSONResponse(http.StatusOK, "raw")

		out, err := SchemaValidation(allOn()).Response(context.Background(), ep, cfg, resp)
		require.NoError(t, err)
		assert.Equal(t, "transformed", out.Data)
		assert.Equal(t, "raw", resp.Data)

		opts := allOn()
		opts.TransformResponse = false
		out, err = SchemaValidation(opts).Response(context.Background(), ep, cfg, resp)
		require.NoError(t, err)
		assert.Equal(t, "raw", out.Data)
	})

	t.Run("custom provider", func(t *testing.T) {
		failing := providerFunc(func(context.Context, any, any) schema.Result {
			return schema.Fail(errors.New("nope"))
		})
		opts := allOn()
		opts.Provider = failing
		_, err := SchemaValidation(opts).Response(context.Background(), ep, cfg, transport.JSONResponse(200, "x"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cause:\nnope\n")
	})
}

type providerFunc func(ctx context.Context, s, v any) schema.Result

func (f providerFunc) Validate(s, v any) schema.Result {
	return f(context.Background(), s, v)
}

func (f providerFunc) ValidateContext(ctx context.Context, s, v any) schema.Result {
	return f(ctx, s, v)
}
