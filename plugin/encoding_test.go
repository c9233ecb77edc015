package plugin

import (
	"context"
	"mime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richiexuetang/zodmon/api"
	"github.com/richiexuetang/zodmon/transport"
	"github.com/richiexuetang/zodmon/zerrors"
)

func TestFormData(t *testing.T) {
	ep := &api.Endpoint{Method: api.MethodPost, Path: "/upload", RequestFormat: api.FormatFormData}

	in := &transport.Config{Body: map[string]any{"id": 4, "name": "post"}, Headers: map[string]string{"content-type": "application/json"}}
	out, err := FormData().Request(context.Background(), ep, in)
	require.NoError(t, err)

	ct, ok := out.Header("Content-Type")
	require.True(t, ok)
	mt, params, err := mime.ParseMediaType(ct)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mt)
	assert.NotEmpty(t, params["boundary"])
	assert.IsType(t, []byte(nil), out.Body)
	assert.Len(t, out.Headers, 1, "previous content type replaced")
	assert.IsType(t, map[string]any{}, in.Body, "input untouched")
}

func TestFormURL(t *testing.T) {
	ep := &api.Endpoint{Method: api.MethodPost, Path: "/login", RequestFormat: api.FormatFormURL}

	out, err := FormURL().Request(context.Background(), ep, &transport.Config{Body: map[string]string{"userName": "user", "password": "pw"}})
	require.NoError(t, err)
	assert.Equal(t, "password=pw&userName=user", out.Body)
	assert.Equal(t, "application/x-www-form-urlencoded", out.Headers["Content-Type"])
}

func TestEncoding_NonObjectBody(t *testing.T) {
	tests := []struct {
		name    string
		plugin  *Plugin
		body    any
		wantMsg string
	}{
		{"form-data nil", FormData(), nil, "multipart/form-data body must be an object"},
		{"form-data array", FormData(), []any{1, 2}, "multipart/form-data body must be an object"},
		{"form-url string", FormURL(), "a=1", "application/x-www-form-urlencoded body must be an object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &transport.Config{Body: tt.body}
			_, err := tt.plugin.Request(context.Background(), &api.Endpoint{}, cfg)

			var verr *zerrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantMsg, verr.Message)
			assert.Same(t, cfg, verr.Config)
		})
	}
}

func TestHeader(t *testing.T) {
	out, err := Header("Authorization", "Bearer x").Request(context.Background(), &api.Endpoint{}, &transport.Config{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Authorization": "Bearer x"}, out.Headers)
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format      api.RequestFormat
		wantName    string
		wantContent string
	}{
		{api.FormatFormData, FormDataName, ""},
		{api.FormatFormURL, FormURLName, ""},
		{api.FormatBinary, HeaderName, "application/octet-stream"},
		{api.FormatText, HeaderName, "text/plain"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			p := ForFormat(tt.format)
			require.NotNil(t, p)
			assert.Equal(t, tt.wantName, p.Name)
			if tt.wantContent == "" {
				return
			}
			out, err := p.Request(context.Background(), &api.Endpoint{}, &transport.Config{Body: []byte("x")})
			require.NoError(t, err)
			assert.Equal(t, tt.wantContent, out.Headers["Content-Type"])
		})
	}

	assert.Nil(t, ForFormat(api.FormatJSON))
	assert.Nil(t, ForFormat(""))
}
