package plugin

import (
	"context"

	"github.com/richiexuetang/zodmon/api"
	"github.com/richiexuetang/zodmon/internal/formenc"
	"github.com/richiexuetang/zodmon/transport"
	"github.com/richiexuetang/zodmon/zerrors"
)

// Names of the built-in encoding plugins.
const (
	FormDataName = "form-data"
	FormURLName  = "form-url"
	HeaderName   = "header"
)

// FormData returns the plugin that encodes an object body as
// multipart/form-data. Non-object bodies fail with a *zerrors.ValidationError.
func FormData() *Plugin {
	return &Plugin{
		Name: FormDataName,
		Request: func(_ context.Context, _ *api.Endpoint, cfg *transport.Config) (*transport.Config, error) {
			fields, ok := formenc.Fields(cfg.Body)
			if !ok {
				return nil, &zerrors.ValidationError{
					Message: "multipart/form-data body must be an object",
					Config:  cfg,
					Value:   cfg.Body,
				}
			}
			body, contentType, err := formenc.Multipart(fields)
			if err != nil {
				return nil, &zerrors.ValidationError{
					Message: "multipart/form-data body could not be encoded",
					Config:  cfg,
					Value:   cfg.Body,
					Cause:   err,
				}
			}
			out := cfg.SetHeader("Content-Type", contentType)
			out.Body = body
			return out, nil
		},
	}
}

// FormURL returns the plugin that encodes an object body as
// application/x-www-form-urlencoded.
func FormURL() *Plugin {
	return &Plugin{
		Name: FormURLName,
		Request: func(_ context.Context, _ *api.Endpoint, cfg *transport.Config) (*transport.Config, error) {
			fields, ok := formenc.Fields(cfg.Body)
			if !ok {
				return nil, &zerrors.ValidationError{
					Message: "application/x-www-form-urlencoded body must be an object",
					Config:  cfg,
					Value:   cfg.Body,
				}
			}
			body, err := formenc.URLEncode(fields)
			if err != nil {
				return nil, &zerrors.ValidationError{
					Message: "application/x-www-form-urlencoded body could not be encoded",
					Config:  cfg,
					Value:   cfg.Body,
					Cause:   err,
				}
			}
			out := cfg.SetHeader("Content-Type", "application/x-www-form-urlencoded")
			out.Body = body
			return out, nil
		},
	}
}

// Header returns a plugin that sets one request header.
func Header(key, value string) *Plugin {
	return &Plugin{
		Name: HeaderName,
		Request: func(_ context.Context, _ *api.Endpoint, cfg *transport.Config) (*transport.Config, error) {
			return cfg.SetHeader(key, value), nil
		},
	}
}

// ForFormat returns the encoding plugin for a request format, or nil for
// JSON, which the transport encodes itself.
func ForFormat(format api.RequestFormat) *Plugin {
	switch format {
	case api.FormatFormData:
		return FormData()
	case api.FormatFormURL:
		return FormURL()
	case api.FormatBinary:
		return Header("Content-Type", "application/octet-stream")
	case api.FormatText:
		return Header("Content-Type", "text/plain")
	}
	return nil
}
