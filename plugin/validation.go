package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/richiexuetang/zodmon/api"
	"github.com/richiexuetang/zodmon/schema"
	"github.com/richiexuetang/zodmon/transport"
	"github.com/richiexuetang/zodmon/zerrors"
)

// ValidationName is the name of the schema validation plugin.
const ValidationName = "schema-validation"

// ValidationOptions configures SchemaValidation.
type ValidationOptions struct {
	// Provider checks values against schemas. Nil uses schema.Default.
	Provider schema.Provider

	ValidateRequest   bool
	ValidateResponse  bool
	TransformRequest  bool
	TransformResponse bool

	// SendDefaults validates parameters even when no value was supplied, so
	// schema defaults are filled in.
	SendDefaults bool
}

// SchemaValidation returns the plugin that checks request parameters and
// JSON response bodies against the endpoint's declared schemas. Sides that
// are not validated have no hook.
func SchemaValidation(opts ValidationOptions) *Plugin {
	if opts.Provider == nil {
		opts.Provider = schema.Default
	}
	v := &validation{opts: opts}

	p := &Plugin{Name: ValidationName}
	if opts.ValidateRequest {
		p.Request = v.request
	}
	if opts.ValidateResponse {
		p.Response = v.response
	}
	return p
}

type validation struct {
	opts ValidationOptions
}

func (v *validation) request(ctx context.Context, ep *api.Endpoint, cfg *transport.Config) (*transport.Config, error) {
	if len(ep.Parameters) == 0 {
		return cfg, nil
	}

	conf := cfg.Clone()
	if conf.Queries == nil {
		conf.Queries = make(map[string]any)
	}
	if conf.Headers == nil {
		conf.Headers = make(map[string]string)
	}
	if conf.Params == nil {
		conf.Params = make(map[string]any)
	}

	for _, param := range ep.Parameters {
		value, defined := paramValue(conf, param)
		if !defined && !v.opts.SendDefaults {
			continue
		}

		res := v.opts.Provider.ValidateContext(ctx, param.Schema, value)
		if !res.Success() {
			return nil, &zerrors.ValidationError{
				Message: fmt.Sprintf("Invalid %s parameter '%s'", param.Type, param.Name),
				Config:  cfg,
				Value:   value,
				Cause:   res.Err,
			}
		}
		if v.opts.TransformRequest {
			setParamValue(conf, param, res.Data)
		}
	}
	return conf, nil
}

// paramValue reads the slot a parameter lives in. A nil value counts as absent.
func paramValue(cfg *transport.Config, p api.Parameter) (any, bool) {
	switch p.Type {
	case api.ParamQuery:
		v := cfg.Queries[p.Name]
		return v, v != nil
	case api.ParamBody:
		return cfg.Body, cfg.Body != nil
	case api.ParamHeader:
		if v, ok := cfg.Header(p.Name); ok {
			return v, true
		}
		return nil, false
	case api.ParamPath:
		v := cfg.Params[p.Name]
		return v, v != nil
	}
	return nil, false
}

// setParamValue writes value into the parameter's slot. cfg maps must be
// owned by the caller.
func setParamValue(cfg *transport.Config, p api.Parameter, value any) {
	switch p.Type {
	case api.ParamQuery:
		cfg.Queries[p.Name] = value
	case api.ParamBody:
		cfg.Body = value
	case api.ParamHeader:
		for k := range cfg.Headers {
			if strings.EqualFold(k, p.Name) {
				delete(cfg.Headers, k)
			}
		}
		if value != nil {
			cfg.Headers[p.Name] = headerString(value)
		}
	case api.ParamPath:
		cfg.Params[p.Name] = value
	}
}

func headerString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (v *validation) response(ctx context.Context, ep *api.Endpoint, cfg *transport.Config, resp *transport.Response) (*transport.Response, error) {
	if resp == nil || !strings.Contains(resp.ContentType(), "application/json") {
		return resp, nil
	}

	res := v.opts.Provider.ValidateContext(ctx, ep.Response, resp.Data)
	if !res.Success() {
		return nil, &zerrors.ValidationError{
			Message: fmt.Sprintf("Invalid response from endpoint '%s %s'\nstatus: %d %s\ncause:\n%s\nreceived:\n%s",
				ep.Method, ep.Path, resp.Status, resp.StatusText, res.Err.Error(), prettyJSON(resp.Data)),
			Config: cfg,
			Value:  resp.Data,
			Cause:  res.Err,
		}
	}

	if !v.opts.TransformResponse {
		return resp, nil
	}
	out := resp.Clone()
	out.Data = res.Data
	return out, nil
}

func prettyJSON(v any) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}
