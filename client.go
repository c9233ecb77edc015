package zodmon

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"github.com/richiexuetang/zodmon/api"
	"github.com/richiexuetang/zodmon/logging"
	"github.com/richiexuetang/zodmon/plugin"
	"github.com/richiexuetang/zodmon/schema"
	"github.com/richiexuetang/zodmon/transport"
	"github.com/richiexuetang/zodmon/zerrors"
)

// VerbFunc calls the endpoint declared for a fixed method at path.
type VerbFunc func(ctx context.Context, path string, cfg *transport.Config) (any, error)

// AliasFunc calls the endpoint bound to a fixed alias.
type AliasFunc func(ctx context.Context, cfg *transport.Config) (any, error)

// Client routes calls to declared endpoints through the plugin pipeline.
//
// A Client is safe for concurrent use. Plugins may be registered and ejected
// while calls are in flight; a call sees the registrations present when each
// of its phases starts.
type Client struct {
	endpoints *api.Registry
	plugins   *plugin.Registry
	fetcher   transport.Fetcher
	provider  schema.Provider
	headers   map[string]string
	logger    logging.Logger

	validate     ValidateMode
	transform    TransformMode
	sendDefaults bool

	// Dispatch tables built once by New
	verbs   map[api.Method]VerbFunc
	aliases map[string]AliasFunc
}

// New builds a Client for endpoints.
//
// The base URL comes from WithBaseURL, unless WithFetcher supplies a transport
// that needs none. Every failure is a *zerrors.ConfigError, including
// duplicate endpoint declarations.
func New(endpoints []api.Endpoint, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	registry, err := api.NewRegistry(endpoints)
	if err != nil {
		return nil, err
	}

	fetcher := cfg.fetcher
	if fetcher == nil {
		if cfg.baseURL == "" {
			return nil, &zerrors.ConfigError{Option: "baseURL", Message: "a base URL or a fetcher is required"}
		}
		fetcherOpts := []transport.HTTPFetcherOption{transport.WithUserAgent(UserAgent())}
		if cfg.httpClient != nil {
			fetcherOpts = append(fetcherOpts, transport.WithClient(cfg.httpClient))
		}
		fetcher = transport.NewHTTPFetcher(cfg.baseURL, fetcherOpts...)
	}

	c := &Client{
		endpoints:    registry,
		plugins:      plugin.NewRegistry(cfg.logger),
		fetcher:      fetcher,
		provider:     cfg.provider,
		headers:      cfg.headers,
		logger:       cfg.logger,
		validate:     cfg.validate,
		transform:    cfg.transform,
		sendDefaults: cfg.sendDefaults,
	}

	if err := c.initPlugins(); err != nil {
		return nil, err
	}
	c.buildDispatch()

	c.logger.Debug("client ready", "endpoints", registry.Len(), "validate", cfg.validate.String(), "transform", cfg.transform.String())
	return c, nil
}

// NewWithBaseURL is New with a required base URL.
func NewWithBaseURL(baseURL string, endpoints []api.Endpoint, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, &zerrors.ConfigError{Option: "baseURL", Message: "base URL cannot be empty"}
	}
	return New(endpoints, append([]Option{WithBaseURL(baseURL)}, opts...)...)
}

// initPlugins installs one encoding plugin per endpoint with a non-JSON
// request format, then schema validation.
func (c *Client) initPlugins() error {
	for _, ep := range c.endpoints.Endpoints() {
		p := plugin.ForFormat(ep.RequestFormat)
		if p == nil {
			continue
		}
		if _, err := c.plugins.Use(plugin.ForDeclared(&ep), p, plugin.Normal); err != nil {
			return err
		}
	}

	if c.validate == ValidateNone {
		return nil
	}
	_, err := c.plugins.Use(plugin.Filter{}, plugin.SchemaValidation(plugin.ValidationOptions{
		Provider:          c.provider,
		ValidateRequest:   c.validate.request(),
		ValidateResponse:  c.validate.response(),
		TransformRequest:  c.transform.request(),
		TransformResponse: c.transform.response(),
		SendDefaults:      c.sendDefaults,
	}), plugin.High)
	return err
}

func (c *Client) buildDispatch() {
	c.verbs = make(map[api.Method]VerbFunc, len(api.Methods))
	for _, m := range api.Methods {
		c.verbs[m] = func(ctx context.Context, path string, cfg *transport.Config) (any, error) {
			return c.Request(ctx, withTarget(cfg, m, path))
		}
	}

	c.aliases = make(map[string]AliasFunc)
	for _, alias := range c.endpoints.Aliases() {
		ep := c.endpoints.FindByAlias(alias)
		method, path := ep.Method, ep.Path
		c.aliases[alias] = func(ctx context.Context, cfg *transport.Config) (any, error) {
			return c.Request(ctx, withTarget(cfg, method, path))
		}
	}
}

// withTarget returns a copy of cfg aimed at method and path.
func withTarget(cfg *transport.Config, method api.Method, path string) *transport.Config {
	out := cfg.Clone()
	out.Method = string(method)
	out.URL = path
	return out
}

// Do runs one call and returns the full response.
//
// cfg.Method and cfg.URL must name a declared endpoint; the method is
// matched case-insensitively and the URL must be the declared path template.
func (c *Client) Do(ctx context.Context, cfg *transport.Config) (*transport.Response, error) {
	if cfg == nil {
		return nil, &zerrors.ConfigError{Option: "config", Message: "request config cannot be nil"}
	}

	method, err := api.ParseMethod(cfg.Method)
	if err != nil {
		return nil, &zerrors.EndpointNotFoundError{Method: cfg.Method, Path: cfg.URL}
	}
	ep := c.endpoints.FindByMethodAndPath(method, cfg.URL)
	if ep == nil {
		return nil, &zerrors.EndpointNotFoundError{Method: string(method), Path: cfg.URL}
	}

	conf := cfg.Clone()
	conf.Method = string(method)
	if len(c.headers) > 0 {
		merged := maps.Clone(c.headers)
		for k, v := range conf.Headers {
			for dk := range merged {
				if strings.EqualFold(dk, k) {
					delete(merged, dk)
				}
			}
			merged[k] = v
		}
		conf.Headers = merged
	}

	log := c.logger.With("endpoint", ep.Key())
	log.Debug("request")

	conf, err = c.plugins.InterceptRequest(ctx, ep, conf)
	if err != nil {
		log.Debug("request rejected", "error", err)
		return nil, err
	}

	if err := c.checkPathParams(ep, conf); err != nil {
		log.Debug("request rejected", "error", err)
		return nil, err
	}

	resp, err := c.fetcher.Fetch(ctx, conf)
	switch {
	case err != nil:
		log.Debug("fetch failed", "error", err)
	case resp != nil:
		log.Debug("fetch complete", "status", resp.Status)
	}

	return c.plugins.InterceptResponse(ctx, ep, conf, resp, err)
}

// checkPathParams rejects a call that leaves a placeholder of the endpoint's
// path template without a value, declared as a Path parameter or not.
func (c *Client) checkPathParams(ep *api.Endpoint, conf *transport.Config) error {
	tmpl, ok := c.endpoints.Template(ep.Path)
	if !ok {
		return nil
	}
	for _, name := range tmpl.Params() {
		if v, ok := conf.Params[name]; ok && v != nil {
			continue
		}
		return &zerrors.ValidationError{
			Message: fmt.Sprintf("Invalid %s parameter '%s'", api.ParamPath, name),
			Config:  conf,
		}
	}
	return nil
}

// Request runs one call and returns the response data.
func (c *Client) Request(ctx context.Context, cfg *transport.Config) (any, error) {
	resp, err := c.Do(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Verb returns the callable for method, as used by Get, Post and friends.
func (c *Client) Verb(method api.Method) (VerbFunc, bool) {
	fn, ok := c.verbs[method]
	return fn, ok
}

// Get calls the "get" endpoint declared at path.
func (c *Client) Get(ctx context.Context, path string, cfg *transport.Config) (any, error) {
	return c.verbs[api.MethodGet](ctx, path, cfg)
}

// Head calls the "head" endpoint declared at path.
func (c *Client) Head(ctx context.Context, path string, cfg *transport.Config) (any, error) {
	return c.verbs[api.MethodHead](ctx, path, cfg)
}

// Post calls the "post" endpoint declared at path.
func (c *Client) Post(ctx context.Context, path string, cfg *transport.Config) (any, error) {
	return c.verbs[api.MethodPost](ctx, path, cfg)
}

// Put calls the "put" endpoint declared at path.
func (c *Client) Put(ctx context.Context, path string, cfg *transport.Config) (any, error) {
	return c.verbs[api.MethodPut](ctx, path, cfg)
}

// Patch calls the "patch" endpoint declared at path.
func (c *Client) Patch(ctx context.Context, path string, cfg *transport.Config) (any, error) {
	return c.verbs[api.MethodPatch](ctx, path, cfg)
}

// Delete calls the "delete" endpoint declared at path.
func (c *Client) Delete(ctx context.Context, path string, cfg *transport.Config) (any, error) {
	return c.verbs[api.MethodDelete](ctx, path, cfg)
}

// Alias returns the callable bound to alias.
func (c *Client) Alias(alias string) (AliasFunc, bool) {
	fn, ok := c.aliases[alias]
	return fn, ok
}

// Call calls the endpoint bound to alias.
func (c *Client) Call(ctx context.Context, alias string, cfg *transport.Config) (any, error) {
	fn, ok := c.aliases[alias]
	if !ok {
		return nil, &zerrors.EndpointNotFoundError{Alias: alias}
	}
	return fn(ctx, cfg)
}

// Endpoints returns the declared endpoints in declaration order.
func (c *Client) Endpoints() []api.Endpoint {
	return c.endpoints.Endpoints()
}

// Aliases returns the declared aliases in declaration order.
func (c *Client) Aliases() []string {
	return c.endpoints.Aliases()
}

// Registry returns the endpoint registry.
func (c *Client) Registry() *api.Registry {
	return c.endpoints
}

// TypeProvider returns the schema provider in use.
func (c *Client) TypeProvider() schema.Provider {
	return c.provider
}

// Use registers p for every endpoint. Priority defaults to plugin.Normal.
func (c *Client) Use(p *plugin.Plugin, priority ...plugin.Priority) (plugin.ID, error) {
	return c.UseFilter(plugin.Filter{}, p, priority...)
}

// UseAlias registers p for the endpoint bound to alias.
func (c *Client) UseAlias(alias string, p *plugin.Plugin, priority ...plugin.Priority) (plugin.ID, error) {
	if c.endpoints.FindByAlias(alias) == nil {
		return -1, &zerrors.ConfigError{Option: "alias", Value: alias, Cause: &zerrors.EndpointNotFoundError{Alias: alias}}
	}
	return c.UseFilter(plugin.ForAlias(alias), p, priority...)
}

// UseEndpoint registers p for the endpoint declared with method and path.
func (c *Client) UseEndpoint(method api.Method, path string, p *plugin.Plugin, priority ...plugin.Priority) (plugin.ID, error) {
	if c.endpoints.FindByMethodAndPath(method, path) == nil {
		return -1, &zerrors.ConfigError{
			Option: "endpoint",
			Value:  api.Key(method, path),
			Cause:  &zerrors.EndpointNotFoundError{Method: string(method), Path: path},
		}
	}
	return c.UseFilter(plugin.ForEndpoint(method, path), p, priority...)
}

// UseFilter registers p for the endpoints matched by filter.
func (c *Client) UseFilter(filter plugin.Filter, p *plugin.Plugin, priority ...plugin.Priority) (plugin.ID, error) {
	prio := plugin.Normal
	switch len(priority) {
	case 0:
	case 1:
		prio = priority[0]
	default:
		return -1, &zerrors.ConfigError{Option: "priority", Message: "invalid plugin registration: at most one priority"}
	}
	return c.plugins.Use(filter, p, prio)
}

// Eject unregisters a plugin. Unknown or already ejected IDs are ignored.
func (c *Client) Eject(id plugin.ID) {
	c.plugins.Eject(id)
}

// Plugins describes every registration, built-in ones included.
func (c *Client) Plugins() []plugin.Info {
	return c.plugins.Plugins()
}

// RequestAs runs one call and decodes the response data into T.
func RequestAs[T any](ctx context.Context, c *Client, cfg *transport.Config) (T, error) {
	data, err := c.Request(ctx, cfg)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeAs[T](data)
}

// CallAs calls the endpoint bound to alias and decodes the response data into T.
func CallAs[T any](ctx context.Context, c *Client, alias string, cfg *transport.Config) (T, error) {
	data, err := c.Call(ctx, alias, cfg)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeAs[T](data)
}

func decodeAs[T any](data any) (T, error) {
	if v, ok := data.(T); ok {
		return v, nil
	}
	var out T
	raw, err := json.Marshal(data)
	if err != nil {
		return out, fmt.Errorf("zodmon: encoding response data: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("zodmon: decoding response data into %T: %w", out, err)
	}
	return out, nil
}
