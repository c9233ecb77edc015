// Package transport defines the boundary between the client pipeline and the
// network: the request configuration threaded through plugins, the response
// handed back, and the Fetcher that turns one into the other.
//
// HTTPFetcher is the default Fetcher, built on net/http. Anything that
// implements Fetcher can replace it, including a FetcherFunc in tests:
//
//	stub := transport.FetcherFunc(func(ctx context.Context, cfg *transport.Config) (*transport.Response, error) {
//	    return transport.JSONResponse(http.StatusOK, map[string]any{"id": 7, "name": "test"}), nil
//	})
//
// # Request bodies
//
// HTTPFetcher sends []byte, string and io.Reader bodies verbatim, encodes
// url.Values as a form and anything else as JSON. A Content-Type header set on
// the Config always wins.
//
// # Responses
//
// JSON media types are decoded into any, text/* into string, and everything
// else is kept as []byte. Non-2xx responses are returned as *HTTPError, which
// still carries the decoded Response.
package transport

import "maps"

// Config describes one request as it moves through the plugin pipeline.
//
// Plugins must treat a Config as read-only and return a modified Clone.
type Config struct {
	// Method is the lower-case HTTP method, e.g. "get".
	Method string
	// URL is the endpoint path template, e.g. "/users/:id".
	URL string
	// Params holds path parameter values keyed by name.
	Params map[string]any
	// Queries holds query parameter values. Slice values repeat the key.
	Queries map[string]any
	// Headers holds request headers.
	Headers map[string]string
	// Body is the request payload.
	Body any
}

// Clone returns a copy of c whose maps can be modified without affecting c.
// Map values and Body are shared.
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}
	cp := *c
	cp.Params = maps.Clone(c.Params)
	cp.Queries = maps.Clone(c.Queries)
	cp.Headers = maps.Clone(c.Headers)
	return &cp
}

// Header returns the value of the header key, matched case-insensitively.
func (c *Config) Header(key string) (string, bool) {
	if v, ok := c.Headers[key]; ok {
		return v, true
	}
	for k, v := range c.Headers {
		if equalFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// SetHeader sets a header on a copy of c and returns the copy. An existing
// header with the same name in another case is replaced.
func (c *Config) SetHeader(key, value string) *Config {
	cp := c.Clone()
	if cp.Headers == nil {
		cp.Headers = make(map[string]string)
	}
	for k := range cp.Headers {
		if equalFold(k, key) {
			delete(cp.Headers, k)
		}
	}
	cp.Headers[key] = value
	return cp
}
