package zodmon

import (
	"context"
	"errors"

	"github.com/richiexuetang/zodmon/api"
	"github.com/richiexuetang/zodmon/transport"
)

// ErrorMatch is a response error classified against a declared descriptor.
type ErrorMatch struct {
	Endpoint   *api.Endpoint
	Descriptor api.ErrorDescriptor
	Response   *transport.Response
	// Data is the payload as returned by the schema provider.
	Data any
}

// IsErrorFromPath reports whether err carries a response whose status and
// payload match an error declared by the endpoint at method and path.
//
// Exact-status descriptors are tried first in declaration order; "default"
// descriptors are consulted only when no exact status is declared.
func (c *Client) IsErrorFromPath(method api.Method, path string, err error) bool {
	_, ok := c.MatchError(context.Background(), method, path, err)
	return ok
}

// IsErrorFromAlias is IsErrorFromPath for the endpoint bound to alias.
func (c *Client) IsErrorFromAlias(alias string, err error) bool {
	_, ok := c.MatchAliasError(context.Background(), alias, err)
	return ok
}

// MatchError returns the first descriptor of the endpoint at method and path
// that accepts the response carried by err.
func (c *Client) MatchError(ctx context.Context, method api.Method, path string, err error) (*ErrorMatch, bool) {
	return c.matchError(ctx, c.endpoints.FindByMethodAndPath(method, path), err)
}

// MatchAliasError is MatchError for the endpoint bound to alias.
func (c *Client) MatchAliasError(ctx context.Context, alias string, err error) (*ErrorMatch, bool) {
	return c.matchError(ctx, c.endpoints.FindByAlias(alias), err)
}

func (c *Client) matchError(ctx context.Context, ep *api.Endpoint, err error) (*ErrorMatch, bool) {
	if ep == nil || err == nil {
		return nil, false
	}
	var carrier transport.ResponseCarrier
	if !errors.As(err, &carrier) {
		return nil, false
	}
	resp := carrier.ErrorResponse()
	if resp == nil {
		return nil, false
	}

	for _, desc := range ep.ErrorsFor(resp.Status) {
		res := c.provider.ValidateContext(ctx, desc.Schema, resp.Data)
		if res.Success() {
			c.logger.Debug("error classified", "endpoint", ep.Key(), "status", resp.Status, "declared", desc.Status.String())
			return &ErrorMatch{Endpoint: ep, Descriptor: desc, Response: resp, Data: res.Data}, true
		}
	}
	return nil, false
}
