package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/richiexuetang/zodmon"
	"github.com/richiexuetang/zodmon/api"
	"github.com/richiexuetang/zodmon/transport"
	"github.com/richiexuetang/zodmon/zerrors"
)

type callInput struct {
	Params  map[string]any    `json:"params,omitempty"  jsonschema:"Path parameters keyed by name"`
	Queries map[string]any    `json:"queries,omitempty" jsonschema:"Query string values keyed by name"`
	Headers map[string]string `json:"headers,omitempty" jsonschema:"Request headers"`
	Body    any               `json:"body,omitempty"    jsonschema:"Request body"`
}

type callOutput struct {
	Status int `json:"status"`
	Data   any `json:"data,omitempty"`
}

type callHandler struct {
	client *zodmon.Client
	method api.Method
	path   string
}

func (h *callHandler) handle(ctx context.Context, _ *mcp.CallToolRequest, input callInput) (*mcp.CallToolResult, callOutput, error) {
	resp, err := h.client.Do(ctx, &transport.Config{
		Method:  string(h.method),
		URL:     h.path,
		Params:  input.Params,
		Queries: input.Queries,
		Headers: input.Headers,
		Body:    input.Body,
	})
	if err != nil {
		return h.errorResult(ctx, err), callOutput{}, nil
	}
	return nil, callOutput{Status: resp.Status, Data: resp.Data}, nil
}

// errorResult reports err, noting whether a backend error matches a declared
// error shape.
func (h *callHandler) errorResult(ctx context.Context, err error) *mcp.CallToolResult {
	httpErr, ok := zerrors.IsTransport(err)
	if !ok {
		return errResult(err)
	}
	match, declared := h.client.MatchError(ctx, h.method, h.path, err)
	if declared {
		return errResult(fmt.Errorf("%w (declared error %s)", httpErr, match.Descriptor.Status))
	}
	return errResult(fmt.Errorf("%w (undeclared error)", httpErr))
}

type endpointParam struct {
	Name string `json:"name"`
	In   string `json:"in"`
}

type endpointSummary struct {
	Tool          string          `json:"tool"`
	Method        string          `json:"method"`
	Path          string          `json:"path"`
	Alias         string          `json:"alias,omitempty"`
	Description   string          `json:"description,omitempty"`
	RequestFormat string          `json:"request_format,omitempty"`
	Parameters    []endpointParam `json:"parameters,omitempty"`
	ErrorStatuses []string        `json:"error_statuses,omitempty"`
}

type listEndpointsInput struct{}

type listEndpointsOutput struct {
	Total     int               `json:"total"`
	Endpoints []endpointSummary `json:"endpoints"`
}

func listEndpoints(client *zodmon.Client, names []string) mcp.ToolHandlerFor[listEndpointsInput, listEndpointsOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ listEndpointsInput) (*mcp.CallToolResult, listEndpointsOutput, error) {
		endpoints := client.Endpoints()
		out := listEndpointsOutput{Total: len(endpoints), Endpoints: make([]endpointSummary, 0, len(endpoints))}
		for i, ep := range endpoints {
			s := endpointSummary{
				Tool:          names[i],
				Method:        ep.Method.HTTP(),
				Path:          ep.Path,
				Alias:         ep.Alias,
				Description:   ep.Description,
				RequestFormat: string(ep.RequestFormat),
				Parameters:    makeSlice[endpointParam](len(ep.Parameters)),
				ErrorStatuses: makeSlice[string](len(ep.Errors)),
			}
			for _, p := range ep.Parameters {
				s.Parameters = append(s.Parameters, endpointParam{Name: p.Name, In: string(p.Type)})
			}
			for _, e := range ep.Errors {
				s.ErrorStatuses = append(s.ErrorStatuses, e.Status.String())
			}
			out.Endpoints = append(out.Endpoints, s)
		}
		return nil, out, nil
	}
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}
