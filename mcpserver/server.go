// Package mcpserver exposes a zodmon Client as an MCP (Model Context
// Protocol) server. Every declared endpoint becomes one tool; calls go through
// the client's full plugin pipeline.
package mcpserver

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/richiexuetang/zodmon"
	"github.com/richiexuetang/zodmon/api"
)

const serverInstructions = `zodmon MCP server: calls a declared HTTP API.

Each endpoint is a tool named after its alias, or after its method and path when it has none. Use list_endpoints to see every tool with its method, path and parameters.

Tool input:
- params: path parameters, e.g. {"id": 7} for /users/:id
- queries: query string values; arrays repeat the key
- headers: request headers
- body: request body

Requests and responses are validated against the declared schemas. Errors from the backend report the status and whether the payload matches a declared error.`

// ListEndpointsName is the name of the introspection tool.
const ListEndpointsName = "list_endpoints"

// Run serves client's endpoints over stdio and blocks until the peer
// disconnects or ctx is cancelled.
func Run(ctx context.Context, client *zodmon.Client) error {
	return NewServer(client).Run(ctx, &mcp.StdioTransport{})
}

// NewServer builds an MCP server with one tool per endpoint of client.
func NewServer(client *zodmon.Client) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "zodmon", Version: zodmon.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	Register(server, client)
	return server
}

// Register adds the endpoint tools and list_endpoints to server.
func Register(server *mcp.Server, client *zodmon.Client) {
	names := ToolNames(client.Endpoints())
	for i, ep := range client.Endpoints() {
		h := &callHandler{client: client, method: ep.Method, path: ep.Path}
		mcp.AddTool(server, &mcp.Tool{
			Name:        names[i],
			Description: toolDescription(&ep),
		}, h.handle)
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        ListEndpointsName,
		Description: "List the endpoints exposed as tools, with their method, path, alias and parameters.",
	}, listEndpoints(client, names))
}

// ToolNames returns the tool name of each endpoint: its alias, or a derived
// camelCase name. Colliding names get a numeric suffix.
func ToolNames(endpoints []api.Endpoint) []string {
	names := make([]string, len(endpoints))
	seen := map[string]bool{ListEndpointsName: true}
	for i := range endpoints {
		if endpoints[i].Alias != "" {
			seen[endpoints[i].Alias] = true
		}
	}
	for i := range endpoints {
		ep := &endpoints[i]
		if ep.Alias != "" {
			names[i] = ep.Alias
			continue
		}
		base := api.DeriveAlias(ep)
		name := base
		for n := 2; seen[name]; n++ {
			name = base + strconv.Itoa(n)
		}
		seen[name] = true
		names[i] = name
	}
	return names
}

func toolDescription(ep *api.Endpoint) string {
	if ep.Description != "" {
		return fmt.Sprintf("%s (%s %s)", ep.Description, ep.Method.HTTP(), ep.Path)
	}
	return fmt.Sprintf("Call %s %s.", ep.Method.HTTP(), ep.Path)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
