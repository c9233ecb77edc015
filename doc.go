// Package zodmon is a declarative HTTP API client.
//
// An API is described once as a list of endpoint declarations: method, path
// template, parameters and the schemas of the request, the response and the
// declared errors. A Client built from that list routes every call through an
// ordered plugin pipeline that validates and transforms parameters, encodes
// bodies, sends the request through a pluggable transport and validates the
// result.
//
// # Overview
//
// The module is split into small packages:
//
//   - api: endpoint declarations, the registry and YAML loading
//   - schema: the schema provider capability and its built-in implementation
//   - schema/jsonschema: a provider backed by github.com/google/jsonschema-go
//   - plugin: hooks, priorities, filters and the built-in plugins
//   - transport: request configs, responses and the net/http fetcher
//   - zerrors: structured error types
//   - logging: the logger interface and slog adapter
//   - mcpserver: exposes a Client's endpoints as MCP tools
//
// # Quick Start
//
// Declare endpoints and build a client:
//
//	endpoints := []api.Endpoint{{
//	    Method: api.MethodGet,
//	    Path:   "/users/:id",
//	    Alias:  "getUser",
//	    Response: schema.Object(map[string]*schema.Schema{
//	        "id":   schema.Number(),
//	        "name": schema.String(),
//	    }),
//	}}
//
//	client, err := zodmon.New(endpoints, zodmon.WithBaseURL("https://api.example.com"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Call it by verb and path, or by alias:
//
//	user, err := client.Get(ctx, "/users/:id", &transport.Config{
//	    Params: map[string]any{"id": 7},
//	})
//
//	user, err = client.Call(ctx, "getUser", &transport.Config{
//	    Params: map[string]any{"id": 7},
//	})
//
// Decode into a typed value with RequestAs or CallAs:
//
//	type User struct {
//	    ID   int    `json:"id"`
//	    Name string `json:"name"`
//	}
//	u, err := zodmon.CallAs[User](ctx, client, "getUser", cfg)
//
// # Plugins
//
// Plugins carry optional request, response and error hooks. Request hooks run
// from high to low priority, in registration order within a priority.
// Response and error hooks run in the opposite order. Schema validation is
// registered at high priority, so it sees the request last and the response
// first.
//
//	id, err := client.UseAlias("getUser", plugin.Header("Authorization", "Bearer "+token))
//	...
//	client.Eject(id)
//
// # Errors
//
// Construction failures are *zerrors.ConfigError. Schema failures are
// *zerrors.ValidationError. Non-2xx responses are *transport.HTTPError and
// can be checked against the declared error schemas:
//
//	if m, ok := client.MatchAliasError(ctx, "getUser", err); ok {
//	    fmt.Println(m.Descriptor.Status, m.Data)
//	}
//
// # Configuration
//
// Options control the base URL, validation and transform modes, the schema
// provider, the transport and logging. OptionsFromEnv reads the same settings
// from ZODMON_* environment variables.
package zodmon
