// Package server provides the MCP method dispatcher.
//
// A Server collects resources, tools and prompts, freezes them into an
// immutable Context on Start and dispatches JSON-RPC requests through a
// method Registry. Built-in methods cover the MCP handshake and the
// list/read, list/call and list/get pairs; custom methods share the same
// Method contract.
//
// # Server
//
//	srv := server.New(server.Info{
//	    Name:    "my-server",
//	    Version: "1.0.0",
//	}, server.WithResources(&LastLogLineResource{}))
//
// # Tools
//
// Tools are registered using the fluent builder API. The input schema is
// reflected from the handler's input type:
//
//	type SearchInput struct {
//	    Query string `json:"query" jsonschema:"required"`
//	}
//
//	srv.Tool("search").
//	    Description("Search for items").
//	    Handler(func(ctx context.Context, input SearchInput) ([]string, error) {
//	        return []string{"result1", "result2"}, nil
//	    })
//
// # Resources
//
// Resources are matched by exact URI:
//
//	srv.Resource("file://status").
//	    Description("Current status").
//	    Handler(func(ctx context.Context) (any, error) {
//	        return "ok", nil
//	    })
//
// # Prompts
//
//	srv.Prompt("greet").
//	    Argument("name", "Name to greet", true).
//	    Handler(func(ctx context.Context, args map[string]string) (any, error) {
//	        return "Say hello to " + args["name"], nil
//	    })
package server
