package mcp_test

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-dispatch"
	"github.com/felixgeelhaar/mcp-dispatch/middleware"
)

type motd struct{}

func (motd) URI() string                         { return "text://motd" }
func (motd) Handle(context.Context) (any, error) { return "Have a nice day", nil }

// Example registers a tool, a resource and a prompt.
func Example() {
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:         "example-server",
		Version:      "1.0.0",
		Instructions: "Use search to find documents.",
	}, mcp.WithResources(motd{}))

	type SearchInput struct {
		Query string `json:"query" jsonschema:"required"`
		Limit int    `json:"limit" jsonschema:"maximum=100"`
	}

	srv.Tool("search").
		Description("Search for documents").
		Handler(func(ctx context.Context, input SearchInput) ([]string, error) {
			return []string{"result1", "result2"}, nil
		})

	srv.Prompt("greet").
		Description("Generate a greeting").
		Argument("name", "Name to greet", true).
		Handler(func(ctx context.Context, args map[string]string) (any, error) {
			return "Hello, " + args["name"], nil
		})

	if err := srv.Start(); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(srv.Methods())
	// Output: [initialize notifications/initialized ping prompts/get prompts/list resources/list resources/read tools/call tools/list]
}

// ExampleDefaultMiddleware installs the recover, request id and logging
// stack on a server.
func ExampleDefaultMiddleware() {
	srv := mcp.NewServer(mcp.ServerInfo{Name: "server", Version: "1.0.0"},
		mcp.WithMiddleware(mcp.DefaultMiddleware(middleware.NopLogger{})...),
	)
	srv.Tool("shout").Handler(func(in struct {
		Text string `json:"text"`
	}) (string, error) {
		return in.Text + "!", nil
	})

	if err := srv.Start(); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(srv.State())
	// Output: started
}
