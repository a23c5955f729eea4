// Package demo is the sample server registered by mcpd.
package demo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/felixgeelhaar/mcp-dispatch/middleware"
	"github.com/felixgeelhaar/mcp-dispatch/protocol"
	"github.com/felixgeelhaar/mcp-dispatch/server"
)

// Handle is the registrar handle and web route name of the demo server.
const Handle = "demo"

// LastLogLine exposes the last non-empty line of a log file.
type LastLogLine struct {
	Path string
}

func (LastLogLine) URI() string         { return "file://logs/last-line" }
func (LastLogLine) Description() string { return "The last line of the log file" }

// Handle reads the file backwards in chunks so large logs are not loaded
// whole.
func (r LastLogLine) Handle(context.Context) (any, error) {
	if r.Path == "" {
		return "", errors.New("no log file configured")
	}
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return lastLine(f)
}

func lastLine(f io.ReadSeeker) (string, error) {
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return "", err
	}

	const chunk = 4096
	var tail []byte
	for offset := size; offset > 0; {
		n := int64(chunk)
		if offset < n {
			n = offset
		}
		offset -= n
		buf := make([]byte, n)
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return "", err
		}
		if _, err := io.ReadFull(f, buf); err != nil {
			return "", err
		}
		tail = append(buf, tail...)

		trimmed := bytes.TrimRight(tail, "\r\n")
		if i := bytes.LastIndexByte(trimmed, '\n'); i >= 0 {
			return string(trimmed[i+1:]), nil
		}
	}

	return string(bytes.TrimRight(tail, "\r\n")), nil
}

// EchoInput is the input of the echo tool.
type EchoInput struct {
	Message string `json:"message" jsonschema:"required,description=Text to echo back"`
	Repeat  int    `json:"repeat,omitempty" jsonschema:"minimum=1,maximum=10,description=How many times to repeat the message"`
}

// Echo returns the message, optionally repeated.
func Echo(ctx context.Context, in EchoInput) (string, error) {
	middleware.AddSpanEvent(ctx, "echo")
	if in.Repeat <= 1 {
		return in.Message, nil
	}
	if in.Repeat > 10 {
		return "", fmt.Errorf("repeat must be at most 10, got %d", in.Repeat)
	}
	return strings.TrimSpace(strings.Repeat(in.Message+" ", in.Repeat)), nil
}

// Greeting renders a greeting for a named person.
type Greeting struct{}

func (Greeting) Description() string { return "Greets someone by name" }

func (Greeting) Arguments() []server.PromptArgument {
	return []server.PromptArgument{
		{Name: "name", Description: "Who to greet", Required: true},
		{Name: "tone", Description: "formal or casual"},
	}
}

func (Greeting) Handle(_ context.Context, args map[string]string) (any, error) {
	if args["tone"] == "formal" {
		return []server.PromptMessage{
			server.UserMessage("Write a formal greeting for " + args["name"] + "."),
			server.AssistantMessage("Good day, " + args["name"] + "."),
		}, nil
	}
	return "Say hello to " + args["name"] + ".", nil
}

// Hello is a custom JSON-RPC method.
func Hello(_ context.Context, req *protocol.Request, _ *server.Context) (*protocol.Response, error) {
	return protocol.NewResponse(req.ID, map[string]any{
		"message": "Custom method executed successfully!",
	}), nil
}

// Options configures New.
type Options struct {
	LogFile    string
	Version    string
	Middleware []middleware.Middleware
}

// New builds an unstarted demo server.
func New(opts Options) (*server.Server, error) {
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	srv := server.New(server.Info{
		Name:         "mcpd-demo",
		Version:      version,
		Instructions: "A demonstration server with one resource, one tool and one prompt.",
	},
		server.WithResources(LastLogLine{Path: opts.LogFile}),
		server.WithPrompts(Greeting{}),
		server.WithMethod("demo/hello", server.MethodFunc(Hello)),
		server.WithMiddleware(opts.Middleware...),
	)
	srv.Tool("echo").
		Description("Echoes a message back").
		Handler(Echo)

	return srv, nil
}
