package server

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/felixgeelhaar/mcp-dispatch/content"
	"github.com/felixgeelhaar/mcp-dispatch/protocol"
)

type echoTool struct{}

func (echoTool) Handle(_ context.Context, args json.RawMessage) (any, error) {
	var in struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, err
	}
	if in.Message == "fail" {
		return nil, errors.New("echo refused")
	}
	return in.Message, nil
}

type blobTool struct{}

func (blobTool) Name() string { return "blob" }
func (blobTool) Handle(context.Context, json.RawMessage) (any, error) {
	return content.Blob("raw"), nil
}

type blobResource struct{}

func (blobResource) URI() string      { return "file://blob" }
func (blobResource) MimeType() string { return "application/octet-stream" }
func (blobResource) Handle(context.Context) (any, error) {
	return content.Blob("hello"), nil
}

type greetPrompt struct{}

func (greetPrompt) Name() string { return "greet" }
func (greetPrompt) Arguments() []PromptArgument {
	return []PromptArgument{{Name: "name", Description: "Who to greet", Required: true}}
}
func (greetPrompt) Handle(_ context.Context, args map[string]string) (any, error) {
	return []PromptMessage{
		UserMessage("Greet " + args["name"]),
		AssistantMessage("Hello, " + args["name"]),
	}, nil
}

func dispatchServer(t *testing.T) *Server {
	t.Helper()
	return startedServer(t,
		WithResources(statusResource{}, blobResource{}),
		WithTools(echoTool{}, blobTool{}),
		WithPrompts(greetPrompt{}),
	)
}

func call(t *testing.T, srv *Server, method string, params any) (map[string]any, *protocol.Error) {
	t.Helper()
	resp, err := srv.HandleRequest(context.Background(), request(t, 1, method, params))
	if err != nil {
		var rpcErr *protocol.Error
		if !errors.As(err, &rpcErr) {
			t.Fatalf("expected *protocol.Error, got %T: %v", err, err)
		}
		return nil, rpcErr
	}

	// Round-trip through the wire format so tests see what a client sees.
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var wire struct {
		Result map[string]any `json:"result"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	return wire.Result, nil
}

func TestInitialize(t *testing.T) {
	srv := startedServer(t, WithTools(echoTool{}))

	t.Run("negotiates supported version", func(t *testing.T) {
		result, rpcErr := call(t, srv, protocol.MethodInitialize, map[string]any{
			"protocolVersion": "2024-11-05",
		})
		if rpcErr != nil {
			t.Fatalf("unexpected error: %v", rpcErr)
		}

		if result["protocolVersion"] != "2024-11-05" {
			t.Errorf("protocolVersion = %v", result["protocolVersion"])
		}
		serverInfo := result["serverInfo"].(map[string]any)
		if serverInfo["name"] != "test" {
			t.Errorf("serverInfo.name = %v", serverInfo["name"])
		}
		caps := result["capabilities"].(map[string]any)
		if _, ok := caps["tools"]; !ok {
			t.Error("expected tools capability")
		}
		if _, ok := caps["prompts"]; ok {
			t.Error("did not expect prompts capability")
		}
	})

	t.Run("falls back to latest version", func(t *testing.T) {
		result, rpcErr := call(t, srv, protocol.MethodInitialize, map[string]any{
			"protocolVersion": "1999-01-01",
		})
		if rpcErr != nil {
			t.Fatalf("unexpected error: %v", rpcErr)
		}
		if result["protocolVersion"] != protocol.LatestVersion {
			t.Errorf("protocolVersion = %v, want %v", result["protocolVersion"], protocol.LatestVersion)
		}
	})
}

func TestResourcesList(t *testing.T) {
	srv := dispatchServer(t)

	result, rpcErr := call(t, srv, protocol.MethodResourcesList, nil)
	if rpcErr != nil {
		t.Fatalf("unexpected error: %v", rpcErr)
	}

	list := result["resources"].([]any)
	if len(list) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(list))
	}
	first := list[0].(map[string]any)
	if first["uri"] != "file://status" {
		t.Errorf("uri = %v", first["uri"])
	}
	if first["name"] != "status-resource" {
		t.Errorf("name = %v", first["name"])
	}
	if first["mimeType"] != "text/plain" {
		t.Errorf("mimeType = %v", first["mimeType"])
	}
}

func TestResourcesRead(t *testing.T) {
	srv := dispatchServer(t)

	t.Run("registered uri", func(t *testing.T) {
		result, rpcErr := call(t, srv, protocol.MethodResourcesRead, map[string]any{"uri": "file://status"})
		if rpcErr != nil {
			t.Fatalf("unexpected error: %v", rpcErr)
		}

		if result["text"] != "ok" {
			t.Errorf("text = %v, want ok", result["text"])
		}
		if result["uri"] != "file://status" {
			t.Errorf("uri = %v", result["uri"])
		}
		contents := result["contents"].([]any)
		if len(contents) != 1 || contents[0].(map[string]any)["text"] != "ok" {
			t.Errorf("contents = %v", contents)
		}
	})

	t.Run("blob resource is base64 encoded", func(t *testing.T) {
		result, rpcErr := call(t, srv, protocol.MethodResourcesRead, map[string]any{"uri": "file://blob"})
		if rpcErr != nil {
			t.Fatalf("unexpected error: %v", rpcErr)
		}

		if result["blob"] != "aGVsbG8=" {
			t.Errorf("blob = %v, want aGVsbG8=", result["blob"])
		}
		if result["mimeType"] != "application/octet-stream" {
			t.Errorf("mimeType = %v", result["mimeType"])
		}
	})

	tests := []struct {
		name    string
		params  any
		code    int
		message string
	}{
		{"unknown uri", map[string]any{"uri": "file://missing"}, protocol.CodeNotFound, "Resource not found"},
		{"missing uri", map[string]any{}, protocol.CodeInvalidParams, "Missing required parameter: uri"},
		{"no params", nil, protocol.CodeInvalidParams, "Missing required parameter: uri"},
		{"null uri", map[string]any{"uri": nil}, protocol.CodeInvalidParams, "Missing required parameter: uri"},
		{"non-string uri", map[string]any{"uri": 42}, protocol.CodeInvalidParams, "Invalid parameter: uri must be a string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rpcErr := call(t, srv, protocol.MethodResourcesRead, tt.params)
			if rpcErr == nil {
				t.Fatal("expected error")
			}
			if rpcErr.Code != tt.code {
				t.Errorf("Code = %d, want %d", rpcErr.Code, tt.code)
			}
			if rpcErr.Message != tt.message {
				t.Errorf("Message = %q, want %q", rpcErr.Message, tt.message)
			}
		})
	}
}

func TestToolsList(t *testing.T) {
	srv := dispatchServer(t)

	result, rpcErr := call(t, srv, protocol.MethodToolsList, nil)
	if rpcErr != nil {
		t.Fatalf("unexpected error: %v", rpcErr)
	}

	list := result["tools"].([]any)
	if len(list) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(list))
	}
	first := list[0].(map[string]any)
	if first["name"] != "echo-tool" {
		t.Errorf("name = %v", first["name"])
	}
	if first["title"] != "Echo Tool" {
		t.Errorf("title = %v", first["title"])
	}
	if _, ok := first["inputSchema"].(map[string]any); !ok {
		t.Errorf("inputSchema = %v", first["inputSchema"])
	}
}

func TestToolsCall(t *testing.T) {
	srv := dispatchServer(t)

	t.Run("success", func(t *testing.T) {
		result, rpcErr := call(t, srv, protocol.MethodToolsCall, map[string]any{
			"name":      "echo-tool",
			"arguments": map[string]any{"message": "hi"},
		})
		if rpcErr != nil {
			t.Fatalf("unexpected error: %v", rpcErr)
		}

		if result["isError"] != false {
			t.Errorf("isError = %v", result["isError"])
		}
		items := result["content"].([]any)
		item := items[0].(map[string]any)
		if item["type"] != "text" || item["text"] != "hi" {
			t.Errorf("content = %v", item)
		}
	})

	t.Run("domain error becomes error result", func(t *testing.T) {
		result, rpcErr := call(t, srv, protocol.MethodToolsCall, map[string]any{
			"name":      "echo-tool",
			"arguments": map[string]any{"message": "fail"},
		})
		if rpcErr != nil {
			t.Fatalf("unexpected error: %v", rpcErr)
		}

		if result["isError"] != true {
			t.Errorf("isError = %v, want true", result["isError"])
		}
		item := result["content"].([]any)[0].(map[string]any)
		if item["text"] != "echo refused" {
			t.Errorf("text = %v", item["text"])
		}
	})

	t.Run("blob content is rejected", func(t *testing.T) {
		_, rpcErr := call(t, srv, protocol.MethodToolsCall, map[string]any{"name": "blob"})
		if rpcErr == nil {
			t.Fatal("expected error")
		}
		if rpcErr.Code != protocol.CodeInternalError {
			t.Errorf("Code = %d, want %d", rpcErr.Code, protocol.CodeInternalError)
		}
	})

	tests := []struct {
		name   string
		params any
		code   int
	}{
		{"unknown tool", map[string]any{"name": "missing"}, protocol.CodeNotFound},
		{"missing name", map[string]any{}, protocol.CodeInvalidParams},
		{"malformed params", []any{1, 2}, protocol.CodeInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rpcErr := call(t, srv, protocol.MethodToolsCall, tt.params)
			if rpcErr == nil {
				t.Fatal("expected error")
			}
			if rpcErr.Code != tt.code {
				t.Errorf("Code = %d, want %d", rpcErr.Code, tt.code)
			}
		})
	}
}

func TestPrompts(t *testing.T) {
	srv := dispatchServer(t)

	t.Run("list", func(t *testing.T) {
		result, rpcErr := call(t, srv, protocol.MethodPromptsList, nil)
		if rpcErr != nil {
			t.Fatalf("unexpected error: %v", rpcErr)
		}

		list := result["prompts"].([]any)
		if len(list) != 1 {
			t.Fatalf("expected 1 prompt, got %d", len(list))
		}
		args := list[0].(map[string]any)["arguments"].([]any)
		arg := args[0].(map[string]any)
		if arg["name"] != "name" || arg["required"] != true {
			t.Errorf("argument = %v", arg)
		}
	})

	t.Run("get", func(t *testing.T) {
		result, rpcErr := call(t, srv, protocol.MethodPromptsGet, map[string]any{
			"name":      "greet",
			"arguments": map[string]any{"name": "Ada"},
		})
		if rpcErr != nil {
			t.Fatalf("unexpected error: %v", rpcErr)
		}

		messages := result["messages"].([]any)
		if len(messages) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(messages))
		}
		second := messages[1].(map[string]any)
		if second["role"] != RoleAssistant {
			t.Errorf("role = %v", second["role"])
		}
		text := second["content"].(map[string]any)["text"]
		if text != "Hello, Ada" {
			t.Errorf("text = %v", text)
		}
	})

	tests := []struct {
		name   string
		params any
		code   int
	}{
		{"missing required argument", map[string]any{"name": "greet"}, protocol.CodeInvalidParams},
		{"unknown prompt", map[string]any{"name": "missing"}, protocol.CodeNotFound},
		{"missing name", map[string]any{}, protocol.CodeInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rpcErr := call(t, srv, protocol.MethodPromptsGet, tt.params)
			if rpcErr == nil {
				t.Fatal("expected error")
			}
			if rpcErr.Code != tt.code {
				t.Errorf("Code = %d, want %d", rpcErr.Code, tt.code)
			}
		})
	}
}
