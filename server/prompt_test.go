package server

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/mcp-dispatch/content"
	"github.com/felixgeelhaar/mcp-dispatch/protocol"
)

func TestPromptBuilder(t *testing.T) {
	t.Run("builds prompt with arguments", func(t *testing.T) {
		srv := New(Info{Name: "test", Version: "1.0.0"})

		srv.Prompt("code-review").
			Description("Review a change").
			Argument("diff", "The change to review", true).
			Argument("style", "Review style (strict/lenient)", false).
			Handler(func(ctx context.Context, args map[string]string) (any, error) {
				return "Review: " + args["diff"], nil
			})
		if err := srv.Start(); err != nil {
			t.Fatalf("Start() error = %v", err)
		}

		p, ok := srv.Context().Prompt("code-review")
		if !ok {
			t.Fatal("expected prompt to be registered")
		}
		if p.Info.Title != "Code Review" {
			t.Errorf("Title = %q, want %q", p.Info.Title, "Code Review")
		}
		if len(p.Info.Arguments) != 2 {
			t.Fatalf("expected 2 arguments, got %d", len(p.Info.Arguments))
		}
		if !p.Info.Arguments[0].Required {
			t.Error("Arguments[0].Required should be true")
		}
		if p.Info.Arguments[1].Required {
			t.Error("Arguments[1].Required should be false")
		}
	})

	t.Run("explicit title", func(t *testing.T) {
		srv := New(Info{Name: "test", Version: "1.0.0"})
		srv.Prompt("greeting").Title("Say Hi").Handler(func(context.Context, map[string]string) (any, error) {
			return "hi", nil
		})
		if err := srv.Start(); err != nil {
			t.Fatalf("Start() error = %v", err)
		}

		p, _ := srv.Context().Prompt("greeting")
		if p.Info.Title != "Say Hi" {
			t.Errorf("Title = %q, want %q", p.Info.Title, "Say Hi")
		}
	})
}

func TestPromptMessages(t *testing.T) {
	t.Run("single value becomes a user message", func(t *testing.T) {
		msgs, err := promptMessages("hello")
		if err != nil {
			t.Fatalf("promptMessages() error = %v", err)
		}
		if len(msgs) != 1 || msgs[0]["role"] != RoleUser {
			t.Fatalf("messages = %v", msgs)
		}
		item := msgs[0]["content"].(map[string]any)
		if item["type"] != "text" || item["text"] != "hello" {
			t.Errorf("content = %v", item)
		}
	})

	t.Run("empty role defaults to user", func(t *testing.T) {
		msgs, err := promptMessages(PromptMessage{Content: content.Text("x")})
		if err != nil {
			t.Fatalf("promptMessages() error = %v", err)
		}
		if msgs[0]["role"] != RoleUser {
			t.Errorf("role = %v, want %v", msgs[0]["role"], RoleUser)
		}
	})

	t.Run("blob content is rejected", func(t *testing.T) {
		_, err := promptMessages(content.Blob("raw"))
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("message without content is an internal error", func(t *testing.T) {
		tests := []struct {
			name  string
			value any
		}{
			{"single message", PromptMessage{Role: RoleAssistant}},
			{"message list", []PromptMessage{{Content: content.Text("ok")}, {Role: RoleUser}}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := promptMessages(tt.value)
				var rpcErr *protocol.Error
				if !errors.As(err, &rpcErr) {
					t.Fatalf("error = %v, want *protocol.Error", err)
				}
				if rpcErr.Code != protocol.CodeInternalError || rpcErr.Message != "prompt message has no content" {
					t.Errorf("error = %d %q", rpcErr.Code, rpcErr.Message)
				}
			})
		}
	})

	t.Run("blob from a prompt handler is an internal error", func(t *testing.T) {
		srv := New(Info{Name: "test", Version: "1.0.0"})
		srv.Prompt("binary").Handler(func(context.Context, map[string]string) (any, error) {
			return content.Blob("raw"), nil
		})
		if err := srv.Start(); err != nil {
			t.Fatalf("Start() error = %v", err)
		}

		_, rpcErr := call(t, srv, protocol.MethodPromptsGet, map[string]any{"name": "binary"})
		if rpcErr == nil || rpcErr.Code != protocol.CodeInternalError {
			t.Errorf("expected internal error, got %v", rpcErr)
		}
	})
}
