package middleware

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/mcp-dispatch/protocol"
)

func captureRequestID(dst *string) HandlerFunc {
	return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
		*dst = RequestIDFromContext(ctx)
		return nil, nil
	}
}

func TestRequestID(t *testing.T) {
	t.Run("generates a uuid", func(t *testing.T) {
		var got string
		_, _ = RequestID()(captureRequestID(&got))(context.Background(), call("ping"))

		if _, err := uuid.Parse(got); err != nil {
			t.Errorf("request id %q is not a uuid: %v", got, err)
		}
	})

	t.Run("ids differ per request", func(t *testing.T) {
		var a, b string
		mw := RequestID()
		_, _ = mw(captureRequestID(&a))(context.Background(), call("ping"))
		_, _ = mw(captureRequestID(&b))(context.Background(), call("ping"))
		if a == b {
			t.Errorf("ids should differ, both %q", a)
		}
	})

	t.Run("preserves an existing id", func(t *testing.T) {
		var got string
		ctx := ContextWithRequestID(context.Background(), "upstream")
		_, _ = RequestID()(captureRequestID(&got))(ctx, call("ping"))
		if got != "upstream" {
			t.Errorf("id = %q, want upstream", got)
		}
	})

	t.Run("custom generator", func(t *testing.T) {
		var got string
		mw := RequestIDWithGenerator(func() string { return "fixed" })
		_, _ = mw(captureRequestID(&got))(context.Background(), call("ping"))
		if got != "fixed" {
			t.Errorf("id = %q, want fixed", got)
		}
	})
}

func TestRequestIDFromContextEmpty(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
