package middleware

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/mcp-dispatch/protocol"
)

func TestTimeout(t *testing.T) {
	t.Run("sets a deadline", func(t *testing.T) {
		var hasDeadline bool
		_, _ = Timeout(time.Second)(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			_, hasDeadline = ctx.Deadline()
			return nil, nil
		})(context.Background(), call("ping"))

		if !hasDeadline {
			t.Error("expected deadline on context")
		}
	})

	t.Run("fast handlers are unaffected", func(t *testing.T) {
		resp, err := Timeout(time.Second)(ok)(context.Background(), call("ping"))
		if err != nil || resp.Result != "ok" {
			t.Fatalf("resp = %v, err = %v", resp, err)
		}
	})

	t.Run("expired handlers report an internal error", func(t *testing.T) {
		slow := func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}

		_, err := Timeout(10*time.Millisecond)(slow)(context.Background(), call("tools/call"))
		rpcErr := protocol.AsError(err)
		if rpcErr == nil || rpcErr.Code != protocol.CodeInternalError {
			t.Fatalf("err = %v, want internal error", err)
		}
		if !strings.Contains(rpcErr.Message, "tools/call timed out") {
			t.Errorf("Message = %q", rpcErr.Message)
		}
	})

	t.Run("parent cancellation is not rewritten", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Timeout(time.Minute)(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			return nil, ctx.Err()
		})(ctx, call("ping"))

		if err != context.Canceled {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}
