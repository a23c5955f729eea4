package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/mcp-dispatch/protocol"
)

// Timeout bounds each request by d. Handlers that honor their context and
// fail because the deadline passed are reported as internal errors.
func Timeout(d time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			resp, err := next(ctx, req)
			if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, protocol.NewInternalError(fmt.Sprintf("%s timed out after %s", req.Method, d))
			}
			return resp, err
		}
	}
}
