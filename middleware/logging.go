package middleware

import (
	"context"
	"time"

	"github.com/felixgeelhaar/mcp-dispatch/protocol"
)

// Logger is the structured logger used by the middleware package.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// F creates a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logging logs every dispatched request with its method, duration,
// session and request ids. Failures are logged at error level together
// with their JSON-RPC code.
func Logging(logger Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			fields := []Field{
				F("method", req.Method),
				F("duration", time.Since(start)),
			}
			if id := protocol.SessionIDFromContext(ctx); id != "" {
				fields = append(fields, F("session_id", id))
			}
			if id := RequestIDFromContext(ctx); id != "" {
				fields = append(fields, F("request_id", id))
			}
			if req.IsNotification() {
				fields = append(fields, F("notification", true))
			}

			rpcErr := protocol.AsError(err)
			if rpcErr == nil && resp != nil {
				rpcErr = resp.Error
			}
			if rpcErr != nil {
				fields = append(fields, F("code", rpcErr.Code), F("error", rpcErr.Message))
				logger.Error("request failed", fields...)
			} else {
				logger.Info("request completed", fields...)
			}

			return resp, err
		}
	}
}

// NopLogger discards every entry.
type NopLogger struct{}

func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Warn(string, ...Field)  {}
