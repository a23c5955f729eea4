// Package middleware wraps the server's method dispatch.
//
// A Middleware receives the next HandlerFunc and returns a new one:
//
//	srv := server.New(info, server.WithMiddleware(
//	    middleware.Recover(),
//	    middleware.RequestID(),
//	    middleware.Logging(middleware.NewZapLogger(zapLogger)),
//	))
//
// Middleware sees every request after framing and before method lookup,
// including notifications, whose results are discarded by the transport.
//
// Stack assembles the production chain from a StackConfig: panic
// recovery, request ids, OpenTelemetry spans and metrics, logging, a
// params size limit, per-session rate limiting and a request timeout.
package middleware
