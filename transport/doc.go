// Package transport carries JSON-RPC messages between MCP clients and a
// Handler.
//
// Every transport satisfies the same contract, so a server never branches
// on which one is active:
//
//	type Transport interface {
//	    Run(ctx context.Context, h Handler) error
//	    SessionID() string
//	}
//
// # Stdio
//
// Newline-delimited messages on stdin/stdout. One process is one session,
// identified by a UUID generated at construction:
//
//	err := srv.Run(ctx, transport.NewStdio())
//
// # HTTP
//
// An Exchange carries exactly one message per HTTP request. The session is
// taken from the Mcp-Session-Id header, or generated, and echoed back.
// HTTPHandler runs one Exchange per request; HTTP serves such routes with a
// /health endpoint, CORS and graceful shutdown:
//
//	mux := http.NewServeMux()
//	mux.Handle("/mcp", transport.HTTPHandler(srv, nil))
//	err := transport.NewHTTP(":8080").Serve(ctx, mux)
//
// # WebSocket
//
// A WebSocketConn carries one session over an upgraded connection, one
// message per text frame.
package transport
