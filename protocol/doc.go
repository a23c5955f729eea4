// Package protocol defines the JSON-RPC 2.0 envelope, error codes and MCP
// method names shared by the server, transports and client.
//
// # Requests
//
// ParseRequest turns one raw message into a Request, classifying framing
// failures:
//
//	req, rpcErr := protocol.ParseRequest(line)
//	if rpcErr != nil {
//	    // malformed JSON -> -32700, missing method -> -32600
//	}
//
// A request without an id, or with a null id, is a notification and must
// never be answered.
//
// # Responses
//
// NewResponse and NewErrorResponse build responses. Marshaling always
// writes "jsonrpc":"2.0" and the echoed id, and writes an empty or nil map
// result as {} rather than null.
//
// # Error Codes
//
//	CodeParseError     = -32700  // Invalid JSON
//	CodeInvalidRequest = -32600  // Not a valid request object
//	CodeMethodNotFound = -32601  // Unknown method
//	CodeInvalidParams  = -32602  // Missing or malformed params
//	CodeInternalError  = -32603  // Handler failure
//	CodeNotFound       = -32001  // Resource, tool or prompt not registered
//	CodeUnauthorized   = -32002
//	CodeRateLimited    = -32003
package protocol
