package transport

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-dispatch/protocol"
)

// Handler processes incoming MCP requests.
type Handler interface {
	HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error)
}

// HandlerFunc is an adapter to allow ordinary functions as handlers.
type HandlerFunc func(ctx context.Context, req *protocol.Request) (*protocol.Response, error)

// HandleRequest calls f(ctx, req).
func (f HandlerFunc) HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	return f(ctx, req)
}

// Transport carries JSON-RPC messages between a client and a Handler.
type Transport interface {
	// Run drives the read/dispatch/write cycle until the channel closes,
	// ctx is canceled, or, for request/response transports, the single
	// exchange completes.
	Run(ctx context.Context, h Handler) error

	// SessionID identifies the logical conversation carried by this
	// transport.
	SessionID() string
}

// Process parses one raw message, dispatches it to h and returns the
// response to transmit. It returns nil for notifications, whether or not
// the handler failed. Framing errors are always answered, keyed to the id
// when it could be recovered.
func Process(ctx context.Context, h Handler, data []byte) (resp *protocol.Response) {
	req, perr := protocol.ParseRequest(data)
	if perr != nil {
		var id []byte
		if req != nil {
			id = req.ID
		}
		return protocol.NewErrorResponse(id, perr)
	}

	defer func() {
		if r := recover(); r != nil {
			resp = nil
			if !req.IsNotification() {
				resp = protocol.NewErrorResponse(req.ID, protocol.NewInternalError(fmt.Sprintf("panic: %v", r)))
			}
		}
	}()

	resp, err := h.HandleRequest(ctx, req)
	if req.IsNotification() {
		return nil
	}
	if err != nil {
		return protocol.NewErrorResponse(req.ID, protocol.AsError(err))
	}
	if resp == nil {
		return protocol.NewResponse(req.ID, nil)
	}
	return resp
}
