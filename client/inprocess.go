package client

import (
	"context"
	"encoding/json"

	"github.com/felixgeelhaar/mcp-dispatch/protocol"
	"github.com/felixgeelhaar/mcp-dispatch/transport"
)

// InProcess delivers messages directly to a handler, going through the
// same framing as the network transports.
type InProcess struct {
	handler   transport.Handler
	sessionID string
}

// NewInProcess creates a transport that calls h. sessionID is attached to
// the context of every request when not empty.
func NewInProcess(h transport.Handler, sessionID string) *InProcess {
	return &InProcess{handler: h, sessionID: sessionID}
}

// RoundTrip implements Transport.
func (p *InProcess) RoundTrip(ctx context.Context, msg []byte) ([]byte, error) {
	if p.sessionID != "" {
		ctx = protocol.ContextWithSessionID(ctx, p.sessionID)
	}
	resp := transport.Process(ctx, p.handler, msg)
	if resp == nil {
		return nil, nil
	}
	return json.Marshal(resp)
}

// Close implements Transport.
func (p *InProcess) Close() error { return nil }
