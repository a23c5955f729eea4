package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/felixgeelhaar/mcp-dispatch/protocol"
)

// WebSocketConn carries MCP over one upgraded WebSocket connection. Each
// text message holds one JSON-RPC message; the connection is one session.
type WebSocketConn struct {
	conn      *websocket.Conn
	sessionID string

	readTimeout  time.Duration
	writeTimeout time.Duration

	mu sync.Mutex
}

// WebSocketOption configures a WebSocketConn.
type WebSocketOption func(*WebSocketConn)

// WithWebSocketReadTimeout sets the idle timeout between client messages.
func WithWebSocketReadTimeout(d time.Duration) WebSocketOption {
	return func(c *WebSocketConn) {
		c.readTimeout = d
	}
}

// WithWebSocketWriteTimeout sets the write timeout for responses.
func WithWebSocketWriteTimeout(d time.Duration) WebSocketOption {
	return func(c *WebSocketConn) {
		c.writeTimeout = d
	}
}

// NewWebSocketConn wraps an upgraded connection with a fresh session id.
func NewWebSocketConn(conn *websocket.Conn, opts ...WebSocketOption) *WebSocketConn {
	c := &WebSocketConn{
		conn:         conn,
		sessionID:    uuid.NewString(),
		readTimeout:  60 * time.Second,
		writeTimeout: 10 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Upgrade upgrades an HTTP request to a WebSocketConn. checkOrigin may be
// nil to allow every origin.
func Upgrade(w http.ResponseWriter, r *http.Request, checkOrigin func(*http.Request) bool, opts ...WebSocketOption) (*WebSocketConn, error) {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket upgrade: %w", err)
	}
	return NewWebSocketConn(conn, opts...), nil
}

// SessionID returns the session id of this connection.
func (c *WebSocketConn) SessionID() string {
	return c.sessionID
}

// Run serves messages until the client closes the connection or ctx is
// canceled. A normal close returns nil.
func (c *WebSocketConn) Run(ctx context.Context, h Handler) error {
	ctx = protocol.ContextWithSessionID(ctx, c.sessionID)

	stop := context.AfterFunc(ctx, func() {
		c.close(websocket.CloseGoingAway)
	})
	defer stop()
	defer c.conn.Close()

	for {
		if c.readTimeout > 0 {
			_ = c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		}

		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("websocket read: %w", err)
		}
		if msgType != websocket.TextMessage {
			continue
		}

		resp := Process(ctx, h, message)
		if resp == nil {
			continue
		}
		if err := c.write(resp); err != nil {
			return err
		}
	}
}

func (c *WebSocketConn) write(resp *protocol.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		data, _ = json.Marshal(protocol.NewErrorResponse(resp.ID, protocol.NewInternalError(err.Error())))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return fmt.Errorf("websocket write: %w", err)
	}
	return nil
}

func (c *WebSocketConn) close(code int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, ""), time.Now().Add(time.Second))
	_ = c.conn.Close()
}
