package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/mcp-dispatch/middleware"
	"github.com/felixgeelhaar/mcp-dispatch/protocol"
	"github.com/felixgeelhaar/mcp-dispatch/sessions"
)

// DefaultMaxRequestBytes bounds the body of a single HTTP exchange.
const DefaultMaxRequestBytes = 10 * 1024 * 1024

// Exchange is the request/response transport: it carries exactly one
// JSON-RPC message from an HTTP request and writes the reply to the
// response. The session id comes from the Mcp-Session-Id header, or is
// generated when the client sent none, and is echoed on the response.
type Exchange struct {
	w         http.ResponseWriter
	r         *http.Request
	sessionID string
	resumed   bool
	store     sessions.Store
	maxBytes  int64
	logger    middleware.Logger
}

// ExchangeOption configures an Exchange.
type ExchangeOption func(*Exchange)

// WithSessionStore records every session seen by the exchange in store and
// enables session termination with HTTP DELETE.
func WithSessionStore(store sessions.Store) ExchangeOption {
	return func(e *Exchange) {
		e.store = store
	}
}

// WithMaxRequestBytes limits the request body size.
func WithMaxRequestBytes(n int64) ExchangeOption {
	return func(e *Exchange) {
		e.maxBytes = n
	}
}

// WithExchangeLogger sets the logger used for session events.
func WithExchangeLogger(l middleware.Logger) ExchangeOption {
	return func(e *Exchange) {
		e.logger = l
	}
}

// NewExchange creates the transport for a single HTTP request.
func NewExchange(w http.ResponseWriter, r *http.Request, opts ...ExchangeOption) *Exchange {
	e := &Exchange{
		w:         w,
		r:         r,
		sessionID: r.Header.Get(protocol.SessionHeader),
		maxBytes:  DefaultMaxRequestBytes,
		logger:    middleware.NopLogger{},
	}
	e.resumed = e.sessionID != ""
	if !e.resumed {
		e.sessionID = uuid.NewString()
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// SessionID returns the session id of this exchange.
func (e *Exchange) SessionID() string {
	return e.sessionID
}

// Run handles the single message carried by the request. JSON-RPC errors
// are delivered with status 200; notifications get 202 and no body. The
// returned error reports transport failures only.
func (e *Exchange) Run(ctx context.Context, h Handler) error {
	e.w.Header().Set(protocol.SessionHeader, e.sessionID)

	switch e.r.Method {
	case http.MethodPost:
	case http.MethodDelete:
		return e.terminate(ctx)
	default:
		e.w.Header().Set("Allow", "POST, DELETE")
		e.w.WriteHeader(http.StatusMethodNotAllowed)
		return nil
	}

	body, err := io.ReadAll(http.MaxBytesReader(e.w, e.r.Body, e.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			e.writeJSON(http.StatusRequestEntityTooLarge,
				protocol.NewErrorResponse(nil, protocol.NewInvalidRequest("request body too large")))
			return nil
		}
		return fmt.Errorf("read request body: %w", err)
	}

	if e.store != nil {
		if err := e.recordSession(ctx); err != nil {
			e.writeJSON(http.StatusServiceUnavailable,
				protocol.NewErrorResponse(nil, protocol.NewInternalError("session store unavailable")))
			return err
		}
	}

	resp := Process(protocol.ContextWithSessionID(ctx, e.sessionID), h, body)
	if resp == nil {
		e.w.WriteHeader(http.StatusAccepted)
		return nil
	}
	return e.writeJSON(http.StatusOK, resp)
}

// recordSession touches the session in the store. A client-supplied id the
// store does not know, because it expired or was issued by another
// process, is adopted and logged.
func (e *Exchange) recordSession(ctx context.Context) error {
	if e.resumed {
		ok, err := e.store.Exists(ctx, e.sessionID)
		if err != nil {
			return fmt.Errorf("session lookup: %w", err)
		}
		if !ok {
			e.logger.Warn("adopting unknown session", middleware.F("session_id", e.sessionID))
		}
	}
	if err := e.store.Touch(ctx, e.sessionID); err != nil {
		return fmt.Errorf("session touch: %w", err)
	}
	return nil
}

func (e *Exchange) terminate(ctx context.Context) error {
	if e.r.Header.Get(protocol.SessionHeader) == "" {
		e.w.WriteHeader(http.StatusBadRequest)
		return nil
	}
	if e.store != nil {
		if err := e.store.Delete(ctx, e.sessionID); err != nil {
			e.w.WriteHeader(http.StatusServiceUnavailable)
			return err
		}
	}
	e.w.WriteHeader(http.StatusNoContent)
	return nil
}

func (e *Exchange) writeJSON(status int, resp *protocol.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		status = http.StatusOK
		data, _ = json.Marshal(protocol.NewErrorResponse(resp.ID, protocol.NewInternalError(err.Error())))
	}
	e.w.Header().Set("Content-Type", "application/json")
	e.w.WriteHeader(status)
	if _, err := e.w.Write(data); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

// ErrorFunc receives transport failures from HTTPHandler.
type ErrorFunc func(r *http.Request, err error)

// HTTPHandler serves h over HTTP, running one Exchange per request.
// onError may be nil.
func HTTPHandler(h Handler, onError ErrorFunc, opts ...ExchangeOption) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := NewExchange(w, r, opts...).Run(r.Context(), h); err != nil && onError != nil {
			onError(r, err)
		}
	})
}
