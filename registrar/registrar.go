package registrar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/felixgeelhaar/mcp-dispatch/middleware"
	"github.com/felixgeelhaar/mcp-dispatch/protocol"
	"github.com/felixgeelhaar/mcp-dispatch/server"
	"github.com/felixgeelhaar/mcp-dispatch/transport"
)

// Factory constructs a fresh, unstarted server. It is invoked once per
// launch: once per stdio process, HTTP exchange or WebSocket connection.
type Factory func() (*server.Server, error)

// Router is the route registration surface of an external HTTP router.
// *http.ServeMux satisfies it.
type Router interface {
	Handle(pattern string, handler http.Handler)
}

// ErrUnknownHandle is returned for handles that were never registered.
var ErrUnknownHandle = errors.New("unknown server handle")

// Option configures a Registrar.
type Option func(*Registrar)

// WithLogger sets the logger used for launch and transport failures.
func WithLogger(l middleware.Logger) Option {
	return func(r *Registrar) {
		r.logger = l
	}
}

// WithStdioOptions applies opts to every stdio transport created by
// LocalServer.
func WithStdioOptions(opts ...transport.StdioOption) Option {
	return func(r *Registrar) {
		r.stdioOpts = append(r.stdioOpts, opts...)
	}
}

// WithExchangeOptions applies opts to every HTTP exchange.
func WithExchangeOptions(opts ...transport.ExchangeOption) Option {
	return func(r *Registrar) {
		r.exchangeOpts = append(r.exchangeOpts, opts...)
	}
}

// WithWebSocketOptions applies opts to every WebSocket connection.
func WithWebSocketOptions(opts ...transport.WebSocketOption) Option {
	return func(r *Registrar) {
		r.wsOpts = append(r.wsOpts, opts...)
	}
}

// WithOriginCheck sets the origin check for WebSocket upgrades. By
// default every origin is accepted.
func WithOriginCheck(fn func(*http.Request) bool) Option {
	return func(r *Registrar) {
		r.checkOrigin = fn
	}
}

// Registrar binds server factories to local handles and web routes.
// Registration has no side effects: servers are only constructed when a
// bound entry point is invoked.
type Registrar struct {
	mu        sync.RWMutex
	local     map[string]Factory
	web       map[string]Factory
	websocket map[string]Factory

	logger       middleware.Logger
	stdioOpts    []transport.StdioOption
	exchangeOpts []transport.ExchangeOption
	wsOpts       []transport.WebSocketOption
	checkOrigin  func(*http.Request) bool
}

// New creates an empty Registrar.
func New(opts ...Option) *Registrar {
	r := &Registrar{
		local:     make(map[string]Factory),
		web:       make(map[string]Factory),
		websocket: make(map[string]Factory),
		logger:    middleware.NopLogger{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Local binds handle to a stdio launch of f. A later registration for
// the same handle replaces the earlier one.
func (r *Registrar) Local(handle string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.local[handle] = f
}

// Web binds route to HTTP exchanges served by f.
func (r *Registrar) Web(route string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.web[route] = f
}

// WebSocket binds route to WebSocket connections served by f.
func (r *Registrar) WebSocket(route string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.websocket[route] = f
}

// LocalServer returns the launcher bound to handle. The launcher builds
// the server, starts it and runs the stdio transport until input ends or
// ctx is canceled.
func (r *Registrar) LocalServer(handle string) (func(ctx context.Context) error, bool) {
	r.mu.RLock()
	f, ok := r.local[handle]
	stdioOpts := append([]transport.StdioOption(nil), r.stdioOpts...)
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	return func(ctx context.Context) error {
		srv, err := build(f)
		if err != nil {
			return err
		}
		t := transport.NewStdio(stdioOpts...)
		r.logger.Info("serving stdio",
			middleware.F("handle", handle),
			middleware.F("session_id", t.SessionID()),
		)
		return srv.Run(ctx, t)
	}, true
}

// WebServer returns the factory bound to route.
func (r *Registrar) WebServer(route string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.web[route]
	return f, ok
}

// Launch runs the local server bound to handle.
func (r *Registrar) Launch(ctx context.Context, handle string) error {
	run, ok := r.LocalServer(handle)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, handle)
	}
	return run(ctx)
}

// Binding describes one registration.
type Binding struct {
	Kind   string
	Handle string
}

// Bindings lists every registration, sorted by kind then handle.
func (r *Registrar) Bindings() []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Binding
	for kind, m := range map[string]map[string]Factory{
		"local":     r.local,
		"web":       r.web,
		"websocket": r.websocket,
	} {
		for handle := range m {
			out = append(out, Binding{Kind: kind, Handle: handle})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Handle < out[j].Handle
	})
	return out
}

// Mount registers every web and WebSocket route on router.
func (r *Registrar) Mount(router Router) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for route, f := range r.web {
		router.Handle(route, r.exchangeHandler(route, f))
	}
	for route, f := range r.websocket {
		router.Handle(route, r.websocketHandler(route, f))
	}
}

// Handler returns a ServeMux with every web and WebSocket route mounted.
func (r *Registrar) Handler() http.Handler {
	mux := http.NewServeMux()
	r.Mount(mux)
	return mux
}

func (r *Registrar) exchangeHandler(route string, f Factory) http.Handler {
	opts := append([]transport.ExchangeOption{transport.WithExchangeLogger(r.logger)}, r.exchangeOpts...)

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		srv, err := build(f)
		if err != nil {
			r.logger.Error("server construction failed",
				middleware.F("route", route),
				middleware.F("error", err.Error()),
			)
			writeLaunchError(w, err)
			return
		}

		ex := transport.NewExchange(w, req, opts...)
		if err := srv.Run(req.Context(), ex); err != nil {
			r.logger.Error("exchange failed",
				middleware.F("route", route),
				middleware.F("session_id", ex.SessionID()),
				middleware.F("error", err.Error()),
			)
		}
	})
}

func (r *Registrar) websocketHandler(route string, f Factory) http.Handler {
	opts := append([]transport.WebSocketOption(nil), r.wsOpts...)
	checkOrigin := r.checkOrigin

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		srv, err := build(f)
		if err != nil {
			r.logger.Error("server construction failed",
				middleware.F("route", route),
				middleware.F("error", err.Error()),
			)
			writeLaunchError(w, err)
			return
		}

		conn, err := transport.Upgrade(w, req, checkOrigin, opts...)
		if err != nil {
			r.logger.Warn("websocket upgrade failed",
				middleware.F("route", route),
				middleware.F("error", err.Error()),
			)
			return
		}

		r.logger.Info("websocket session opened",
			middleware.F("route", route),
			middleware.F("session_id", conn.SessionID()),
		)
		if err := srv.Run(req.Context(), conn); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Error("websocket session failed",
				middleware.F("route", route),
				middleware.F("session_id", conn.SessionID()),
				middleware.F("error", err.Error()),
			)
		}
	})
}

// build constructs and starts a server so that descriptor errors surface
// before any transport is touched.
func build(f Factory) (*server.Server, error) {
	srv, err := f()
	if err != nil {
		return nil, fmt.Errorf("construct server: %w", err)
	}
	if srv == nil {
		return nil, errors.New("construct server: factory returned nil")
	}
	if err := srv.Start(); err != nil {
		return nil, fmt.Errorf("start server: %w", err)
	}
	return srv, nil
}

func writeLaunchError(w http.ResponseWriter, err error) {
	resp := protocol.NewErrorResponse(nil, protocol.NewInternalError(err.Error()))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(resp)
}
