package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// HTTP is a long-running HTTP listener for routes built from Exchanges.
// It adds a /health endpoint, optional CORS and graceful shutdown with
// connection draining.
type HTTP struct {
	addr         string
	readTimeout  time.Duration
	writeTimeout time.Duration
	corsConfig   *CORSConfig
	shutdown     ShutdownConfig

	mu         sync.RWMutex
	listenAddr string
	server     *http.Server
	drainer    *ShutdownManager
}

// HTTPOption configures the HTTP listener.
type HTTPOption func(*HTTP)

// WithReadTimeout sets the read timeout for HTTP requests.
func WithReadTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.readTimeout = d
	}
}

// WithWriteTimeout sets the write timeout for HTTP responses.
func WithWriteTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.writeTimeout = d
	}
}

// NewHTTP creates a new HTTP listener for addr.
func NewHTTP(addr string, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		addr:         addr,
		readTimeout:  30 * time.Second,
		writeTimeout: 30 * time.Second,
		shutdown:     DefaultShutdownConfig(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Addr returns the configured address.
func (h *HTTP) Addr() string {
	return h.addr
}

// ListenAddr returns the address the listener is bound to, once serving.
func (h *HTTP) ListenAddr() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.listenAddr
}

// Handler returns routes wrapped with the listener's health endpoint,
// draining and CORS.
func (h *HTTP) Handler(routes http.Handler) http.Handler {
	h.mu.Lock()
	if h.drainer == nil {
		h.drainer = NewShutdownManager(h.shutdown)
	}
	drainer := h.drainer
	h.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		status := "ok"
		code := http.StatusOK
		if drainer.IsDraining() {
			status = "draining"
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
	})
	mux.Handle("/", drainer.Track(routes))

	if h.corsConfig != nil {
		return CORSHandler(*h.corsConfig, mux)
	}
	return mux
}

// Serve listens on the configured address and serves routes until ctx is
// canceled, then drains in-flight requests and shuts down.
func (h *HTTP) Serve(ctx context.Context, routes http.Handler) error {
	handler := h.Handler(routes)

	listener, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	h.mu.Lock()
	h.listenAddr = listener.Addr().String()
	h.server = &http.Server{
		Handler:      handler,
		ReadTimeout:  h.readTimeout,
		WriteTimeout: h.writeTimeout,
	}
	server := h.server
	drainer := h.drainer
	h.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), drainer.config.Timeout)
		defer cancel()
		drainErr := drainer.Shutdown(shutdownCtx)
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if drainErr != nil {
			return drainErr
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
