package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/felixgeelhaar/mcp-dispatch/protocol"
)

// HTTPTransport posts each message to an MCP endpoint. It adopts the
// session id the server assigns and sends it on every later request.
type HTTPTransport struct {
	endpoint string
	client   *http.Client
	headers  http.Header

	mu        sync.Mutex
	sessionID string
}

// HTTPOption configures an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(t *HTTPTransport) {
		t.client = c
	}
}

// WithHeader adds a header to every request, e.g. Authorization.
func WithHeader(key, value string) HTTPOption {
	return func(t *HTTPTransport) {
		t.headers.Add(key, value)
	}
}

// WithSession resumes an existing session.
func WithSession(id string) HTTPOption {
	return func(t *HTTPTransport) {
		t.sessionID = id
	}
}

// NewHTTPTransport creates a transport for endpoint.
func NewHTTPTransport(endpoint string, opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		endpoint: endpoint,
		client:   http.DefaultClient,
		headers:  make(http.Header),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// SessionID returns the current session id, or "" before the first reply.
func (t *HTTPTransport) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionID
}

// RoundTrip posts msg and returns the response body. A 202 reply yields
// nil. Non-2xx statuses are errors even when they carry a JSON body.
func (t *HTTPTransport) RoundTrip(ctx context.Context, msg []byte) ([]byte, error) {
	req, err := t.newRequest(ctx, http.MethodPost, bytes.NewReader(msg))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", t.endpoint, err)
	}
	defer resp.Body.Close()

	if id := resp.Header.Get(protocol.SessionHeader); id != "" {
		t.mu.Lock()
		t.sessionID = id
		t.mu.Unlock()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusAccepted:
		return nil, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
	return body, nil
}

// Close terminates the session on the server, if one was established.
func (t *HTTPTransport) Close() error {
	if t.SessionID() == "" {
		return nil
	}

	req, err := t.newRequest(context.Background(), http.MethodDelete, nil)
	if err != nil {
		return err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusMethodNotAllowed {
		return &StatusError{Code: resp.StatusCode}
	}

	t.mu.Lock()
	t.sessionID = ""
	t.mu.Unlock()
	return nil
}

func (t *HTTPTransport) newRequest(ctx context.Context, method string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, t.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range t.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if id := t.SessionID(); id != "" {
		req.Header.Set(protocol.SessionHeader, id)
	}
	return req, nil
}

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected HTTP status %d", e.Code)
	}
	return fmt.Sprintf("unexpected HTTP status %d: %s", e.Code, e.Body)
}
