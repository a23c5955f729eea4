// Package testutil helps test MCP servers in-process.
//
//	func TestGreet(t *testing.T) {
//	    srv := server.New(server.Info{Name: "test", Version: "1.0.0"})
//	    srv.Tool("greet").Handler(func(ctx context.Context, in GreetInput) (string, error) {
//	        return "Hello, " + in.Name, nil
//	    })
//
//	    tc := testutil.NewTestClient(t, srv)
//	    if got := tc.CallText("greet", map[string]any{"name": "World"}); got != "Hello, World" {
//	        t.Errorf("got %q", got)
//	    }
//	}
package testutil

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/mcp-dispatch/client"
	"github.com/felixgeelhaar/mcp-dispatch/protocol"
	"github.com/felixgeelhaar/mcp-dispatch/server"
	"github.com/felixgeelhaar/mcp-dispatch/transport"
)

// TestClient drives a started server through the full JSON-RPC framing
// without any network.
type TestClient struct {
	*client.Client

	t         testing.TB
	sessionID string
}

// NewTestClient starts srv and performs the initialize handshake. Start
// failures fail the test.
func NewTestClient(t testing.TB, srv *server.Server) *TestClient {
	t.Helper()

	if err := srv.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}

	tc := NewTestClientWithHandler(t, srv)
	if _, err := tc.Initialize(context.Background()); err != nil {
		t.Fatalf("failed to initialize server: %v", err)
	}
	return tc
}

// NewTestClientWithHandler creates a client for an arbitrary handler,
// such as a Recorder. No handshake is performed.
func NewTestClientWithHandler(t testing.TB, h transport.Handler) *TestClient {
	t.Helper()
	id := uuid.NewString()
	c := client.New(client.NewInProcess(h, id))
	t.Cleanup(func() { _ = c.Close() })
	return &TestClient{Client: c, t: t, sessionID: id}
}

// SessionID returns the session id attached to every request.
func (tc *TestClient) SessionID() string {
	return tc.sessionID
}

// CallText calls a tool and returns its text. Protocol errors and tool
// failures fail the test.
func (tc *TestClient) CallText(name string, args any) string {
	tc.t.Helper()

	res, err := tc.CallTool(context.Background(), name, args)
	if err != nil {
		tc.t.Fatalf("call tool %q: %v", name, err)
	}
	if res.IsError {
		tc.t.Fatalf("tool %q failed: %s", name, res.Text())
	}
	return res.Text()
}

// ReadText reads a resource and returns its text.
func (tc *TestClient) ReadText(uri string) string {
	tc.t.Helper()

	rc, err := tc.ReadResource(context.Background(), uri)
	if err != nil {
		tc.t.Fatalf("read resource %q: %v", uri, err)
	}
	return rc.Text
}

// Raw sends method with params and returns the decoded response envelope
// as the client saw it, including error responses.
func (tc *TestClient) Raw(method string, params any) *protocol.Response {
	tc.t.Helper()

	var result json.RawMessage
	err := tc.Call(context.Background(), method, params, &result)
	if rpcErr := protocol.AsError(err); rpcErr != nil {
		return protocol.NewErrorResponse(nil, rpcErr)
	}
	var v any
	if len(result) > 0 {
		if err := json.Unmarshal(result, &v); err != nil {
			tc.t.Fatalf("decode result: %v", err)
		}
	}
	return protocol.NewResponse(nil, v)
}

// AssertToolExists reports an error if no tool is named name.
func (tc *TestClient) AssertToolExists(name string) {
	tc.t.Helper()

	tools, err := tc.ListTools(context.Background())
	if err != nil {
		tc.t.Fatalf("list tools: %v", err)
	}
	for _, tool := range tools {
		if tool.Name == name {
			return
		}
	}
	tc.t.Errorf("tool %q not found", name)
}

// AssertResourceExists reports an error if no resource has uri.
func (tc *TestClient) AssertResourceExists(uri string) {
	tc.t.Helper()

	resources, err := tc.ListResources(context.Background())
	if err != nil {
		tc.t.Fatalf("list resources: %v", err)
	}
	for _, r := range resources {
		if r.URI == uri {
			return
		}
	}
	tc.t.Errorf("resource %q not found", uri)
}

// AssertPromptExists reports an error if no prompt is named name.
func (tc *TestClient) AssertPromptExists(name string) {
	tc.t.Helper()

	prompts, err := tc.ListPrompts(context.Background())
	if err != nil {
		tc.t.Fatalf("list prompts: %v", err)
	}
	for _, p := range prompts {
		if p.Name == name {
			return
		}
	}
	tc.t.Errorf("prompt %q not found", name)
}

// Recorder is a transport.Handler that records every request before
// passing it on.
type Recorder struct {
	next transport.Handler

	mu       sync.Mutex
	requests []*protocol.Request
	sessions []string
}

// NewRecorder wraps next.
func NewRecorder(next transport.Handler) *Recorder {
	return &Recorder{next: next}
}

// HandleRequest implements transport.Handler.
func (r *Recorder) HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.sessions = append(r.sessions, protocol.SessionIDFromContext(ctx))
	r.mu.Unlock()
	return r.next.HandleRequest(ctx, req)
}

// Requests returns the recorded requests in arrival order.
func (r *Recorder) Requests() []*protocol.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*protocol.Request(nil), r.requests...)
}

// Methods returns the recorded method names in arrival order.
func (r *Recorder) Methods() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.requests))
	for i, req := range r.requests {
		out[i] = req.Method
	}
	return out
}

// Sessions returns the session id seen with each recorded request.
func (r *Recorder) Sessions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sessions...)
}

// Reset discards the recorded requests.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = nil
	r.sessions = nil
}
