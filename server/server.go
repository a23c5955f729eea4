package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/mcp-dispatch/middleware"
	"github.com/felixgeelhaar/mcp-dispatch/protocol"
	"github.com/felixgeelhaar/mcp-dispatch/transport"
)

// Info contains server metadata exposed to clients.
type Info struct {
	Name         string
	Version      string
	Instructions string
	Capabilities Capabilities
}

// Capabilities declares what features the server supports. A capability is
// also advertised whenever at least one descriptor of that kind is
// registered.
type Capabilities struct {
	Tools     bool
	Resources bool
	Prompts   bool
}

// State is the lifecycle state of a Server.
type State int

// Lifecycle states.
const (
	StateUnstarted State = iota
	StateStarted
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateStarted:
		return "started"
	case StateRunning:
		return "running"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Option configures a Server.
type Option func(*Server)

// WithResources registers resources in order.
func WithResources(resources ...Resource) Option {
	return func(s *Server) {
		s.resources = append(s.resources, resources...)
	}
}

// WithTools registers tools in order.
func WithTools(tools ...Tool) Option {
	return func(s *Server) {
		s.tools = append(s.tools, tools...)
	}
}

// WithPrompts registers prompts in order.
func WithPrompts(prompts ...Prompt) Option {
	return func(s *Server) {
		s.prompts = append(s.prompts, prompts...)
	}
}

// WithMethod binds a custom JSON-RPC method, replacing a built-in of the
// same name.
func WithMethod(name string, m Method) Option {
	return func(s *Server) {
		s.registry.Register(name, m)
	}
}

// WithMiddleware appends middleware to the dispatch chain.
func WithMiddleware(mw ...middleware.Middleware) Option {
	return func(s *Server) {
		s.middleware = append(s.middleware, mw...)
	}
}

// Server is the MCP server instance. Descriptors and methods are collected
// until Start; from then on requests are served against an immutable
// Context.
type Server struct {
	mu sync.RWMutex

	info       Info
	resources  []Resource
	tools      []Tool
	prompts    []Prompt
	registry   *Registry
	middleware []middleware.Middleware
	errs       []error

	state   State
	ctx     *Context
	methods *Registry
	handler middleware.HandlerFunc
}

// New creates a new MCP server with the given info and options.
func New(info Info, opts ...Option) *Server {
	s := &Server{
		info:     info,
		registry: NewRegistry(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Info returns the server info.
func (s *Server) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// Use appends middleware to the dispatch chain. It has no effect after
// Start.
func (s *Server) Use(mw ...middleware.Middleware) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.middleware = append(s.middleware, mw...)
}

// AddResource registers a resource. It has no effect after Start.
func (s *Server) AddResource(r Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources = append(s.resources, r)
}

// AddTool registers a tool. It has no effect after Start.
func (s *Server) AddTool(t Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools = append(s.tools, t)
}

// AddPrompt registers a prompt. It has no effect after Start.
func (s *Server) AddPrompt(p Prompt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, p)
}

// HandleMethod binds a custom method. It has no effect after Start.
func (s *Server) HandleMethod(name string, m Method) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry.Register(name, m)
}

func (s *Server) recordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

// Tool starts building a new tool with the given name.
func (s *Server) Tool(name string) *ToolBuilder {
	return &ToolBuilder{
		tool:   &typedTool{name: name},
		server: s,
	}
}

// Resource starts building a new resource served at uri.
func (s *Server) Resource(uri string) *ResourceBuilder {
	return &ResourceBuilder{
		resource: &funcResource{uri: uri},
		server:   s,
	}
}

// Prompt starts building a new prompt with the given name.
func (s *Server) Prompt(name string) *PromptBuilder {
	return &PromptBuilder{
		prompt: &funcPrompt{name: name},
		server: s,
	}
}

// Start collects the registered descriptors into the server Context and
// compiles the middleware chain. Builder errors are reported here. Calling
// Start again after a successful start is a no-op.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUnstarted {
		return nil
	}
	if err := errors.Join(s.errs...); err != nil {
		return err
	}

	s.ctx = newContext(s.info, s.resources, s.tools, s.prompts)
	s.methods = s.registry.clone()
	s.handler = middleware.Chain(s.middleware...)(s.dispatch)
	s.state = StateStarted
	return nil
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Context returns the started server's Context, or nil before Start.
func (s *Server) Context() *Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

// Methods returns the names of the methods the server dispatches.
func (s *Server) Methods() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.methods != nil {
		return s.methods.Names()
	}
	return s.registry.Names()
}

// HandleRequest runs req through the middleware chain and the method
// registry. Every failure is returned as a *protocol.Error.
func (s *Server) HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	s.mu.RLock()
	handler := s.handler
	s.mu.RUnlock()

	if handler == nil {
		return nil, protocol.NewInternalError(ErrNotStarted.Error())
	}

	resp, err := handler(ctx, req)
	if err != nil {
		return nil, toRPCError(err)
	}
	return resp, nil
}

func (s *Server) dispatch(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	m, ok := s.methods.Lookup(req.Method)
	if !ok {
		return nil, protocol.NewMethodNotFound("Method not found: " + req.Method)
	}

	resp, err := m.Handle(ctx, req, s.ctx)
	if err != nil {
		return nil, toRPCError(err)
	}
	if resp == nil {
		resp = protocol.NewResponse(req.ID, nil)
	}
	return resp, nil
}

// Run starts the server if needed and hands control to t until it
// returns.
func (s *Server) Run(ctx context.Context, t transport.Transport) error {
	if err := s.Start(); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = StateRunning
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state = StateStarted
		s.mu.Unlock()
	}()

	return t.Run(ctx, s)
}
