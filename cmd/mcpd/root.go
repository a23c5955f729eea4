package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/mcp-dispatch/config"
	"github.com/felixgeelhaar/mcp-dispatch/internal/demo"
	"github.com/felixgeelhaar/mcp-dispatch/middleware"
	"github.com/felixgeelhaar/mcp-dispatch/registrar"
	"github.com/felixgeelhaar/mcp-dispatch/server"
)

// Version is set via ldflags at build time.
var Version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mcpd",
		Short: "Serve and call MCP servers",
		Long: `mcpd binds the built-in MCP servers to stdio, HTTP and WebSocket
transports. Configuration is read from MCP_* environment variables.`,
		Version:      Version,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newListCmd(),
		newCallCmd(),
	)
	return root
}

// setup loads the configuration and builds the process logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newRegistrar binds every built-in server under its handle. Web routes
// live below the configured MCP route and WebSocket routes below the
// WebSocket route.
func newRegistrar(cfg *config.Config, logger *zap.Logger, opts ...registrar.Option) *registrar.Registrar {
	log := middleware.NewZapLogger(logger)
	stack := middleware.Stack(cfg.Stack(log))

	factory := func() (*server.Server, error) {
		return demo.New(demo.Options{
			LogFile:    cfg.LogFile,
			Version:    Version,
			Middleware: stack,
		})
	}

	reg := registrar.New(append([]registrar.Option{registrar.WithLogger(log)}, opts...)...)
	reg.Local(demo.Handle, factory)
	reg.Web(route(cfg.Route, demo.Handle), factory)
	reg.WebSocket(route(cfg.WebSocketRoute, demo.Handle), factory)
	return reg
}

func route(prefix, handle string) string {
	if prefix == "" || prefix == "/" {
		return "/" + handle
	}
	if prefix[len(prefix)-1] == '/' {
		return prefix + handle
	}
	return prefix + "/" + handle
}
