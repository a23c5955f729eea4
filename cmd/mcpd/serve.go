package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/mcp-dispatch/internal/demo"
	"github.com/felixgeelhaar/mcp-dispatch/registrar"
	"github.com/felixgeelhaar/mcp-dispatch/transport"
)

func newServeCmd() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve registered MCP servers",
	}
	serve.AddCommand(newServeStdioCmd(), newServeHTTPCmd())
	return serve
}

func newServeStdioCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "stdio [handle]",
		Short:   "Serve one local server over stdin and stdout",
		Example: "  mcpd serve stdio demo",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handle := demo.Handle
			if len(args) == 1 {
				handle = args[0]
			}

			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			reg := newRegistrar(cfg, logger)
			err = reg.Launch(cmd.Context(), handle)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func newServeHTTPCmd() *cobra.Command {
	var cors bool

	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve every web and WebSocket route",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			store, release, err := cfg.SessionStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := release(); err != nil {
					logger.Warn("closing session store", zap.Error(err))
				}
			}()

			reg := newRegistrar(cfg, logger, registrar.WithExchangeOptions(
				transport.WithSessionStore(store),
				transport.WithMaxRequestBytes(cfg.MaxRequestBytes),
			))

			mux := http.NewServeMux()
			reg.Mount(mux)
			if cfg.PublicURL != "" {
				registrar.OAuthRoutes(mux, cfg.PublicURL, cfg.OAuthPrefix)
			}

			opts := []transport.HTTPOption{
				transport.WithShutdownTimeout(cfg.ShutdownTimeout),
				transport.WithShutdownHooks(
					func() { logger.Info("shutting down") },
					func(err error) {
						if err != nil {
							logger.Warn("shutdown incomplete", zap.Error(err))
						}
					},
				),
			}
			if cors {
				opts = append(opts, transport.WithDefaultCORS())
			}

			for _, b := range reg.Bindings() {
				if b.Kind != "local" {
					logger.Info("route", zap.String("kind", b.Kind), zap.String("path", b.Handle))
				}
			}
			logger.Info("listening", zap.String("addr", cfg.Addr))

			err = transport.NewHTTP(cfg.Addr, opts...).Serve(ctx, mux)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&cors, "cors", false, "Allow cross-origin requests from any origin")
	return cmd
}
