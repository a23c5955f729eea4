// Package config loads process configuration from MCP_* environment
// variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/felixgeelhaar/mcp-dispatch/middleware"
	"github.com/felixgeelhaar/mcp-dispatch/sessions"
)

// Config is the process configuration. Defaults are provided via struct
// tags.
type Config struct {
	// Addr is the HTTP listen address. ENV: MCP_ADDR
	Addr string `env:"MCP_ADDR,default=:8080"`
	// Route is the JSON-RPC exchange route. ENV: MCP_ROUTE
	Route string `env:"MCP_ROUTE,default=/mcp"`
	// WebSocketRoute is the WebSocket route; empty disables it. ENV: MCP_WS_ROUTE
	WebSocketRoute string `env:"MCP_WS_ROUTE,default=/ws"`
	// PublicURL enables the OAuth discovery documents. ENV: MCP_PUBLIC_URL
	PublicURL   string `env:"MCP_PUBLIC_URL"`
	OAuthPrefix string `env:"MCP_OAUTH_PREFIX,default=oauth"`

	LogLevel string `env:"MCP_LOG_LEVEL,default=info"`
	// LogFile is tailed by the demo last-log-line resource. ENV: MCP_LOG_FILE
	LogFile string `env:"MCP_LOG_FILE"`

	RateLimit       int           `env:"MCP_RATE_LIMIT,default=0"`
	RateBurst       int           `env:"MCP_RATE_BURST,default=0"`
	MaxRequestBytes int64         `env:"MCP_MAX_REQUEST_BYTES,default=10485760"`
	RequestTimeout  time.Duration `env:"MCP_REQUEST_TIMEOUT,default=30s"`
	ShutdownTimeout time.Duration `env:"MCP_SHUTDOWN_TIMEOUT,default=30s"`
	Tracing         bool          `env:"MCP_TRACING,default=false"`

	SessionTTL time.Duration `env:"MCP_SESSION_TTL,default=30m"`
	// RedisAddr switches session bookkeeping to Redis. ENV: MCP_REDIS_ADDR
	RedisAddr      string `env:"MCP_REDIS_ADDR"`
	RedisKeyPrefix string `env:"MCP_REDIS_PREFIX,default=mcp:sessions:"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports invalid combinations of settings.
func (c *Config) Validate() error {
	var errs []error
	if !strings.HasPrefix(c.Route, "/") {
		errs = append(errs, fmt.Errorf("MCP_ROUTE must start with /: %q", c.Route))
	}
	if c.WebSocketRoute != "" && !strings.HasPrefix(c.WebSocketRoute, "/") {
		errs = append(errs, fmt.Errorf("MCP_WS_ROUTE must start with /: %q", c.WebSocketRoute))
	}
	if c.WebSocketRoute != "" && c.WebSocketRoute == c.Route {
		errs = append(errs, errors.New("MCP_WS_ROUTE must differ from MCP_ROUTE"))
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		errs = append(errs, errors.New("MCP_RATE_LIMIT and MCP_RATE_BURST must not be negative"))
	}
	if c.MaxRequestBytes <= 0 {
		errs = append(errs, errors.New("MCP_MAX_REQUEST_BYTES must be positive"))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("MCP_LOG_LEVEL: %w", err))
	}
	return errors.Join(errs...)
}

// Logger builds a JSON zap logger at the configured level writing to
// stderr. Stdout is reserved for the stdio transport.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

// Stack returns the middleware configuration for logger.
func (c *Config) Stack(logger middleware.Logger) middleware.StackConfig {
	return middleware.StackConfig{
		Logger:         logger,
		Timeout:        c.RequestTimeout,
		RateLimit:      c.RateLimit,
		RateBurst:      c.RateBurst,
		MaxParamsBytes: c.MaxRequestBytes,
		Tracing:        c.Tracing,
	}
}

// SessionStore returns the session store selected by the configuration
// together with a function that releases it.
func (c *Config) SessionStore(ctx context.Context) (sessions.Store, func() error, error) {
	if c.RedisAddr == "" {
		return sessions.NewMemory(c.SessionTTL), func() error { return nil }, nil
	}

	store, err := sessions.NewRedis(ctx, sessions.RedisConfig{
		Addr:      c.RedisAddr,
		KeyPrefix: c.RedisKeyPrefix,
		TTL:       c.SessionTTL,
	})
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}
