package middleware

import "time"

// StackConfig selects the middleware assembled by Stack. Zero values
// disable the corresponding middleware.
type StackConfig struct {
	Logger         Logger
	Timeout        time.Duration
	RateLimit      int
	RateBurst      int
	MaxParamsBytes int64
	OTelOptions    []OTelOption
	Tracing        bool
}

// Stack builds the middleware chain for cfg, outermost first: recovery,
// request ids, tracing, logging, size and rate limits, then the timeout.
func Stack(cfg StackConfig) []Middleware {
	logger := cfg.Logger
	if logger == nil {
		logger = NopLogger{}
	}

	stack := []Middleware{
		RecoverWithLogger(logger),
		RequestID(),
	}
	if cfg.Tracing {
		stack = append(stack, OTel(cfg.OTelOptions...))
	}
	stack = append(stack, Logging(logger))
	if cfg.MaxParamsBytes > 0 {
		stack = append(stack, SizeLimit(cfg.MaxParamsBytes, WithSizeLimitLogger(logger)))
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = cfg.RateLimit
		}
		stack = append(stack, RateLimitBySession(cfg.RateLimit, burst, WithRateLimitLogger(logger)))
	}
	if cfg.Timeout > 0 {
		stack = append(stack, Timeout(cfg.Timeout))
	}
	return stack
}

// DefaultStack is recovery, request ids and logging.
func DefaultStack(logger Logger) []Middleware {
	return Stack(StackConfig{Logger: logger})
}
