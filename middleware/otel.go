package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/mcp-dispatch/protocol"
)

const instrumentationName = "github.com/felixgeelhaar/mcp-dispatch"

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*otelConfig)

type otelConfig struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	serviceName    string
	skipMethods    map[string]bool
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *otelConfig) {
		c.tracerProvider = tp
	}
}

// WithMeterProvider sets the meter provider. Defaults to the global one.
func WithMeterProvider(mp metric.MeterProvider) OTelOption {
	return func(c *otelConfig) {
		c.meterProvider = mp
	}
}

// WithOTelServiceName sets the service.name attribute.
func WithOTelServiceName(name string) OTelOption {
	return func(c *otelConfig) {
		c.serviceName = name
	}
}

// WithOTelSkipMethods disables instrumentation for the given methods,
// typically "ping".
func WithOTelSkipMethods(methods ...string) OTelOption {
	return func(c *otelConfig) {
		for _, m := range methods {
			c.skipMethods[m] = true
		}
	}
}

type instruments struct {
	requests metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
}

func newInstruments(meter metric.Meter) instruments {
	var in instruments
	in.requests, _ = meter.Int64Counter("mcp.server.requests",
		metric.WithDescription("Number of dispatched MCP requests"),
		metric.WithUnit("{request}"))
	in.errors, _ = meter.Int64Counter("mcp.server.errors",
		metric.WithDescription("Number of MCP requests that produced a JSON-RPC error"),
		metric.WithUnit("{error}"))
	in.duration, _ = meter.Float64Histogram("mcp.server.request.duration",
		metric.WithDescription("Dispatch latency of MCP requests"),
		metric.WithUnit("ms"))
	return in
}

// OTel records a server span per request together with request, error
// and latency metrics.
func OTel(opts ...OTelOption) Middleware {
	cfg := &otelConfig{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
		serviceName:    "mcp-dispatch",
		skipMethods:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tracer := cfg.tracerProvider.Tracer(instrumentationName)
	in := newInstruments(cfg.meterProvider.Meter(instrumentationName))

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if cfg.skipMethods[req.Method] {
				return next(ctx, req)
			}

			attrs := []attribute.KeyValue{
				attribute.String("mcp.method", req.Method),
				attribute.String("service.name", cfg.serviceName),
			}

			ctx, span := tracer.Start(ctx, "mcp."+req.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			if id := protocol.SessionIDFromContext(ctx); id != "" {
				span.SetAttributes(attribute.String("mcp.session_id", id))
			}
			if id := RequestIDFromContext(ctx); id != "" {
				span.SetAttributes(attribute.String("mcp.request_id", id))
			}

			in.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
			start := time.Now()

			resp, err := next(ctx, req)

			elapsed := float64(time.Since(start).Microseconds()) / 1000
			in.duration.Record(ctx, elapsed, metric.WithAttributes(attrs...))

			rpcErr := protocol.AsError(err)
			if rpcErr == nil && resp != nil {
				rpcErr = resp.Error
			}
			if rpcErr == nil {
				span.SetStatus(codes.Ok, "")
				return resp, err
			}

			if err != nil {
				span.RecordError(err)
			}
			span.SetStatus(codes.Error, rpcErr.Message)
			span.SetAttributes(attribute.Int("mcp.error_code", rpcErr.Code))
			in.errors.Add(ctx, 1, metric.WithAttributes(
				append(attrs, attribute.Int("mcp.error_code", rpcErr.Code))...))

			return resp, err
		}
	}
}

// AddSpanEvent adds an event to the span in ctx, if any. Method handlers
// use it to annotate the dispatch span.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}
