// Package telemetry wraps OpenTelemetry tracing for registry lookups and
// trust decisions.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/vinayprograms/toolreg"

// Tracer wraps an OpenTelemetry tracer with domain helpers.
type Tracer struct {
	tracer trace.Tracer
	debug  bool // When true, include full remote URLs in span attributes
}

var (
	globalTracer *Tracer
	tracerMu     sync.RWMutex
)

// SetGlobalTracer sets the global tracer instance.
func SetGlobalTracer(t *Tracer) {
	tracerMu.Lock()
	defer tracerMu.Unlock()
	globalTracer = t
}

// GetTracer returns the global tracer, or a no-op tracer if not set.
func GetTracer() *Tracer {
	tracerMu.RLock()
	defer tracerMu.RUnlock()
	if globalTracer == nil {
		return &Tracer{tracer: noop.NewTracerProvider().Tracer("")}
	}
	return globalTracer
}

// NewTracerFromProvider creates a tracer from a specific provider.
func NewTracerFromProvider(tp trace.TracerProvider, debug bool) *Tracer {
	return &Tracer{
		tracer: tp.Tracer(instrumentationName),
		debug:  debug,
	}
}

// StartSpan starts a new span with the given name.
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// --- Registry Spans ---

// LookupSpanOptions contains options for registry lookup spans.
type LookupSpanOptions struct {
	Found    bool
	Backends []string // backends surviving the filter
	Default  string   // first surviving backend
}

// StartLookupSpan starts a span for resolving a short name.
func (t *Tracer) StartLookupSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, "registry.lookup", trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(attribute.String("registry.name", name))
	return ctx, span
}

// EndLookupSpan ends a lookup span with attributes.
func (t *Tracer) EndLookupSpan(span trace.Span, opts LookupSpanOptions, err error) {
	span.SetAttributes(
		attribute.Bool("registry.found", opts.Found),
		attribute.Int("registry.backends", len(opts.Backends)),
	)
	if opts.Default != "" {
		span.SetAttributes(attribute.String("registry.default", opts.Default))
	}
	if t.debug && len(opts.Backends) > 0 {
		span.SetAttributes(attribute.StringSlice("registry.backend_list", opts.Backends))
	}
	endSpan(span, err)
}

// StartSearchSpan starts a span for a registry search.
func (t *Tracer) StartSearchSpan(ctx context.Context, query string) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, "registry.search", trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(attribute.String("registry.query", truncate(query, 200)))
	return ctx, span
}

// EndSearchSpan ends a search span.
func (t *Tracer) EndSearchSpan(span trace.Span, hits int, err error) {
	span.SetAttributes(attribute.Int("registry.hits", hits))
	endSpan(span, err)
}

// --- Trust Spans ---

// TrustSpanOptions contains options for trust decision spans.
type TrustSpanOptions struct {
	Trusted    bool
	Shorthand  bool
	MiseURL    bool
	Normalized string
	Remote     string // Only in debug mode
}

// StartTrustSpan starts a span for a trust decision.
func (t *Tracer) StartTrustSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, "trust.evaluate", trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(attribute.String("trust.name", name))
	return ctx, span
}

// EndTrustSpan ends a trust span with the decision.
func (t *Tracer) EndTrustSpan(span trace.Span, opts TrustSpanOptions, err error) {
	span.SetAttributes(
		attribute.Bool("trust.trusted", opts.Trusted),
		attribute.Bool("trust.shorthand", opts.Shorthand),
		attribute.Bool("trust.mise_url", opts.MiseURL),
		attribute.String("trust.normalized", truncate(opts.Normalized, 500)),
	)
	// Raw remotes can carry credentials.
	if t.debug && opts.Remote != "" {
		span.SetAttributes(attribute.String("trust.remote", truncate(opts.Remote, 500)))
	}
	endSpan(span, err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
