package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Error type classification constants per OTel semantic conventions.
const (
	ErrTypeTimeout               = "timeout"
	ErrTypeCancel                = "cancel"
	ErrTypeValidation            = "validation"
	ErrTypeDependencyUnavailable = "dependency_unavailable"
	ErrTypeInternal              = "internal"
)

// Error source classification constants.
const (
	ErrSourceClient     = "client"
	ErrSourceServer     = "server"
	ErrSourceDependency = "dependency"
)

// RecordSpanError records an error on a span with structured classification
// attributes (error.type and optionally error.source).
func RecordSpanError(span trace.Span, err error, errType, errSource string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	attrs := []attribute.KeyValue{
		attribute.String("error.type", errType),
	}

	if errSource != "" {
		attrs = append(attrs, attribute.String("error.source", errSource))
	}

	span.SetAttributes(attrs...)
}

// errPanic is a sentinel error for recovered panics.
var errPanic = errors.New("panic recovered")

// RunTraced wraps op in a span named op.name, recovering any panic into
// a recorded span error and logging one line on completion. Used to
// wrap a campaign's Run so an unhandled panic deep in a fold (a
// malformed CST, an unexpected tree-sitter grammar mismatch) surfaces
// as a failed span instead of crashing the process mid-campaign.
func RunTraced(ctx context.Context, tracer trace.Tracer, logger *slog.Logger, name string, op func(ctx context.Context) error) (err error) {
	start := time.Now()

	ctx, span := tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errPanic, r)
			RecordSpanError(span, err, ErrTypeInternal, ErrSourceServer)
			span.AddEvent("panic.stack", trace.WithAttributes(
				attribute.String("stack", string(debug.Stack())),
			))
		}
	}()

	err = op(ctx)

	status := "ok"
	if err != nil {
		status = "error"
		RecordSpanError(span, err, ErrTypeInternal, "")
	}

	logger.InfoContext(ctx, "operation complete",
		"operation", name,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return err
}
