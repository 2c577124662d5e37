// Package telemetry wraps a use case in a span, RED metrics and a completion log.
package telemetry

import (
	"context"
	"time"

	"github.com/ariefcatur/go-coffee-shop/internal/logging"
	"github.com/ariefcatur/go-coffee-shop/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	tracerName = "github.com/ariefcatur/go-coffee-shop"
	spanPrefix = "UC."
)

// Start opens a span for useCase. The returned func must be called exactly
// once with the use case's final error.
func Start(ctx context.Context, m *metrics.Metrics, useCase string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	attrs = append(attrs, attribute.String("use_case", useCase))
	ctx, span := otel.Tracer(tracerName).Start(ctx, spanPrefix+useCase, trace.WithAttributes(attrs...))
	start := time.Now()

	return ctx, func(err error) {
		lat := time.Since(start).Seconds()
		outcome := metrics.Outcome(err)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()

		if m != nil {
			m.UsecaseRequests.WithLabelValues(useCase, outcome).Inc()
			m.UsecaseDuration.WithLabelValues(useCase).Observe(lat)
		}

		fields := []zap.Field{
			zap.String("use_case", useCase),
			zap.String("outcome", outcome),
			zap.Float64("latency_seconds", lat),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		logging.FromContext(ctx).Debug("use_case_done", fields...)
	}
}
