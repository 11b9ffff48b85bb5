// Package tracking emits OpenTelemetry spans and metrics for record inserts.
package tracking

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/gaborage/mongolog"

	spanInsert = "mongolog.insert"

	metricRecords  = "mongolog.records"
	metricDuration = "mongolog.insert.duration"

	attrSystem = "db.system"
	attrLevel  = "log.level"
	attrLogger = "logger.name"
	attrError  = "error"

	operationInsert = "insert"
	systemMongoDB   = "mongodb"
)

// Insert describes one record write.
type Insert struct {
	Logger     string
	Level      string
	Collection string
}

// Tracker wraps inserts in a client span and records a call counter and a
// duration histogram. A nil *Tracker is valid and tracks nothing.
type Tracker struct {
	tracer   trace.Tracer
	records  metric.Int64Counter
	duration metric.Float64Histogram
}

// New builds a Tracker. Nil providers fall back to the otel globals, which
// are no-ops until the application installs real ones.
func New(tp trace.TracerProvider, mp metric.MeterProvider) *Tracker {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	meter := mp.Meter(instrumentationName)

	records, err := meter.Int64Counter(
		metricRecords,
		metric.WithDescription("Total number of log records written"),
	)
	logMetricError(metricRecords, err)

	duration, err := meter.Float64Histogram(
		metricDuration,
		metric.WithDescription("Duration of log record inserts in milliseconds"),
		metric.WithUnit("ms"),
	)
	logMetricError(metricDuration, err)

	return &Tracker{
		tracer:   tp.Tracer(instrumentationName),
		records:  records,
		duration: duration,
	}
}

// logMetricError reports instrument creation failures on stderr. Metrics are
// best effort and never fail a write.
func logMetricError(name string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to initialize metric %s: %v\n", name, err)
	}
}

// Track runs insert inside a span and records its outcome. The error from
// insert is returned unchanged.
func (t *Tracker) Track(ctx context.Context, in Insert, insert func(context.Context) error) error {
	if t == nil {
		return insert(ctx)
	}

	start := time.Now()
	ctx, span := t.tracer.Start(ctx, spanInsert,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(attrSystem, systemMongoDB),
			semconv.DBOperationName(operationInsert),
			semconv.DBCollectionName(in.Collection),
			attribute.String(attrLevel, in.Level),
			attribute.String(attrLogger, in.Logger),
		),
	)

	err := insert(ctx)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	t.recordMetrics(ctx, in, elapsed, err)
	return err
}

// recordMetrics leaves the logger name off metric attributes to keep
// cardinality bounded by the five levels.
func (t *Tracker) recordMetrics(ctx context.Context, in Insert, elapsed time.Duration, err error) {
	common := []attribute.KeyValue{
		attribute.String(attrSystem, systemMongoDB),
		attribute.String(attrLevel, in.Level),
		semconv.DBCollectionName(in.Collection),
	}

	if t.records != nil {
		attrs := make([]attribute.KeyValue, 0, len(common)+1)
		attrs = append(attrs, common...)
		attrs = append(attrs, attribute.Bool(attrError, err != nil))
		t.records.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	if t.duration != nil {
		ms := float64(elapsed.Nanoseconds()) / 1e6
		t.duration.Record(ctx, ms, metric.WithAttributes(common...))
	}
}
