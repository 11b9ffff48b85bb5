package mongolog

import (
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/gaborage/mongolog/logger"
)

type settings struct {
	writeTimeout   time.Duration
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	diagnostics    logger.Logger
}

// Option configures a Registry.
type Option func(*settings)

// WithWriteTimeout bounds each insert. Zero, the default, leaves inserts
// bounded only by the driver's own timeouts.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.writeTimeout = d
		}
	}
}

// WithTracerProvider sets the provider used for insert spans. The otel
// global provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *settings) {
		s.tracerProvider = tp
	}
}

// WithMeterProvider sets the provider used for insert metrics. The otel
// global provider is used otherwise.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *settings) {
		s.meterProvider = mp
	}
}

// WithDiagnostics sets the logger for the library's own messages (logger
// creation, shutdown). It never receives application records.
func WithDiagnostics(log logger.Logger) Option {
	return func(s *settings) {
		if log != nil {
			s.diagnostics = log
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{diagnostics: logger.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}
