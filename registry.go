package mongolog

import (
	"context"
	"sync"
	"time"

	"github.com/gaborage/mongolog/database/mongodb"
	"github.com/gaborage/mongolog/internal/tracking"
	"github.com/gaborage/mongolog/logger"
)

// LoggerFactory hands out named loggers.
type LoggerFactory interface {
	GetLogger(name string) *Logger
}

var _ LoggerFactory = (*Registry)(nil)

// Registry caches one Logger per name. All loggers share the registry's
// collections. It is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	loggers map[string]*Logger

	collections  CollectionSet
	writeTimeout time.Duration
	tracker      *tracking.Tracker
	diag         logger.Logger

	// conn is set when the registry opened the connection itself.
	conn *mongodb.Connection
}

// NewRegistry builds a registry over an existing set of collections.
// Every level must have a collection.
func NewRegistry(collections CollectionSet, opts ...Option) (*Registry, error) {
	if err := collections.Validate(); err != nil {
		return nil, err
	}

	s := newSettings(opts)
	return &Registry{
		loggers:      make(map[string]*Logger),
		collections:  collections.clone(),
		writeTimeout: s.writeTimeout,
		tracker:      tracking.New(s.tracerProvider, s.meterProvider),
		diag:         s.diagnostics,
	}, nil
}

// GetLogger returns the logger for name, creating it on first use. Repeated
// calls with the same name return the same *Logger, including when they
// race. Any string is accepted as a name, the empty string included.
func (r *Registry) GetLogger(name string) *Logger {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.loggers[name]; ok {
		return l
	}

	l := &Logger{
		name:         name,
		collections:  r.collections,
		writeTimeout: r.writeTimeout,
		tracker:      r.tracker,
	}
	r.loggers[name] = l
	r.diag.Debug().Str("logger", name).Msg("Created record logger")
	return l
}

// Len returns the number of distinct loggers created so far.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.loggers)
}

// Close disconnects from MongoDB when the registry opened the connection.
// Registries built with NewRegistry leave their collections untouched.
// Loggers must not be used after Close.
func (r *Registry) Close(ctx context.Context) error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close(ctx)
}

// Health pings MongoDB when the registry owns the connection.
func (r *Registry) Health(ctx context.Context) error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Health(ctx)
}
