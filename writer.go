package mongolog

import (
	"context"
	"fmt"
	"time"

	"github.com/gaborage/mongolog/internal/tracking"
)

// Logger writes records under one name. Every call inserts exactly one
// document into the collection for its level; nothing is buffered, filtered
// or retried. Loggers are obtained from a Registry and are safe for
// concurrent use.
type Logger struct {
	name         string
	collections  CollectionSet
	writeTimeout time.Duration
	tracker      *tracking.Tracker
}

// Name returns the name the logger was created with.
func (l *Logger) Name() string { return l.name }

// IsTraceEnabled reports true; every level is always enabled.
func (l *Logger) IsTraceEnabled() bool { return true }

// IsDebugEnabled reports true.
func (l *Logger) IsDebugEnabled() bool { return true }

// IsInfoEnabled reports true.
func (l *Logger) IsInfoEnabled() bool { return true }

// IsWarnEnabled reports true.
func (l *Logger) IsWarnEnabled() bool { return true }

// IsErrorEnabled reports true.
func (l *Logger) IsErrorEnabled() bool { return true }

// Enabled reports whether records at level are written, which is true for
// every known level.
func (l *Logger) Enabled(level Level) bool { return level.valid() }

// Trace writes msg and args to the trace collection. A trailing error
// argument is stored as the record's throwable rather than as an arg.
func (l *Logger) Trace(msg string, args ...any) error {
	return l.write(context.Background(), LevelTrace, msg, args, nil)
}

// TraceErr writes msg and the rendered trace of err to the trace collection.
func (l *Logger) TraceErr(msg string, err error) error {
	return l.write(context.Background(), LevelTrace, msg, nil, err)
}

// Debug writes msg and args to the debug collection.
func (l *Logger) Debug(msg string, args ...any) error {
	return l.write(context.Background(), LevelDebug, msg, args, nil)
}

// DebugErr writes msg and the rendered trace of err to the debug collection.
func (l *Logger) DebugErr(msg string, err error) error {
	return l.write(context.Background(), LevelDebug, msg, nil, err)
}

// Info writes msg and args to the info collection.
func (l *Logger) Info(msg string, args ...any) error {
	return l.write(context.Background(), LevelInfo, msg, args, nil)
}

// InfoErr writes msg and the rendered trace of err to the info collection.
func (l *Logger) InfoErr(msg string, err error) error {
	return l.write(context.Background(), LevelInfo, msg, nil, err)
}

// Warn writes msg and args to the warn collection.
func (l *Logger) Warn(msg string, args ...any) error {
	return l.write(context.Background(), LevelWarn, msg, args, nil)
}

// WarnErr writes msg and the rendered trace of err to the warn collection.
func (l *Logger) WarnErr(msg string, err error) error {
	return l.write(context.Background(), LevelWarn, msg, nil, err)
}

// Error writes msg and args to the error collection.
func (l *Logger) Error(msg string, args ...any) error {
	return l.write(context.Background(), LevelError, msg, args, nil)
}

// ErrorErr writes msg and the rendered trace of err to the error collection.
func (l *Logger) ErrorErr(msg string, err error) error {
	return l.write(context.Background(), LevelError, msg, nil, err)
}

// Log writes one record at level. Args and err may both be set; the record
// then carries both fields. The insert honours ctx cancellation.
func (l *Logger) Log(ctx context.Context, level Level, msg string, args []any, err error) error {
	return l.write(ctx, level, msg, args, err)
}

// write must be called directly from the exported methods: the call-site
// stack for errors without their own trace is taken two frames up.
// When err is nil a trailing error in args is taken as the throwable.
func (l *Logger) write(ctx context.Context, level Level, msg string, args []any, err error) error {
	if !level.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownLevel, int(level))
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err == nil && len(args) > 0 {
		if last, ok := args[len(args)-1].(error); ok {
			err = last
			args = args[:len(args)-1]
		}
	}

	rec := Record{Name: l.name, Message: msg, Args: args}
	if err != nil {
		rec.Throwable = renderThrowable(err, callers(2))
	}

	coll := l.collections[level]
	collName := collectionName(level, coll)
	doc := rec.Document()

	insertErr := l.tracker.Track(ctx, tracking.Insert{
		Logger:     l.name,
		Level:      level.String(),
		Collection: collName,
	}, func(ctx context.Context) error {
		if l.writeTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, l.writeTimeout)
			defer cancel()
		}
		return coll.InsertOne(ctx, doc)
	})
	if insertErr != nil {
		return fmt.Errorf("mongolog: write %s record for %q to %s: %w", level, l.name, collName, insertErr)
	}
	return nil
}
