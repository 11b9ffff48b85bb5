// Package mongolog is a logging backend that persists every log call as a
// document in MongoDB.
//
// Records are routed by level: trace, debug, info, warn and error each go to
// their own collection in a single database. A record holds the logger name,
// the raw message template, the arguments as given and, when an error is
// logged, its rendered stack trace. Messages are never formatted and no level
// is ever filtered.
//
// Basic usage:
//
//	cfg, err := config.Load()
//	if err != nil { ... }
//	reg, err := mongolog.New(ctx, cfg, logger.New(cfg.Log.Level, cfg.Log.Pretty))
//	if err != nil { ... }
//	defer reg.Close(ctx)
//
//	log := reg.GetLogger("com.example.Orders")
//	log.Info("order {} shipped", orderID)
//	log.ErrorErr("payment failed", err)
package mongolog

import (
	"context"
	"fmt"

	"github.com/gaborage/mongolog/config"
	"github.com/gaborage/mongolog/database/mongodb"
	"github.com/gaborage/mongolog/logger"
)

// New connects to MongoDB using cfg and returns a registry writing to the
// configured collections. A nil cfg means config.Default(). A nil log
// discards diagnostics. Any failure to reach the server is reported as an
// error wrapping ErrConnect and no registry is returned.
//
// Options given here override the write timeout taken from cfg.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Registry, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.Nop()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("mongolog: invalid configuration: %w", err)
	}

	conn, err := mongodb.Connect(ctx, &cfg.Mongo, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	set, err := collectionSetFrom(conn.Collections())
	if err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}

	all := make([]Option, 0, len(opts)+2)
	all = append(all, WithWriteTimeout(cfg.Mongo.Timeout.Write), WithDiagnostics(log))
	all = append(all, opts...)

	reg, err := NewRegistry(set, all...)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}
	reg.conn = conn
	return reg, nil
}

// MustNew is like New but panics on error.
func MustNew(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) *Registry {
	reg, err := New(ctx, cfg, log, opts...)
	if err != nil {
		panic(err)
	}
	return reg
}

func collectionSetFrom(byLevel map[string]*mongodb.Collection) (CollectionSet, error) {
	set := make(CollectionSet, len(byLevel))
	for _, level := range Levels() {
		coll, ok := byLevel[level.String()]
		if !ok || coll == nil {
			return nil, fmt.Errorf("%w for level %s", ErrMissingCollection, level)
		}
		set[level] = coll
	}
	return set, nil
}
