// Package mongodb owns the MongoDB client used to persist log records: it
// builds client options from configuration, connects and pings once, and
// resolves one collection handle per severity level.
package mongodb

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"

	"github.com/gaborage/mongolog/config"
	"github.com/gaborage/mongolog/logger"
)

// Sentinel errors for MongoDB configuration validation
var (
	ErrInvalidReadPreference = errors.New("invalid read preference")
	ErrInvalidWriteConcern   = errors.New("invalid write concern")
	ErrInvalidTLSMode        = errors.New("invalid TLS mode")
)

// Connection holds the client and the database records are written to.
type Connection struct {
	client   *mongo.Client
	database *mongo.Database
	config   *config.MongoConfig
	logger   logger.Logger
}

var (
	connectMongoDB = func(opts *options.ClientOptions) (*mongo.Client, error) {
		return mongo.Connect(opts)
	}
	pingMongoDB = func(ctx context.Context, client *mongo.Client) error {
		return client.Ping(ctx, readpref.Primary())
	}
	disconnectMongoDB = func(ctx context.Context, client *mongo.Client) error {
		return client.Disconnect(ctx)
	}
)

const (
	defaultConnectionTimeout = 10 * time.Second
	disconnectTimeout        = 10 * time.Second
)

// Connect creates the client, verifies it with a ping and selects the
// configured database. Any failure is returned; nothing is retried.
func Connect(ctx context.Context, cfg *config.MongoConfig, log logger.Logger) (*Connection, error) {
	if log == nil {
		log = logger.Nop()
	}

	timeout := cfg.Timeout.Connect
	if timeout <= 0 {
		timeout = defaultConnectionTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts, err := buildClientOptions(cfg, timeout)
	if err != nil {
		return nil, err
	}

	client, err := connectMongoDB(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := pingMongoDB(ctx, client); err != nil {
		if closeErr := disconnectMongoDB(context.Background(), client); closeErr != nil {
			log.Error().Err(closeErr).Msg("Failed to disconnect MongoDB client after ping failure")
		}
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	event := log.Info().Str("database", cfg.Database)
	if cfg.URI != "" {
		event = event.Str("uri", cfg.URI)
	} else {
		event = event.Str("host", cfg.Host).Int("port", cfg.Port)
	}
	event.Str("replica_set", cfg.Replica.Set).Msg("Connected to MongoDB")

	return &Connection{
		client:   client,
		database: client.Database(cfg.Database),
		config:   cfg,
		logger:   log,
	}, nil
}

// buildClientOptions translates configuration into driver options.
func buildClientOptions(cfg *config.MongoConfig, timeout time.Duration) (*options.ClientOptions, error) {
	opts := options.Client()

	if cfg.URI != "" {
		opts.ApplyURI(cfg.URI)
	} else {
		opts.ApplyURI(buildMongoURI(cfg))
	}

	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}
	opts.SetConnectTimeout(timeout)
	opts.SetServerSelectionTimeout(timeout)

	setConnectionOptions(opts, cfg)

	if err := setReadPreference(opts, cfg.Replica.Preference); err != nil {
		return nil, err
	}

	if err := setWriteConcern(opts, cfg.Concern.Write); err != nil {
		return nil, err
	}

	if cfg.TLS.Mode != "" {
		tlsConfig, err := buildTLSConfig(cfg.TLS.Mode)
		if err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
		if tlsConfig != nil {
			opts.SetTLSConfig(tlsConfig)
		}
	}

	return opts, nil
}

// setConnectionOptions sets connection pool options based on configuration
func setConnectionOptions(opts *options.ClientOptions, cfg *config.MongoConfig) {
	if cfg.Pool.Max > 0 {
		opts.SetMaxPoolSize(uint64(cfg.Pool.Max))
	}
	if cfg.Pool.Min > 0 {
		opts.SetMinPoolSize(uint64(cfg.Pool.Min))
	}
	if cfg.Pool.IdleTime > 0 {
		opts.SetMaxConnIdleTime(cfg.Pool.IdleTime)
	}
}

// setReadPreference sets the read preference in the client options
func setReadPreference(opts *options.ClientOptions, pref string) error {
	if pref != "" {
		rp, err := parseReadPreference(pref)
		if err != nil {
			return fmt.Errorf("invalid read preference: %w", err)
		}
		opts.SetReadPreference(rp)
	}
	return nil
}

// setWriteConcern sets the write concern in the client options
func setWriteConcern(opts *options.ClientOptions, concern string) error {
	if concern != "" {
		wc, err := parseWriteConcern(concern)
		if err != nil {
			return fmt.Errorf("invalid write concern: %w", err)
		}
		opts.SetWriteConcern(wc)
	}
	return nil
}

// buildMongoURI constructs a MongoDB connection URI from configuration
func buildMongoURI(cfg *config.MongoConfig) string {
	var uri strings.Builder

	uri.WriteString("mongodb://")

	if cfg.Username != "" {
		uri.WriteString(url.PathEscape(cfg.Username))
		if cfg.Password != "" {
			uri.WriteString(":")
			uri.WriteString(url.PathEscape(cfg.Password))
		}
		uri.WriteString("@")
	}

	uri.WriteString(cfg.Host)
	if cfg.Port > 0 {
		uri.WriteString(":" + strconv.Itoa(cfg.Port))
	}

	if cfg.Database != "" {
		uri.WriteString("/")
		uri.WriteString(cfg.Database)
	}

	var params []string
	if cfg.Replica.Set != "" {
		params = append(params, "replicaSet="+url.QueryEscape(cfg.Replica.Set))
	}
	if cfg.Auth.Source != "" {
		params = append(params, "authSource="+url.QueryEscape(cfg.Auth.Source))
	}

	if len(params) > 0 {
		uri.WriteString("?")
		uri.WriteString(strings.Join(params, "&"))
	}

	return uri.String()
}

// buildTLSConfig creates a TLS configuration based on the TLS mode.
// "disable" returns a nil config.
func buildTLSConfig(mode string) (*tls.Config, error) {
	switch strings.ToLower(mode) {
	case "disable":
		return nil, nil
	case "require", "verify-full":
		return &tls.Config{
			InsecureSkipVerify: false,
			MinVersion:         tls.VersionTLS12,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidTLSMode, mode)
	}
}

// parseReadPreference converts string to MongoDB read preference
func parseReadPreference(pref string) (*readpref.ReadPref, error) {
	switch strings.ToLower(pref) {
	case "primary":
		return readpref.Primary(), nil
	case "primarypreferred":
		return readpref.PrimaryPreferred(), nil
	case "secondary":
		return readpref.Secondary(), nil
	case "secondarypreferred":
		return readpref.SecondaryPreferred(), nil
	case "nearest":
		return readpref.Nearest(), nil
	default:
		return nil, ErrInvalidReadPreference
	}
}

// parseWriteConcern converts string to MongoDB write concern
func parseWriteConcern(concern string) (*writeconcern.WriteConcern, error) {
	trimmed := strings.TrimSpace(concern)

	switch strings.ToLower(trimmed) {
	case "majority":
		return writeconcern.Majority(), nil
	case "acknowledged":
		return &writeconcern.WriteConcern{W: 1}, nil
	case "unacknowledged":
		return &writeconcern.WriteConcern{W: 0}, nil
	}

	if n, err := strconv.Atoi(trimmed); err == nil && n >= 0 {
		return &writeconcern.WriteConcern{W: n}, nil
	}

	return nil, ErrInvalidWriteConcern
}

// Collections resolves one handle per severity level, keyed by the
// lower-case level name.
func (c *Connection) Collections() map[string]*Collection {
	names := c.config.Collections.ByLevel()
	out := make(map[string]*Collection, len(names))
	for level, name := range names {
		out[level] = NewCollection(c.database.Collection(name))
	}
	return out
}

// Health checks MongoDB connection health
func (c *Connection) Health(ctx context.Context) error {
	return pingMongoDB(ctx, c.client)
}

// Close disconnects the client. Subsequent inserts fail.
func (c *Connection) Close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, disconnectTimeout)
	defer cancel()

	if err := disconnectMongoDB(ctx, c.client); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}

	c.logger.Info().Str("database", c.config.Database).Msg("Disconnected from MongoDB")
	return nil
}

// DatabaseName returns the name of the database records are written to.
func (c *Connection) DatabaseName() string {
	return c.database.Name()
}
