package config

import (
	"strings"
	"time"
)

// Config represents the adapter configuration.
// Mongo describes where records are written; Log configures the adapter's own
// diagnostics logger (never the records themselves).
type Config struct {
	Mongo         MongoConfig         `koanf:"mongo" json:"mongo" yaml:"mongo" mapstructure:"mongo"`
	Log           LogConfig           `koanf:"log" json:"log" yaml:"log" mapstructure:"log"`
	Observability ObservabilityConfig `koanf:"observability" json:"observability" yaml:"observability" mapstructure:"observability"`
}

// MongoConfig holds the connection target and the database/collection layout.
type MongoConfig struct {
	// URI is a full connection string. When set it takes precedence over Host/Port.
	URI      string `koanf:"uri" json:"uri" yaml:"uri" mapstructure:"uri"`
	Host     string `koanf:"host" json:"host" yaml:"host" mapstructure:"host" validate:"required_without=URI"`
	Port     int    `koanf:"port" json:"port" yaml:"port" mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Username string `koanf:"username" json:"username" yaml:"username" mapstructure:"username"`
	Password string `koanf:"password" json:"-" yaml:"password" mapstructure:"password"`
	AppName  string `koanf:"appname" json:"appname" yaml:"appname" mapstructure:"appname"`

	Database    string            `koanf:"database" json:"database" yaml:"database" mapstructure:"database" validate:"required"`
	Collections CollectionsConfig `koanf:"collections" json:"collections" yaml:"collections" mapstructure:"collections"`

	Replica ReplicaConfig `koanf:"replica" json:"replica" yaml:"replica" mapstructure:"replica"`
	Auth    AuthConfig    `koanf:"auth" json:"auth" yaml:"auth" mapstructure:"auth"`
	Concern ConcernConfig `koanf:"concern" json:"concern" yaml:"concern" mapstructure:"concern"`
	TLS     TLSConfig     `koanf:"tls" json:"tls" yaml:"tls" mapstructure:"tls"`
	Pool    PoolConfig    `koanf:"pool" json:"pool" yaml:"pool" mapstructure:"pool"`
	Timeout TimeoutConfig `koanf:"timeout" json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// CollectionsConfig names the collection each severity level is written to.
type CollectionsConfig struct {
	Trace string `koanf:"trace" json:"trace" yaml:"trace" mapstructure:"trace" validate:"required"`
	Debug string `koanf:"debug" json:"debug" yaml:"debug" mapstructure:"debug" validate:"required"`
	Info  string `koanf:"info" json:"info" yaml:"info" mapstructure:"info" validate:"required"`
	Warn  string `koanf:"warn" json:"warn" yaml:"warn" mapstructure:"warn" validate:"required"`
	Error string `koanf:"error" json:"error" yaml:"error" mapstructure:"error" validate:"required"`
}

// ByLevel returns the collection names keyed by lower-case level name, with
// surrounding whitespace removed.
func (c CollectionsConfig) ByLevel() map[string]string {
	return map[string]string{
		"trace": strings.TrimSpace(c.Trace),
		"debug": strings.TrimSpace(c.Debug),
		"info":  strings.TrimSpace(c.Info),
		"warn":  strings.TrimSpace(c.Warn),
		"error": strings.TrimSpace(c.Error),
	}
}

// ReplicaConfig holds MongoDB replica set and read preference settings.
type ReplicaConfig struct {
	Set        string `koanf:"set" json:"set" yaml:"set" mapstructure:"set"`
	Preference string `koanf:"preference" json:"preference" yaml:"preference" mapstructure:"preference"`
}

// AuthConfig holds MongoDB authentication source settings.
type AuthConfig struct {
	Source string `koanf:"source" json:"source" yaml:"source" mapstructure:"source"`
}

// ConcernConfig holds MongoDB write concern settings.
type ConcernConfig struct {
	Write string `koanf:"write" json:"write" yaml:"write" mapstructure:"write"`
}

// TLSConfig holds TLS settings for the MongoDB connection.
type TLSConfig struct {
	Mode string `koanf:"mode" json:"mode" yaml:"mode" mapstructure:"mode" validate:"omitempty,oneof=disable require verify-full"`
}

// PoolConfig holds driver connection pool settings. Zero values leave the
// driver defaults in place.
type PoolConfig struct {
	Max      int           `koanf:"max" json:"max" yaml:"max" mapstructure:"max" validate:"min=0"`
	Min      int           `koanf:"min" json:"min" yaml:"min" mapstructure:"min" validate:"min=0"`
	IdleTime time.Duration `koanf:"idletime" json:"idletime" yaml:"idletime" mapstructure:"idletime"`
}

// TimeoutConfig holds connection and write timeouts.
//   - Connect bounds client creation plus the initial ping.
//   - Write bounds each record insert; zero means the adapter imposes none.
type TimeoutConfig struct {
	Connect time.Duration `koanf:"connect" json:"connect" yaml:"connect" mapstructure:"connect"`
	Write   time.Duration `koanf:"write" json:"write" yaml:"write" mapstructure:"write"`
}

// LogConfig holds settings for the diagnostics logger.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" mapstructure:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty" mapstructure:"pretty"`
}

// ObservabilityConfig controls export of the insert spans and metrics.
// Endpoint "stdout" prints telemetry instead of sending it over OTLP.
type ObservabilityConfig struct {
	Enabled     bool          `koanf:"enabled" json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Service     ServiceConfig `koanf:"service" json:"service" yaml:"service" mapstructure:"service"`
	Environment string        `koanf:"environment" json:"environment" yaml:"environment" mapstructure:"environment"`
	Endpoint    string        `koanf:"endpoint" json:"endpoint" yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Protocol    string        `koanf:"protocol" json:"protocol" yaml:"protocol" mapstructure:"protocol" validate:"omitempty,oneof=http grpc"`
	Insecure    bool          `koanf:"insecure" json:"insecure" yaml:"insecure" mapstructure:"insecure"`
	// Interval is the metric export period.
	Interval time.Duration `koanf:"interval" json:"interval" yaml:"interval" mapstructure:"interval"`
}

// ServiceConfig identifies the service in exported telemetry.
type ServiceConfig struct {
	Name    string `koanf:"name" json:"name" yaml:"name" mapstructure:"name"`
	Version string `koanf:"version" json:"version" yaml:"version" mapstructure:"version"`
}
