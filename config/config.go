// Package config loads the adapter configuration from defaults, an optional
// YAML file and MONGOLOG_ environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is the prefix of environment variables read by Load.
	EnvPrefix = "MONGOLOG_"
	// EnvConfigFile overrides the YAML file path read by Load.
	EnvConfigFile = "MONGOLOG_CONFIG_FILE"
	// DefaultConfigFile is the YAML file Load reads when present.
	DefaultConfigFile = "mongolog.yaml"
	// DefaultDatabase is the database records are written to unless overridden.
	DefaultDatabase = "logger"
)

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. YAML configuration file
// 3. Default values (lowest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := os.Getenv(EnvConfigFile)
	if path == "" {
		path = DefaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := loadEnv(k); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return unmarshal(k)
}

// LoadFromBytes layers a YAML document over the defaults. Environment
// variables are not consulted.
func LoadFromBytes(data []byte) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	}

	return unmarshal(k)
}

// Default returns the default configuration: localhost:27017, database
// "logger", one collection per level named after the level.
func Default() *Config {
	cfg, err := LoadFromBytes(nil)
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnv(k *koanf.Koanf) error {
	return k.Load(envprovider.Provider(".", envprovider.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			// MONGOLOG_MONGO_TIMEOUT_CONNECT -> mongo.timeout.connect
			key = strings.TrimPrefix(key, EnvPrefix)
			return strings.ReplaceAll(strings.ToLower(key), "_", "."), value
		},
	}), nil)
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"mongo.host":     "localhost",
		"mongo.port":     27017,
		"mongo.database": DefaultDatabase,
		"mongo.appname":  "mongolog",

		"mongo.collections.trace": "trace",
		"mongo.collections.debug": "debug",
		"mongo.collections.info":  "info",
		"mongo.collections.warn":  "warn",
		"mongo.collections.error": "error",

		"mongo.timeout.connect": "10s",
		"mongo.timeout.write":   "0s",

		"log.level":  "info",
		"log.pretty": false,

		"observability.enabled":      false,
		"observability.service.name": "mongolog",
		"observability.environment":  "development",
		"observability.endpoint":     "stdout",
		"observability.protocol":     "http",
		"observability.interval":     "60s",
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
