package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// structValidator returns the shared validator. Field names are reported using
// their koanf keys so errors point at the setting to change.
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks cfg. Struct tag rules run first; the cross-field checks
// below cover what tags cannot express.
func Validate(cfg *Config) error {
	if err := structValidator().Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return toConfigError(validationErrors[0])
		}
		return err
	}

	if err := validateMongo(&cfg.Mongo); err != nil {
		return fmt.Errorf("mongo config: %w", err)
	}

	if cfg.Observability.Interval < 0 {
		return NewInvalidFieldError("observability.interval", "must not be negative", nil)
	}

	return nil
}

func validateMongo(cfg *MongoConfig) error {
	if cfg.Timeout.Connect < 0 {
		return NewInvalidFieldError("mongo.timeout.connect", "must not be negative", nil)
	}
	if cfg.Timeout.Write < 0 {
		return NewInvalidFieldError("mongo.timeout.write", "must not be negative", nil)
	}
	if cfg.Pool.IdleTime < 0 {
		return NewInvalidFieldError("mongo.pool.idletime", "must not be negative", nil)
	}
	if cfg.Pool.Max > 0 && cfg.Pool.Min > cfg.Pool.Max {
		return NewInvalidFieldError("mongo.pool.min", fmt.Sprintf("must not exceed mongo.pool.max (%d)", cfg.Pool.Max), nil)
	}

	return validateCollections(cfg.Collections)
}

// validateCollections rejects blank names and two levels sharing a
// collection, which would break level routing.
func validateCollections(c CollectionsConfig) error {
	seen := make(map[string]string, 5)
	for _, level := range []string{"trace", "debug", "info", "warn", "error"} {
		name := c.ByLevel()[level]
		field := "mongo.collections." + level
		if name == "" {
			return NewMissingFieldError(field)
		}
		if strings.ContainsAny(name, "$\x00") {
			return NewInvalidFieldError(field, fmt.Sprintf("invalid collection name %q", name), nil)
		}
		if other, dup := seen[name]; dup {
			return NewInvalidFieldError(field, fmt.Sprintf("collection %q already used by mongo.collections.%s", name, other), nil)
		}
		seen[name] = level
	}
	return nil
}

// toConfigError converts a validator field error into a ConfigError keyed by
// the dotted koanf path (e.g. "mongo.collections.warn").
func toConfigError(fe validator.FieldError) *ConfigError {
	field := fe.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}

	switch fe.Tag() {
	case "required", "required_without", "required_if":
		return NewMissingFieldError(field)
	case "oneof":
		return NewInvalidFieldError(field, fmt.Sprintf("invalid value %q", fmt.Sprint(fe.Value())), strings.Fields(fe.Param()))
	case "min", "max":
		return NewInvalidFieldError(field, fmt.Sprintf("value %v out of range (%s=%s)", fe.Value(), fe.Tag(), fe.Param()), nil)
	default:
		return NewInvalidFieldError(field, fmt.Sprintf("failed %s validation", fe.Tag()), nil)
	}
}
