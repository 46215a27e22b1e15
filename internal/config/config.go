// Package config loads critq settings from the environment.
//
// Variables use the CRITQ_ prefix and map to lower-case keys:
//
//	CRITQ_DB_PATH     -> db_path     (default "critq.db")
//	CRITQ_SCHEMA_DIR  -> schema_dir  (default "schema")
//	CRITQ_LOG_LEVEL   -> log_level   (default "warn")
//	CRITQ_FORMAT      -> format      (default "text")
//
// A .env file in the working directory is loaded first. Command-line flags
// override whatever Load returns.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of every critq environment variable.
const EnvPrefix = "CRITQ_"

// Config holds the settings shared by all commands.
type Config struct {
	DBPath    string `koanf:"db_path" validate:"required"`
	SchemaDir string `koanf:"schema_dir" validate:"required"`
	LogLevel  string `koanf:"log_level" validate:"oneof=debug info warn error disabled"`
	Format    string `koanf:"format" validate:"oneof=text json"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		DBPath:    "critq.db",
		SchemaDir: "schema",
		LogLevel:  "warn",
		Format:    "text",
	}
}

var validate = validator.New()

// Load reads CRITQ_* variables over the defaults and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Format = strings.ToLower(cfg.Format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
