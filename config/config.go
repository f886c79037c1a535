// Package config loads the settings that decide how hosts are configured:
// which recipe namespace to apply, which sinks to attach and how to log.
//
// Sources are layered: Default, then an optional TOML or YAML file, then
// USEFUL_* environment variables. Each layer overrides only the fields it
// sets.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/sghaida/useful/dependency"
	"github.com/sghaida/useful/telemetry"
)

// ErrUnsupportedFormat is returned by Load for files that are neither TOML
// nor YAML.
var ErrUnsupportedFormat = errors.New("config: unsupported file format")

// Config holds construction settings.
type Config struct {
	// Namespace is the recipe namespace applied by Configure.
	Namespace string `toml:"namespace" yaml:"namespace" env:"USEFUL_NAMESPACE"`

	// Fallback is consulted for slots without a recipe in Namespace.
	Fallback string `toml:"fallback" yaml:"fallback" env:"USEFUL_FALLBACK"`

	// RequireOperational fails construction when any slot lacks a recipe.
	RequireOperational bool `toml:"require_operational" yaml:"require_operational" env:"USEFUL_REQUIRE_OPERATIONAL"`

	// Sinks are telemetry sink names resolved through telemetry.Lookup.
	Sinks []string `toml:"sinks" yaml:"sinks" env:"USEFUL_SINKS"`

	LogLevel  string `toml:"log_level" yaml:"log_level" env:"USEFUL_LOG_LEVEL"`
	LogFormat string `toml:"log_format" yaml:"log_format" env:"USEFUL_LOG_FORMAT"`

	// OTLPEndpoint enables trace export when set, as a URL such as
	// http://localhost:4318.
	OTLPEndpoint string `toml:"otlp_endpoint" yaml:"otlp_endpoint" env:"USEFUL_OTLP_ENDPOINT"`
	ServiceName  string `toml:"service_name" yaml:"service_name" env:"USEFUL_SERVICE_NAME"`
}

// Default returns a Config applying operational recipes, logging text at
// info level.
func Default() Config {
	return Config{
		Namespace:   string(dependency.Operational),
		LogLevel:    "info",
		LogFormat:   "text",
		ServiceName: "useful",
	}
}

// Merge applies non-zero values from source into c. RequireOperational can
// only be switched on by a later layer.
func (c *Config) Merge(source *Config) {
	if source.Namespace != "" {
		c.Namespace = source.Namespace
	}
	if source.Fallback != "" {
		c.Fallback = source.Fallback
	}
	if source.RequireOperational {
		c.RequireOperational = true
	}
	if len(source.Sinks) > 0 {
		c.Sinks = source.Sinks
	}
	if source.LogLevel != "" {
		c.LogLevel = source.LogLevel
	}
	if source.LogFormat != "" {
		c.LogFormat = source.LogFormat
	}
	if source.OTLPEndpoint != "" {
		c.OTLPEndpoint = source.OTLPEndpoint
	}
	if source.ServiceName != "" {
		c.ServiceName = source.ServiceName
	}
}

// Load builds a Config from defaults, the file at path (skipped when path
// is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		loaded, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Merge(loaded)
	}

	fromEnv, err := FromEnv()
	if err != nil {
		return nil, err
	}
	cfg.Merge(fromEnv)

	return &cfg, nil
}

// ReadFile decodes a TOML (.toml) or YAML (.yaml, .yml) file.
func ReadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return &cfg, nil
}

// FromEnv reads the USEFUL_* environment variables. Unset variables leave
// their fields zero.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Options converts c into Configure options. Sink names are resolved with
// telemetry.Lookup; an unknown name fails.
func (c *Config) Options() ([]dependency.Option, error) {
	opts := []dependency.Option{dependency.WithNamespace(dependency.Namespace(c.Namespace))}
	if c.Fallback != "" {
		opts = append(opts, dependency.Fallback(dependency.Namespace(c.Fallback)))
	}
	if c.RequireOperational {
		opts = append(opts, dependency.RequireOperational())
	}
	if len(c.Sinks) > 0 {
		sink, err := telemetry.LookupAll(c.Sinks...)
		if err != nil {
			return nil, fmt.Errorf("config sinks: %w", err)
		}
		opts = append(opts, dependency.WithSinks(sink))
	}
	return opts, nil
}

// Logger builds a slog logger writing to w in the configured format
// ("text" or "json") at the configured level.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if c.LogLevel != "" {
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return nil, fmt.Errorf("config log level: %w", err)
		}
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(c.LogFormat) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("%w: log format %q", ErrUnsupportedFormat, c.LogFormat)
	}
}
