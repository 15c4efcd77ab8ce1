// Package config provides configuration management for afmtool.
//
// Configuration is loaded from three sources with the following precedence
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (AFMTOOL_ prefix)
//  3. Config file (.afmtool.yaml)
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Supported document output formats.
const (
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

// Config represents the global configuration for afmtool.
type Config struct {
	// LogLevel controls the verbosity of log output.
	// Valid values: debug, info, warn, error.
	LogLevel string `mapstructure:"log-level" json:"logLevel" validate:"oneof=debug info warn error"`

	// LogFormat controls the format of log output.
	// Valid values: text, json.
	LogFormat string `mapstructure:"log-format" json:"logFormat" validate:"oneof=text json"`

	// NoColor disables colored output.
	NoColor bool `mapstructure:"no-color" json:"noColor"`

	// Quiet suppresses all log output below error level.
	Quiet bool `mapstructure:"quiet" json:"quiet"`

	// OutputFormat is the default serialization for written documents.
	// Valid values: json, yaml.
	OutputFormat string `mapstructure:"output-format" json:"outputFormat" validate:"oneof=json yaml"`

	// DropEmpty removes user filters without values before they are merged.
	DropEmpty bool `mapstructure:"drop-empty" json:"dropEmpty"`

	// ConfigFile is the resolved path to the config file used.
	// Set after Load(), never read from the config itself.
	ConfigFile string `mapstructure:"-" json:"-"`

	// Extensions holds the presets and requiredVersion sections of the
	// config file. Never nil after Load() or Default().
	Extensions *Extensions `mapstructure:"-" json:"-" validate:"-"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		LogLevel:     LogLevelInfo,
		LogFormat:    LogFormatText,
		NoColor:      false,
		Quiet:        false,
		OutputFormat: OutputFormatJSON,
		DropEmpty:    true,
		Extensions:   &Extensions{},
	}
}

// validate is shared; it caches struct metadata and is safe for concurrent use.
var validate = validator.New()

// fieldLabels names Config fields in validation messages.
var fieldLabels = map[string]string{
	"LogLevel":     "log level",
	"LogFormat":    "log format",
	"OutputFormat": "output format",
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validating config: %w", err)
	}

	// Report the first failing field, in declaration order.
	fe := fieldErrs[0]

	label, ok := fieldLabels[fe.StructField()]
	if !ok {
		label = fe.Field()
	}

	if fe.Tag() == "oneof" {
		return fmt.Errorf("invalid %s %q: must be one of %s", label, fe.Value(), strings.Join(strings.Fields(fe.Param()), ", "))
	}

	return fmt.Errorf("invalid %s %q", label, fe.Value())
}

// EffectiveLogLevel returns the log level to use. When Quiet is true the log
// level is overridden to "error" regardless of the configured LogLevel.
func (c *Config) EffectiveLogLevel() string {
	if c.Quiet {
		return LogLevelError
	}

	return c.LogLevel
}

// Load initialises configuration from flags, environment variables, and an
// optional config file. A fresh viper instance is used on every call so that
// Load is safe for concurrent tests.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	configureEnv(v)

	if err := configureFile(v, configFile); err != nil {
		return nil, err
	}

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ext, err := LoadExtensions(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}

	cfg.Extensions = ext

	return &cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("no-color", d.NoColor)
	v.SetDefault("quiet", d.Quiet)
	v.SetDefault("output-format", d.OutputFormat)
	v.SetDefault("drop-empty", d.DropEmpty)
}

// configureEnv sets up environment variable support.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("AFMTOOL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// configureFile sets up the config file source.
func configureFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}

		return nil
	}

	v.SetConfigName(".afmtool")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "afmtool"))
	}

	if err := v.ReadInConfig(); err != nil {
		// Auto-discovery found nothing.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}

		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// bindFlags walks from cmd up to the root and binds all PersistentFlags.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	for c := cmd; c != nil; c = c.Parent() {
		if err := v.BindPFlags(c.PersistentFlags()); err != nil {
			return fmt.Errorf("binding persistent flags: %w", err)
		}
	}

	return nil
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext extracts a Config from ctx, falling back to Default().
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}

	return Default()
}
