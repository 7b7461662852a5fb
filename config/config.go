// Package config loads objref settings from the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/objref/resource"
)

// Config holds process-wide settings. Command-line flags override them.
type Config struct {
	LogLevel     string `env:"OBJREF_LOG_LEVEL" envDefault:"fail"`
	Layout       string `env:"OBJREF_LAYOUT" envDefault:"sequence"`
	StatePath    string `env:"OBJREF_STATE"`
	Session      string `env:"OBJREF_SESSION" envDefault:"default"`
	OTelEndpoint string `env:"OBJREF_OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"OBJREF_OTEL_ENABLED" envDefault:"true"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := resource.ParseLayout(c.Layout); err != nil {
		return err
	}
	if strings.TrimSpace(c.Session) == "" {
		return fmt.Errorf("session name is required")
	}
	return nil
}

// ParseLevel maps a severity threshold to a zap level. Accepted values are
// info, warn and fail (alias error), or the numeric forms 0, 1 and 2.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "0", "info":
		return zapcore.InfoLevel, nil
	case "1", "warn", "warning":
		return zapcore.WarnLevel, nil
	case "", "2", "fail", "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.ErrorLevel, fmt.Errorf("unknown log level %q (want info, warn or fail)", s)
	}
}

// NewLogger builds a console logger on stderr that drops messages below level.
func NewLogger(level zapcore.Level) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encCfg.TimeKey = ""

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
