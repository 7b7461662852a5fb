package config

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"OBJREF_LOG_LEVEL", "OBJREF_LAYOUT", "OBJREF_STATE", "OBJREF_SESSION", "OBJREF_OTEL_ENDPOINT", "OBJREF_OTEL_ENABLED"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "fail" || cfg.Layout != "sequence" || cfg.Session != "default" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.OTelEnabled {
		t.Fatal("otel should default to enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OBJREF_LOG_LEVEL", "1")
	t.Setenv("OBJREF_LAYOUT", "slotmap")
	t.Setenv("OBJREF_STATE", "/tmp/objref.db")
	t.Setenv("OBJREF_SESSION", "work")
	t.Setenv("OBJREF_OTEL_ENDPOINT", "")
	t.Setenv("OBJREF_OTEL_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Config{LogLevel: "1", Layout: "slotmap", StatePath: "/tmp/objref.db", Session: "work"}
	if cfg != want {
		t.Fatalf("got %+v, want %+v", cfg, want)
	}
}

func TestLoadRejectsBadBool(t *testing.T) {
	t.Setenv("OBJREF_OTEL_ENABLED", "maybe")
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	base := Config{LogLevel: "info", Layout: "sequence", Session: "s"}
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"level", func(c *Config) { c.LogLevel = "loud" }},
		{"layout", func(c *Config) { c.Layout = "btree" }},
		{"session", func(c *Config) { c.Session = " " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mod(&c)
			if err := c.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"0":     zapcore.InfoLevel,
		"info":  zapcore.InfoLevel,
		"1":     zapcore.WarnLevel,
		"WARN":  zapcore.WarnLevel,
		"2":     zapcore.ErrorLevel,
		"fail":  zapcore.ErrorLevel,
		"error": zapcore.ErrorLevel,
		"":      zapcore.ErrorLevel,
		"debug": zapcore.DebugLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("3"); err == nil {
		t.Error("expected error for 3")
	}
}

func TestNewLoggerLevel(t *testing.T) {
	l := NewLogger(zapcore.WarnLevel)
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be filtered")
	}
	if !l.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("error should pass")
	}
}
