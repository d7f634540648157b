package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	clearEnv(t, "PORT", "DB_PATH", "CATALOG_DIR", "SESSION_TTL", "SWEEP_INTERVAL",
		"USER_RETENTION", "MAX_COMMAND_LENGTH", "METRICS_ENABLED", "ALLOWED_ORIGINS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.DBPath != "./data/lessons.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.SessionTTL != 60*time.Minute || cfg.SweepInterval != 5*time.Minute {
		t.Errorf("durations = %v / %v", cfg.SessionTTL, cfg.SweepInterval)
	}
	if cfg.MaxCommandLength != 1024 {
		t.Errorf("MaxCommandLength = %d", cfg.MaxCommandLength)
	}
	if !cfg.MetricsEnabled {
		t.Error("metrics should default to enabled")
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("MAX_COMMAND_LENGTH", "64")
	t.Setenv("METRICS_ENABLED", "off")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SessionTTL != 15*time.Minute {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.MaxCommandLength != 64 {
		t.Errorf("MaxCommandLength = %d", cfg.MaxCommandLength)
	}
	if cfg.MetricsEnabled {
		t.Error("metrics should be disabled")
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadInvalidFallsBack(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL", "soon")
	t.Setenv("MAX_COMMAND_LENGTH", "lots")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SweepInterval != 5*time.Minute || cfg.MaxCommandLength != 1024 {
		t.Errorf("fallbacks not applied: %v %d", cfg.SweepInterval, cfg.MaxCommandLength)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"empty db path", func(c *Config) { c.DBPath = "" }},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }},
		{"zero sweep", func(c *Config) { c.SweepInterval = 0 }},
		{"negative retention", func(c *Config) { c.UserRetention = -time.Hour }},
		{"zero command length", func(c *Config) { c.MaxCommandLength = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Port:             "8080",
				DBPath:           "x.db",
				SessionTTL:       time.Minute,
				SweepInterval:    time.Minute,
				MaxCommandLength: 10,
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestIsDevelopment(t *testing.T) {
	tests := map[string]bool{
		"":                      true,
		"http://localhost:5173": true,
		"http://127.0.0.1:3000": true,
		"https://shsh.example":  false,
	}
	for url, want := range tests {
		if got := (&Config{FrontendURL: url}).IsDevelopment(); got != want {
			t.Errorf("IsDevelopment(%q) = %v, want %v", url, got, want)
		}
	}
}

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}
