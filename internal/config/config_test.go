package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ImportDir = filepath.Join(t.TempDir(), "imports")
	cfg.Database = filepath.Join(t.TempDir(), "test.db")
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != ModeServer {
		t.Errorf("Mode = %s, want %s", cfg.Mode, ModeServer)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("MaxFileSize = %d, want %d", cfg.MaxFileSize, DefaultMaxFileSize)
	}
	if cfg.RenderScale != DefaultRenderScale {
		t.Errorf("RenderScale = %v, want %v", cfg.RenderScale, DefaultRenderScale)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:   "valid extract mode",
			mutate: func(c *Config) { c.Mode = ModeExtract },
		},
		{
			name:    "invalid mode",
			mutate:  func(c *Config) { c.Mode = "stdio" },
			wantErr: "mode must be",
		},
		{
			name:    "port too low",
			mutate:  func(c *Config) { c.Port = 0 },
			wantErr: "port must be",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Port = 70000 },
			wantErr: "port must be",
		},
		{
			name:    "empty import dir",
			mutate:  func(c *Config) { c.ImportDir = "" },
			wantErr: "import directory",
		},
		{
			name:    "empty database",
			mutate:  func(c *Config) { c.Database = "" },
			wantErr: "database path",
		},
		{
			name:    "non-positive max file size",
			mutate:  func(c *Config) { c.MaxFileSize = 0 },
			wantErr: "maximum file size",
		},
		{
			name:    "non-positive render scale",
			mutate:  func(c *Config) { c.RenderScale = -1 },
			wantErr: "render scale",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "trace" },
			wantErr: "invalid log level",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCreatesImportDir(t *testing.T) {
	cfg := validConfig(t)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	// A second run against the now-existing directory also passes.
	if err := cfg.Validate(); err != nil {
		t.Errorf("second Validate() = %v", err)
	}
}

func TestAddress(t *testing.T) {
	cfg := &Config{Host: "127.0.0.1", Port: 8081}
	if got := cfg.Address(); got != "127.0.0.1:8081" {
		t.Errorf("Address() = %s, want 127.0.0.1:8081", got)
	}
}

func TestModeHelpers(t *testing.T) {
	cfg := &Config{Mode: ModeServer, LogLevel: "debug"}
	if !cfg.IsServerMode() || cfg.IsExtractMode() {
		t.Error("server mode helpers disagree")
	}
	if !cfg.IsDebug() {
		t.Error("IsDebug() = false for debug level")
	}

	cfg.Mode = ModeExtract
	cfg.LogLevel = "info"
	if cfg.IsServerMode() || !cfg.IsExtractMode() {
		t.Error("extract mode helpers disagree")
	}
	if cfg.IsDebug() {
		t.Error("IsDebug() = true for info level")
	}
}
