package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/hostrender/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, DefaultHost)
	}
	if cfg.Proxy.MaxBatchOps != DefaultMaxBatchOps {
		t.Errorf("Proxy.MaxBatchOps = %d", cfg.Proxy.MaxBatchOps)
	}
	if cfg.AckTimeout() != 5*time.Second {
		t.Errorf("AckTimeout = %v", cfg.AckTimeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Load(tmpDir)
	if errors.Code(err) != "E121" {
		t.Fatalf("missing config err = %v, want E121", err)
	}

	configJSON := `{
  "server": {"host": "0.0.0.0", "port": 8080},
  "proxy": {"maxBatchOps": 64, "ackTimeout": "250ms"},
  "snapshot": {"backend": "file", "dir": "out"},
  "log": {"level": "debug", "format": "json"}
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Address() != "0.0.0.0:8080" {
		t.Errorf("Address = %q", cfg.Address())
	}
	if cfg.Proxy.MaxBatchOps != 64 || cfg.AckTimeout() != 250*time.Millisecond {
		t.Errorf("proxy = %+v", cfg.Proxy)
	}
	if cfg.Server.WriteTimeout != "10s" {
		t.Errorf("WriteTimeout default not applied: %q", cfg.Server.WriteTimeout)
	}
	if cfg.Snapshot.Dir != "out" {
		t.Errorf("Snapshot.Dir = %q", cfg.Snapshot.Dir)
	}
	if cfg.Path() != filepath.Join(tmpDir, ConfigFileName) {
		t.Errorf("Path = %q", cfg.Path())
	}
	if !Exists(tmpDir) {
		t.Error("Exists = false")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmpDir); errors.Code(err) != "E120" {
		t.Errorf("err = %v, want E120", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   string
	}{
		{"negative port", func(c *Config) { c.Server.Port = -1 }, "E122"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "E122"},
		{"bad duration", func(c *Config) { c.Proxy.AckTimeout = "soon" }, "E123"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "E123"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "E123"},
		{"bad backend", func(c *Config) { c.Snapshot.Backend = "ftp" }, "E123"},
		{"s3 without bucket", func(c *Config) { c.Snapshot.Backend = BackendS3 }, "E123"},
		{"s3 with bucket", func(c *Config) {
			c.Snapshot.Backend = BackendS3
			c.Snapshot.Bucket = "b"
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			if got := errors.Code(cfg.Validate()); got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("output = %q", out)
	}

	level, err := LogConfig{Level: "DEBUG"}.SlogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("SlogLevel = %v, %v", level, err)
	}
}
