package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"upper case level", func(c *Config) { c.Level = "WARN" }, false},
		{"unknown level", func(c *Config) { c.Level = "verbose" }, true},
		{"no file", func(c *Config) { c.File = "" }, true},
		{"zero size", func(c *Config) { c.MaxSize = 0 }, true},
		{"negative backups", func(c *Config) { c.MaxBackups = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	cfg := ServiceConfig(LevelWarn, path)
	cfg.Console = false

	logger, err := NewLogger(cfg)
	require.NoError(t, err)

	logger.Debug("debug line")
	logger.Info("info line")
	logger.Warn("warn line")
	logger.Error("error line")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "debug line")
	assert.NotContains(t, out, "info line")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "warn line")
	assert.Contains(t, out, "error line")
}

func TestNewLoggerRejectsInvalidConfig(t *testing.T) {
	_, err := NewLogger(&Config{Level: "info"})
	require.Error(t, err)

	var wrapped *ErrorWithContext
	assert.True(t, errors.As(err, &wrapped))
	assert.Equal(t, "logging", wrapped.Context)
}

func TestServiceConfig(t *testing.T) {
	cfg := ServiceConfig("", "")
	assert.Equal(t, DefaultConfig(), cfg)

	cfg = ServiceConfig(LevelDebug, "/tmp/x.log")
	assert.Equal(t, LevelDebug, cfg.Level)
	assert.Equal(t, "/tmp/x.log", cfg.File)
}

func TestSecurityLoggerWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	sl := NewSecurityLogger(&buf)
	at := time.Date(2026, 10, 18, 8, 30, 0, 0, time.UTC)

	require.NoError(t, sl.Write("honeypot_triggered", "sess-1", at, map[string]interface{}{"length": 4}))

	line := strings.TrimSpace(buf.String())
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &got))
	assert.Equal(t, "security", got["stream"])
	assert.Equal(t, "honeypot_triggered", got["type"])
	assert.Equal(t, "sess-1", got["session"])
	assert.Equal(t, float64(4), got["length"])
	assert.Equal(t, "warn", got["level"])
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestSecurityLoggerReportsWriteFailure(t *testing.T) {
	sl := NewSecurityLogger(brokenWriter{})
	err := sl.Write("csrf_mismatch", "sess-2", time.Now(), nil)
	assert.EqualError(t, err, "disk full")
}
