package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseWith(t *testing.T, vars map[string]string) (*Config, error) {
	t.Helper()
	environment := map[string]string{
		"LOG_FILE": filepath.Join(t.TempDir(), "logs", "waitlist.log"),
	}
	for k, v := range vars {
		environment[k] = v
	}
	return Parse(env.Options{Environment: environment})
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := parseWith(t, nil)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "firestore", cfg.Persistence)
	assert.Equal(t, "inquiries", cfg.Collection)
	assert.Equal(t, 5, cfg.RateLimitShortMax)
	assert.Equal(t, time.Minute, cfg.RateLimitShortWindow)
	assert.Equal(t, 10, cfg.RateLimitLongMax)
	assert.Equal(t, time.Hour, cfg.RateLimitLongWindow)
	assert.Equal(t, 3*time.Second, cfg.MinFillTime)
	assert.Equal(t, 30*time.Minute, cfg.MaxFillTime)
	assert.Equal(t, 10000, cfg.MaxSessions)
	assert.Empty(t, cfg.TrustedProxies)
	assert.Equal(t, 0.5, cfg.RecaptchaMinScore)
	assert.False(t, cfg.TelegramEnabled())
	assert.DirExists(t, filepath.Dir(cfg.LogFile))
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := parseWith(t, map[string]string{
		"ENV":                  "production",
		"PERSISTENCE":          "memory",
		"ALLOWED_ORIGINS":      "https://example.com,https://www.example.com",
		"RATE_LIMIT_LONG_MAX":  "0",
		"TRUSTED_PROXIES":      "10.0.0.0/8,172.16.0.1",
		"MIN_FILL_TIME":        "1s",
		"TELEGRAM_BOT_TOKEN":   "t",
		"TELEGRAM_CHAT_ID":     "c",
		"RECAPTCHA_SECRET_KEY": "s",
	})
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "memory", cfg.Persistence)
	assert.Equal(t, []string{"https://example.com", "https://www.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 0, cfg.RateLimitLongMax)
	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.1"}, cfg.TrustedProxies)
	assert.Equal(t, time.Second, cfg.MinFillTime)
	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, "s", cfg.RecaptchaSecret)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		msg  string
	}{
		{"persistence", map[string]string{"PERSISTENCE": "postgres"}, "invalid PERSISTENCE"},
		{"fill window", map[string]string{"MIN_FILL_TIME": "10m", "MAX_FILL_TIME": "5m"}, "fill time window"},
		{"short limit", map[string]string{"RATE_LIMIT_SHORT_MAX": "0"}, "short rate limit"},
		{"long window", map[string]string{"RATE_LIMIT_LONG_WINDOW": "0s"}, "long rate limit"},
		{"request rate", map[string]string{"REQUEST_RATE_BURST": "0"}, "request rate limit"},
		{"max sessions", map[string]string{"MAX_SESSIONS": "-1"}, "MAX_SESSIONS"},
		{"bad duration", map[string]string{"MAX_FILL_TIME": "soon"}, "failed to parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseWith(t, tt.vars)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
