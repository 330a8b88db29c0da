package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server Configuration
	Environment string `env:"ENV" envDefault:"development"`
	Port        string `env:"API_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile     string `env:"LOG_FILE"`

	// Allowed CORS origins, comma separated
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Proxies (IPs or CIDRs) whose X-Forwarded-For / X-Real-IP headers are
	// believed. Empty trusts none and uses the socket address.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// Firebase Configuration
	// ConfigOrigin is where the public Firebase config is fetched from in
	// production. Loopback origins skip the network call.
	ConfigOrigin    string `env:"CONFIG_ORIGIN" envDefault:"http://localhost:8080"`
	CredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`

	// Persistence Configuration
	Persistence string `env:"PERSISTENCE" envDefault:"firestore"`
	Collection  string `env:"INQUIRY_COLLECTION" envDefault:"inquiries"`

	// CAPTCHA Configuration
	RecaptchaSecret   string  `env:"RECAPTCHA_SECRET_KEY"`
	RecaptchaMinScore float64 `env:"RECAPTCHA_MIN_SCORE" envDefault:"0.5"`

	// Abuse Guard Configuration
	RateLimitShortMax    int           `env:"RATE_LIMIT_SHORT_MAX" envDefault:"5"`
	RateLimitShortWindow time.Duration `env:"RATE_LIMIT_SHORT_WINDOW" envDefault:"1m"`
	RateLimitLongMax     int           `env:"RATE_LIMIT_LONG_MAX" envDefault:"10"`
	RateLimitLongWindow  time.Duration `env:"RATE_LIMIT_LONG_WINDOW" envDefault:"1h"`
	MinFillTime          time.Duration `env:"MIN_FILL_TIME" envDefault:"3s"`
	MaxFillTime          time.Duration `env:"MAX_FILL_TIME" envDefault:"30m"`
	MaxSessions          int           `env:"MAX_SESSIONS" envDefault:"10000"`

	// Coarse per-IP request limiter in front of every route
	RequestRateRPS   float64 `env:"REQUEST_RATE_RPS" envDefault:"2"`
	RequestRateBurst int     `env:"REQUEST_RATE_BURST" envDefault:"10"`

	// Notification Configuration
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `env:"TELEGRAM_CHAT_ID"`

	// Telemetry Configuration
	OTLPEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure    bool    `env:"OTEL_INSECURE" envDefault:"true"`
	OTLPSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"1.0"`
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load loads the configuration from environment variables and .env files
func Load() (*Config, error) {
	// Try multiple locations for .env file
	envLocations := []string{".env"}

	// If ENV is set, try to load that specific file first
	if envName := os.Getenv("ENV"); envName != "" {
		envLocations = append([]string{".env." + envName}, envLocations...)
	}

	for _, loc := range envLocations {
		// godotenv.Load never overwrites variables that are already set
		if err := godotenv.Load(loc); err == nil {
			break
		}
	}

	return Parse(env.Options{})
}

// Parse builds a Config from the process environment, or from
// opts.Environment when it is set.
func Parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Set default log file if not set
	if cfg.LogFile == "" {
		if cfg.IsProduction() {
			cfg.LogFile = "/app/logs/waitlist.log"
		} else {
			cfg.LogFile = "./logs/waitlist.log"
		}
	}

	// Ensure log directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Persistence {
	case "firestore", "memory":
	default:
		return fmt.Errorf("invalid PERSISTENCE %q: want firestore or memory", c.Persistence)
	}
	if c.Collection == "" {
		return fmt.Errorf("INQUIRY_COLLECTION must not be empty")
	}
	if c.MinFillTime < 0 || c.MaxFillTime <= c.MinFillTime {
		return fmt.Errorf("invalid fill time window %s..%s", c.MinFillTime, c.MaxFillTime)
	}
	if c.RateLimitShortMax <= 0 || c.RateLimitShortWindow <= 0 {
		return fmt.Errorf("short rate limit must be positive")
	}
	// A zero long limit disables the hourly layer.
	if c.RateLimitLongMax < 0 || (c.RateLimitLongMax > 0 && c.RateLimitLongWindow <= 0) {
		return fmt.Errorf("invalid long rate limit")
	}
	if c.MaxSessions < 0 {
		return fmt.Errorf("MAX_SESSIONS must not be negative")
	}
	if c.RequestRateRPS <= 0 || c.RequestRateBurst <= 0 {
		return fmt.Errorf("request rate limit must be positive")
	}
	return nil
}

// TelegramEnabled reports whether inquiry notifications are configured
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}
