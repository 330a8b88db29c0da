package firebase

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// ErrUnavailable is reported by a provider that has nothing to offer.
// The loader moves on to the next provider in the chain.
var ErrUnavailable = errors.New("configuration source unavailable")

// ConfigEndpointPath is served by the API and fetched by RemoteProvider.
const ConfigEndpointPath = "/api/firebase-config"

//go:embed defaults.json
var defaultsJSON []byte

// Outcome is the typed result of a single provider attempt.
type Outcome struct {
	Source string
	Config *Config
	Err    error
}

// Ok reports whether the provider produced a configuration.
func (o Outcome) Ok() bool {
	return o.Err == nil && o.Config != nil
}

// Provider is one source in the fallback chain.
type Provider interface {
	Name() string
	Provide(ctx context.Context) Outcome
}

// RemoteProvider fetches the configuration from a secure endpoint.
type RemoteProvider struct {
	origin string
	client *http.Client
}

// NewRemoteProvider creates a provider for origin (scheme://host[:port]).
func NewRemoteProvider(origin string, client *http.Client) *RemoteProvider {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RemoteProvider{
		origin: strings.TrimRight(origin, "/"),
		client: client,
	}
}

func (p *RemoteProvider) Name() string { return "remote" }

// Provide never returns an incomplete configuration; a payload that fails
// validation is reported as unavailable so the chain falls back.
func (p *RemoteProvider) Provide(ctx context.Context) Outcome {
	out := Outcome{Source: p.Name()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.origin+ConfigEndpointPath, nil)
	if err != nil {
		out.Err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		return out
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		out.Err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		return out
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		out.Err = fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
		return out
	}

	var cfg Config
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&cfg); err != nil {
		out.Err = fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
		return out
	}

	clean := cfg.sanitized()
	if err := clean.Validate(); err != nil {
		out.Err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		return out
	}

	out.Config = clean
	return out
}

// EnvProvider reads FIREBASE_* variables and fills the gaps from base.
type EnvProvider struct {
	environment map[string]string
	base        Config
}

// NewEnvProvider creates a provider over environment; nil means the process
// environment.
func NewEnvProvider(environment map[string]string, base Config) *EnvProvider {
	return &EnvProvider{environment: environment, base: base}
}

func (p *EnvProvider) Name() string { return "env" }

func (p *EnvProvider) Provide(_ context.Context) Outcome {
	out := Outcome{Source: p.Name()}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: p.environment}); err != nil {
		out.Err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		return out
	}
	if cfg == (Config{}) {
		out.Err = fmt.Errorf("%w: no FIREBASE_* variables set", ErrUnavailable)
		return out
	}

	merged := cfg.mergeOver(p.base)
	out.Config = &merged
	return out
}

// DefaultsProvider returns the embedded defaults. It is always available.
type DefaultsProvider struct {
	defaults Config
}

// NewDefaultsProvider creates a provider over the embedded defaults.
func NewDefaultsProvider() *DefaultsProvider {
	return &DefaultsProvider{defaults: EmbeddedDefaults()}
}

func (p *DefaultsProvider) Name() string { return "defaults" }

func (p *DefaultsProvider) Provide(_ context.Context) Outcome {
	cfg := p.defaults
	return Outcome{Source: p.Name(), Config: &cfg}
}

// EmbeddedDefaults decodes defaults.json.
func EmbeddedDefaults() Config {
	var cfg Config
	// defaults.json ships with the binary; a decode failure leaves every
	// field empty, which surfaces as ErrConfigIncomplete.
	_ = json.Unmarshal(defaultsJSON, &cfg)
	return cfg
}

// IsLoopbackOrigin reports whether origin points at the local machine.
func IsLoopbackOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Hostname() == "" {
		return true
	}
	host := strings.ToLower(u.Hostname())
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}
