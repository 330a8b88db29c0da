package firebase

import (
	"context"
	"fmt"

	"github.com/osa911/waitlist/internal/logging"
)

// Loader walks an ordered provider chain and returns the first usable
// configuration.
type Loader struct {
	providers []Provider
	logger    *logging.Logger
	attempts  []Outcome
}

// NewLoader creates a loader over an explicit provider chain.
func NewLoader(logger *logging.Logger, providers ...Provider) *Loader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Loader{providers: providers, logger: logger}
}

// NewDefaultLoader builds the standard chain for origin: the remote endpoint
// (skipped for loopback origins), then FIREBASE_* environment variables, then
// the embedded defaults.
func NewDefaultLoader(origin string, logger *logging.Logger) *Loader {
	var chain []Provider
	if !IsLoopbackOrigin(origin) {
		chain = append(chain, NewRemoteProvider(origin, nil))
	}
	chain = append(chain,
		NewEnvProvider(nil, EmbeddedDefaults()),
		NewDefaultsProvider(),
	)
	return NewLoader(logger, chain...)
}

// Load resolves the configuration. Unavailable providers are skipped
// silently; the first available one decides. An incomplete result is
// reported as ErrConfigIncomplete rather than partially applied.
func (l *Loader) Load(ctx context.Context) (*Config, error) {
	l.attempts = l.attempts[:0]

	for _, p := range l.providers {
		out := p.Provide(ctx)
		l.attempts = append(l.attempts, out)
		if !out.Ok() {
			l.logger.Debug("[Config] %s source skipped: %v", p.Name(), out.Err)
			continue
		}

		cfg := out.Config.sanitized()
		if err := cfg.Validate(); err != nil {
			l.logger.Error("[Config] %s source rejected: %v", p.Name(), err)
			return nil, err
		}

		l.logger.Info("[Config] Firebase configuration loaded from %s (project %s)", p.Name(), cfg.ProjectID)
		return cfg, nil
	}

	return nil, fmt.Errorf("%w: no configuration source available", ErrConfigIncomplete)
}

// Attempts returns the outcomes of the last Load in chain order.
func (l *Loader) Attempts() []Outcome {
	return append([]Outcome(nil), l.attempts...)
}
