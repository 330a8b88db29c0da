package server

import (
	"github.com/osa911/waitlist/internal/abuse"
	"github.com/osa911/waitlist/internal/config"
	"github.com/osa911/waitlist/internal/repository"
	"github.com/osa911/waitlist/internal/service"
)

// Dependencies are the collaborators Init would otherwise build from config.
// Nil fields are built; tests set them to stay off the network.
type Dependencies struct {
	Repository repository.InquiryRepository
	Verifier   abuse.Verifier
	Notifier   service.Notifier
	EventSink  abuse.EventSink
}

// GuardConfig maps the abuse thresholds from the service configuration
func GuardConfig(cfg *config.Config) abuse.Config {
	g := abuse.DefaultConfig()
	g.MinFillTime = cfg.MinFillTime
	g.MaxFillTime = cfg.MaxFillTime
	g.RateLayers = []abuse.RateLayer{
		{Max: cfg.RateLimitShortMax, Window: cfg.RateLimitShortWindow},
		{Max: cfg.RateLimitLongMax, Window: cfg.RateLimitLongWindow},
	}
	return g
}
