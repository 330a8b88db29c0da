package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osa911/waitlist/internal/abuse"
	"github.com/osa911/waitlist/internal/api/handlers"
	"github.com/osa911/waitlist/internal/api/middleware"
	"github.com/osa911/waitlist/internal/config"
	"github.com/osa911/waitlist/internal/config/firebase"
	"github.com/osa911/waitlist/internal/logging"
	"github.com/osa911/waitlist/internal/observability"
	"github.com/osa911/waitlist/internal/repository"
	"github.com/osa911/waitlist/internal/server/routes"
	"github.com/osa911/waitlist/internal/service"
	"github.com/osa911/waitlist/internal/tasks"
	"github.com/osa911/waitlist/internal/utils"
	"github.com/osa911/waitlist/internal/version"
)

const (
	serviceName     = "waitlist"
	shutdownTimeout = 15 * time.Second
)

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	logger *logging.Logger
	router *gin.Engine
	deps   Dependencies

	sessions        *service.SessionService
	cleanup         *tasks.SessionCleanup
	shutdownTracing func(context.Context) error
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logging.Logger, deps Dependencies) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Gin's own logger is replaced by middleware.RequestLogger
	gin.DisableConsoleColor()
	gin.DefaultWriter = io.Discard

	return &Server{
		cfg:    cfg,
		logger: logger,
		router: gin.New(),
		deps:   deps,
	}
}

// Init builds the persistence backend, the session service and the routes
func (s *Server) Init(ctx context.Context) error {
	shutdown, err := observability.Setup(ctx, observability.Config{
		Endpoint:    s.cfg.OTLPEndpoint,
		Insecure:    s.cfg.OTLPInsecure,
		SampleRatio: s.cfg.OTLPSampleRatio,
		ServiceName: serviceName,
	}, version.Version)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	s.shutdownTracing = shutdown

	// The server is its own config origin, so the remote source is skipped
	loader := firebase.NewLoader(s.logger,
		firebase.NewEnvProvider(nil, firebase.EmbeddedDefaults()),
		firebase.NewDefaultsProvider(),
	)

	if err := s.router.SetTrustedProxies(s.cfg.TrustedProxies); err != nil {
		return fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	var unavailable error
	if s.deps.Repository == nil {
		repo, err := s.openRepository(ctx, loader)
		switch {
		case errors.Is(err, firebase.ErrConfigIncomplete):
			// Inquiry routes answer 503 until the configuration is complete
			s.logger.Error("[Server] Inquiry submissions disabled: %v", err)
			unavailable = err
			mem := repository.NewMemoryRepository()
			mem.FailWith(&repository.BackendError{Class: repository.ClassUnavailable, Message: err.Error(), Err: err})
			repo = mem
		case err != nil:
			return err
		}
		s.deps.Repository = repo
	}

	if s.deps.EventSink == nil {
		s.deps.EventSink = abuse.NewLogSink(logging.NewSecurityLogger(s.logger.Writer()))
	}
	guardOpts := []abuse.Option{abuse.WithEventSink(s.deps.EventSink)}

	if s.deps.Verifier == nil && s.cfg.RecaptchaSecret != "" {
		s.deps.Verifier = service.NewRecaptchaService(s.cfg.RecaptchaSecret, s.cfg.RecaptchaMinScore)
	}
	if s.deps.Verifier != nil {
		guardOpts = append(guardOpts, abuse.WithVerifier(s.deps.Verifier))
	} else {
		s.logger.Warn("[Server] RECAPTCHA_SECRET_KEY not set; CAPTCHA tokens are checked for presence only")
	}

	var pipelineOpts []service.PipelineOption
	if s.deps.Notifier == nil && s.cfg.TelegramEnabled() {
		s.deps.Notifier = service.NewTelegramService(s.cfg.TelegramBotToken, s.cfg.TelegramChatID)
	}
	if s.deps.Notifier != nil {
		pipelineOpts = append(pipelineOpts, service.WithNotifier(s.deps.Notifier))
	}

	guardCfg := GuardConfig(s.cfg)
	s.sessions = service.NewSessionService(
		service.SessionConfig{Guard: guardCfg, Collection: s.cfg.Collection, MaxSessions: s.cfg.MaxSessions},
		s.deps.Repository,
		service.WithGuardOptions(guardOpts...),
		service.WithPipelineOptions(pipelineOpts...),
		service.WithSessionLogger(s.logger),
	)
	s.cleanup = tasks.NewSessionCleanup(s.sessions, tasks.DefaultCleanupInterval, s.logger)

	h := &routes.Handlers{
		Health:         handlers.NewHealthHandler(s.sessions),
		FirebaseConfig: handlers.NewFirebaseConfigHandler(loader),
		Inquiry: handlers.NewInquiryHandler(s.sessions, handlers.CookieConfig{
			TTL:        guardCfg.MaxFillTime,
			Production: s.cfg.IsProduction(),
			Domain:     utils.CookieDomain(s.cfg.IsProduction(), s.cfg.ConfigOrigin),
		}),
	}
	m := &routes.Middleware{
		Logger: s.logger,
		RateLimiter: middleware.NewIPRateLimiter(middleware.RateLimitConfig{
			RPS:   s.cfg.RequestRateRPS,
			Burst: s.cfg.RequestRateBurst,
		}),
		Sessions:             s.sessions,
		InquiriesUnavailable: unavailable,
		AllowedOrigins:       s.cfg.AllowedOrigins,
		Production:           s.cfg.IsProduction(),
		ServiceName:          serviceName,
	}

	routes.SetupGlobalMiddleware(s.router, m)
	routes.Setup(s.router, h, m)
	return nil
}

func (s *Server) openRepository(ctx context.Context, loader *firebase.Loader) (repository.InquiryRepository, error) {
	if s.cfg.Persistence == "memory" {
		s.logger.Warn("[Server] Using in-memory persistence; inquiries are lost on restart")
		return repository.NewMemoryRepository(), nil
	}

	fbCfg, err := loader.Load(ctx)
	if err != nil {
		return nil, logging.WrapError(err, "resolve Firebase configuration")
	}
	admin, err := firebase.InitializeAdmin(ctx, fbCfg, s.cfg.CredentialsFile)
	if err != nil {
		return nil, logging.WrapError(err, "initialize Firebase Admin")
	}
	return repository.NewFirestoreRepository(admin.Firestore()), nil
}

// Router exposes the configured engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.cleanup.Start()
	defer s.cleanup.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[Server] Listening on %s (%s)", srv.Addr, s.cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.close()
			return fmt.Errorf("server failed: %w", err)
		}
		s.close()
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("[Server] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	s.close()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	s.logger.Info("[Server] Stopped")
	return nil
}

func (s *Server) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.shutdownTracing != nil {
		if err := s.shutdownTracing(ctx); err != nil {
			s.logger.Error("[Server] Failed to flush traces: %v", err)
		}
	}
	if s.deps.Repository != nil {
		if err := s.deps.Repository.Close(); err != nil {
			s.logger.Error("[Server] Failed to close repository: %v", err)
		}
	}
}

// Run builds, initializes and starts a server with the default dependencies
func Run(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	srv := NewServer(cfg, logger, Dependencies{})
	if err := srv.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}
	return srv.Start(ctx)
}
