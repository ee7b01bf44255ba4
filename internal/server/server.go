package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripplanner/internal/app/handlers"
	"github.com/FACorreiaa/go-tripplanner/internal/app/middleware"
	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
	"github.com/FACorreiaa/go-tripplanner/internal/app/observability/metrics"
	"github.com/FACorreiaa/go-tripplanner/internal/app/services"
	"github.com/FACorreiaa/go-tripplanner/internal/app/session"
	"github.com/FACorreiaa/go-tripplanner/internal/pkg/apiclient"
	"github.com/FACorreiaa/go-tripplanner/internal/pkg/cache"
	"github.com/FACorreiaa/go-tripplanner/internal/pkg/config"
	"github.com/FACorreiaa/go-tripplanner/internal/pkg/persist"
	"github.com/FACorreiaa/go-tripplanner/internal/routes"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	backend  persist.Backend
	caches   *cache.Manager
	sessions *session.Manager
	services *services.Services
	router   http.Handler
}

// New wires storage, the upstream client and the session manager.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger,
	}

	backend, err := s.setupPersistence(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to setup persistence: %w", err)
	}
	s.backend = backend

	creds := persist.NewCredentialStore(backend, cfg.Persist.Namespace)
	if cfg.API.Token != "" {
		if err := creds.SetToken(ctx, cfg.API.Token); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to store API token: %w", err)
		}
	}

	var client *apiclient.Client
	if services.Mode(cfg.ServicesMode) == services.ModeLive {
		client, err = apiclient.New(cfg.API.BaseURL,
			apiclient.WithCredentials(creds),
			apiclient.WithLogger(logger),
			apiclient.WithDefaults(cfg.API.Timeout, cfg.API.RetryAttempts, cfg.API.RetryDelay),
		)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to create API client: %w", err)
		}
		s.caches = cache.NewManager(logger)
	}

	s.services, err = services.New(services.Mode(cfg.ServicesMode), client, s.caches, logger)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create services: %w", err)
	}

	store := persist.NewStore(backend, cfg.Persist.Namespace, logger, persist.WithFailureHook(func() {
		metrics.Get().PersistFailuresTotal.Add(context.Background(), 1)
	}))
	s.sessions = session.NewManager(s.services, store, session.Config{
		TTL:               cfg.Session.TTL,
		MaxSelectedStyles: cfg.Session.MaxSelectedStyles,
		PhaseStep:         cfg.Session.PhaseDelay,
		TypingDelay:       cfg.Session.TypingDelay,
		TravelMode:        models.ModeWalking,
	}, logger)

	return s, nil
}

func (s *Server) setupPersistence(ctx context.Context) (persist.Backend, error) {
	p := s.cfg.Persist
	backend, err := persist.Open(ctx, persist.Config{
		Driver:     p.Driver,
		SQLitePath: p.SQLitePath,
		Postgres: persist.PostgresConfig{
			Host:     p.Postgres.Host,
			Port:     p.Postgres.Port,
			User:     p.Postgres.Username,
			Password: p.Postgres.Password,
			DB:       p.Postgres.DB,
			SSLMode:  p.Postgres.SSLMode,
		},
		RedisAddr:     p.Redis.Addr,
		RedisPassword: p.Redis.Password,
		RedisDB:       p.Redis.DB,
	}, s.logger)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Persistence ready", zap.String("driver", p.Driver), zap.String("namespace", p.Namespace))
	return backend, nil
}

// Handlers builds the route handlers over the server's dependencies.
func (s *Server) Handlers() *routes.AppHandlers {
	return &routes.AppHandlers{
		Sessions: handlers.NewSessionHandlers(s.sessions, s.services, s.logger),
		Places:   handlers.NewPlacesHandlers(s.services, s.logger),
	}
}

// RouterOptions derives the middleware settings from the config.
func (s *Server) RouterOptions(serviceName string) RouterOptions {
	opts := RouterOptions{ServiceName: serviceName}
	if s.cfg.RateLimit.RPS > 0 {
		opts.RateLimit = middleware.NewRateLimiter(s.cfg.RateLimit.RPS, s.cfg.RateLimit.Burst)
	}
	return opts
}

// HTTPServer creates and configures the HTTP server. The write timeout leaves room for plan generation.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.cfg.ServerPort,
		Handler:      s.router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}
}

// SetRouter sets the HTTP router/handler
func (s *Server) SetRouter(router http.Handler) {
	s.router = router
}

func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// Close closes all server resources
func (s *Server) Close() {
	if s.sessions != nil {
		s.sessions.Close()
	}
	if s.caches != nil {
		s.caches.Close()
	}
	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			s.logger.Warn("Failed to close persistence backend", zap.Error(err))
		}
	}
}
