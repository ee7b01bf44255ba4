package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
	"github.com/FACorreiaa/go-tripplanner/internal/app/observability/metrics"
	"github.com/FACorreiaa/go-tripplanner/internal/app/services"
	"github.com/FACorreiaa/go-tripplanner/internal/app/state"
	"github.com/FACorreiaa/go-tripplanner/internal/pkg/persist"
)

// Config tunes every session created by a Manager.
type Config struct {
	TTL               time.Duration
	MaxSelectedStyles int
	PhaseStep         time.Duration
	TypingDelay       time.Duration
	TravelMode        models.TravelMode
}

// DefaultConfig mirrors the pacing of the planning screens.
func DefaultConfig() Config {
	return Config{
		TTL:               2 * time.Hour,
		MaxSelectedStyles: 3,
		PhaseStep:         1500 * time.Millisecond,
		TypingDelay:       time.Second,
		TravelMode:        models.ModeWalking,
	}
}

// Manager keeps live sessions in memory. Idle sessions expire after the TTL and are closed; their
// persisted snapshot survives so they can be resumed.
type Manager struct {
	sessions *gocache.Cache
	services *services.Services
	persist  *persist.Store
	cfg      Config
	logger   *zap.Logger
}

func NewManager(svc *services.Services, ps *persist.Store, cfg Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.TravelMode == "" {
		cfg.TravelMode = models.ModeWalking
	}
	cleanup := cfg.TTL / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}
	m := &Manager{
		sessions: gocache.New(cfg.TTL, cleanup),
		services: svc,
		persist:  ps,
		cfg:      cfg,
		logger:   logger,
	}
	m.sessions.OnEvicted(func(id string, v any) {
		if s, ok := v.(*Session); ok {
			s.Close()
		}
		metrics.Get().ActiveSessions.Add(context.Background(), -1)
		m.logger.Debug("Session closed", zap.String("session_id", id))
	})
	return m
}

// Create starts a fresh session.
func (m *Manager) Create(ctx context.Context) *Session {
	s := newSession(uuid.NewString(), state.Initial(), m.services, m.persist, m.cfg, m.logger)
	m.sessions.Set(s.ID(), s, gocache.DefaultExpiration)
	metrics.Get().SessionsCreatedTotal.Add(ctx, 1)
	metrics.Get().ActiveSessions.Add(ctx, 1)
	m.logger.Info("Session created", zap.String("session_id", s.ID()))
	return s
}

// Get returns the live session for id, resuming it from its persisted snapshot when it has been
// evicted. Every hit extends the session TTL.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if v, ok := m.sessions.Get(id); ok {
		m.sessions.Set(id, v, gocache.DefaultExpiration)
		return v.(*Session), nil
	}
	snap := m.persist.Hydrate(ctx, id)
	if snap.Empty() {
		return nil, fmt.Errorf("session %s: %w", id, models.ErrSessionNotFound)
	}
	initial := snap.Apply(state.Initial())
	if initial.CurrentItinerary != nil {
		initial.CurrentScreen = state.ScreenItinerary
	}
	s := newSession(id, initial, m.services, m.persist, m.cfg, m.logger)
	if err := m.sessions.Add(id, s, gocache.DefaultExpiration); err != nil {
		// resumed concurrently by another request
		s.Close()
		if v, ok := m.sessions.Get(id); ok {
			return v.(*Session), nil
		}
		return nil, fmt.Errorf("session %s: %w", id, models.ErrSessionNotFound)
	}
	metrics.Get().ActiveSessions.Add(ctx, 1)
	m.logger.Info("Session resumed", zap.String("session_id", id))
	return s, nil
}

// Delete closes the session and forgets its persisted snapshot.
func (m *Manager) Delete(ctx context.Context, id string) error {
	_, live := m.sessions.Get(id)
	if !live && m.persist.Hydrate(ctx, id).Empty() {
		return fmt.Errorf("session %s: %w", id, models.ErrSessionNotFound)
	}
	if live {
		m.sessions.Delete(id)
	}
	m.persist.Forget(ctx, id)
	return nil
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	return m.sessions.ItemCount()
}

// Close closes every live session.
func (m *Manager) Close() {
	for id := range m.sessions.Items() {
		m.sessions.Delete(id)
	}
}
