package persist

import (
	"context"
	"encoding/json"
	"reflect"

	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
	"github.com/FACorreiaa/go-tripplanner/internal/app/state"
)

const DefaultNamespace = "travel-planner-storage"

// Snapshot is the persisted subset of a session. Absent fields decode to nil.
type Snapshot struct {
	SelectedStyles   []models.TravelStyle  `json:"selectedStyles,omitempty"`
	TravelContext    *models.TravelContext `json:"travelContext,omitempty"`
	CurrentItinerary *models.Itinerary     `json:"currentItinerary,omitempty"`
}

// SnapshotOf extracts the persisted slices of s.
func SnapshotOf(s state.State) Snapshot {
	return Snapshot{
		SelectedStyles:   s.SelectedStyles,
		TravelContext:    s.TravelContext,
		CurrentItinerary: s.CurrentItinerary,
	}
}

// Empty reports whether nothing was hydrated.
func (s Snapshot) Empty() bool {
	return s.SelectedStyles == nil && s.TravelContext == nil && s.CurrentItinerary == nil
}

// Apply overlays the present fields of s onto st.
func (s Snapshot) Apply(st state.State) state.State {
	if s.SelectedStyles != nil {
		st.SelectedStyles = s.SelectedStyles
	}
	if s.TravelContext != nil {
		st.TravelContext = s.TravelContext
	}
	if s.CurrentItinerary != nil {
		st.CurrentItinerary = s.CurrentItinerary
	}
	return st
}

// Store reads and writes session snapshots under <namespace>:<session>.
type Store struct {
	backend   Backend
	namespace string
	logger    *zap.Logger
	onFailure func()
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithFailureHook runs fn after every swallowed persist failure.
func WithFailureHook(fn func()) StoreOption {
	return func(s *Store) { s.onFailure = fn }
}

func NewStore(backend Backend, namespace string, logger *zap.Logger, opts ...StoreOption) *Store {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{backend: backend, namespace: namespace, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the backend key for a session.
func (s *Store) Key(session string) string {
	return s.namespace + ":" + session
}

// Backend exposes the underlying backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// Hydrate loads the snapshot for session. Missing keys, read errors and malformed
// JSON all yield an empty snapshot.
func (s *Store) Hydrate(ctx context.Context, session string) Snapshot {
	key := s.Key(session)
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Failed to read persisted state", zap.String("key", key), zap.Error(err))
		return Snapshot{}
	}
	if !ok || len(raw) == 0 {
		return Snapshot{}
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		s.logger.Warn("Discarding malformed persisted state", zap.String("key", key), zap.Error(err))
		return Snapshot{}
	}
	return snap
}

// Persist writes the persisted slices of st. Failures are logged and swallowed.
func (s *Store) Persist(ctx context.Context, session string, st state.State) {
	key := s.Key(session)
	raw, err := json.Marshal(SnapshotOf(st))
	if err != nil {
		s.fail(key, err)
		return
	}
	if err := s.backend.Set(ctx, key, raw); err != nil {
		s.fail(key, err)
	}
}

// Forget removes the snapshot for session.
func (s *Store) Forget(ctx context.Context, session string) {
	key := s.Key(session)
	if err := s.backend.Delete(ctx, key); err != nil {
		s.fail(key, err)
	}
}

func (s *Store) fail(key string, err error) {
	s.logger.Warn("Failed to persist state", zap.String("key", key), zap.Error(err))
	if s.onFailure != nil {
		s.onFailure()
	}
}

// Subscriber returns a state listener that persists session whenever one of the
// persisted slices changed.
func (s *Store) Subscriber(ctx context.Context, session string) state.Listener {
	return func(prev, next state.State) {
		if !Changed(prev, next) {
			return
		}
		s.Persist(ctx, session, next)
	}
}

// Changed reports whether any persisted slice differs between prev and next.
func Changed(prev, next state.State) bool {
	return !reflect.DeepEqual(SnapshotOf(prev), SnapshotOf(next))
}
