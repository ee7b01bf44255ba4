package state

import (
	"sync"

	"go.uber.org/zap"
)

// Listener observes a transition. It runs synchronously inside Dispatch and must not dispatch.
type Listener func(prev, next State)

// Store owns one State and serializes every transition through Reduce.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners []*listenerEntry
	logger    *zap.Logger
}

type listenerEntry struct {
	fn Listener
}

// NewStore returns a store seeded with initial. A nil logger is replaced by a no-op logger.
func NewStore(initial State, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{state: initial.Clone(), logger: logger}
}

// Dispatch reduces a into the current state and notifies listeners in registration order.
// It returns a snapshot of the new state.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	next := Reduce(prev, a)
	s.state = next
	s.logger.Debug("action dispatched", zap.String("type", string(a.Type())))

	for _, l := range s.listeners {
		s.notify(l.fn, prev, next)
	}
	return next.Clone()
}

func (s *Store) notify(fn Listener, prev, next State) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("state listener panicked", zap.Any("panic", r))
		}
	}()
	fn(prev.Clone(), next.Clone())
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn and returns a func that removes it. Calling the returned func twice is safe.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	entry := &listenerEntry{fn: fn}
	s.mu.Lock()
	s.listeners = append(s.listeners, entry)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			kept := make([]*listenerEntry, 0, len(s.listeners))
			for _, l := range s.listeners {
				if l != entry {
					kept = append(kept, l)
				}
			}
			s.listeners = kept
		})
	}
}
