// Package store holds the dashboard state. Every mutation is an Action
// applied under a single lock; readers get deep-copied snapshots.
package store

import (
	"errors"
	"log/slog"
	"sync"
)

// Change describes one applied action.
type Change struct {
	Slice  Slice  `json:"slice"`
	Action string `json:"action"`
}

// Store is the single-writer state container. It is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	state State

	subMu  sync.Mutex
	subs   map[chan Change]struct{}
	logger *slog.Logger
}

// New creates a Store in its initial state.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		state:  initialState(),
		subs:   make(map[chan Change]struct{}),
		logger: logger,
	}
}

// Dispatch applies a to the state and notifies subscribers. A rejected
// action leaves the state untouched and notifies nobody.
func (s *Store) Dispatch(a Action) error {
	s.mu.Lock()
	slice, err := a.apply(&s.state)
	s.mu.Unlock()
	if errors.Is(err, errStale) {
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Debug("store: dispatch", slog.String("slice", string(slice)), slog.String("action", a.Name()))
	s.publish(Change{Slice: slice, Action: a.Name()})
	return nil
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Read calls fn with the live state under the lock. fn must not retain
// references into the state nor dispatch.
func (s *Store) Read(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// Subscribe returns a channel receiving every change and a function that
// cancels the subscription. Slow subscribers miss changes rather than
// blocking dispatch.
func (s *Store) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Change, buffer)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, ch)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) publish(c Change) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- c:
		default:
			s.logger.Warn("store: subscriber slow, change dropped", slog.String("action", c.Action))
		}
	}
}

// errStale rejects an action superseded by a newer one. Dispatch swallows it.
var errStale = errors.New("store: stale action")
