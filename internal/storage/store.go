package storage

import (
	"context"
	"errors"
	"log"
	"sync"
)

// Store holds the in-memory state document and flushes it to the backend
// after every mutation.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	key     string
	state   *State
}

// Open loads the document stored under key. An absent or unreadable document
// yields an empty state; the failure is logged, never returned.
func Open(ctx context.Context, backend Backend, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{backend: backend, key: key, state: NewState()}

	data, err := backend.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		log.Printf("[storage] no saved state under %q, starting empty", key)
	case err != nil:
		log.Printf("[storage] failed to read state %q, starting empty: %v", key, err)
	default:
		state, err := Decode(data)
		if err != nil {
			log.Printf("[storage] saved state %q is corrupt, starting empty: %v", key, err)
			break
		}
		s.state = state
		log.Printf("[storage] loaded state %q (items=%d episodes=%d cache=%d seasons=%d)",
			key, len(state.WatchedItems), len(state.WatchedEpisodes), len(state.ResolutionCache), len(state.SeasonCache))
	}
	return s
}

// View runs fn with read access to the current state. fn must not retain or
// mutate the document.
func (s *Store) View(fn func(*State)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

// Update applies fn to a copy of the state. When fn returns nil the copy
// replaces the live state and is flushed; otherwise nothing changes and the
// error is returned. A failed flush is logged and the in-memory state kept.
func (s *Store) Update(ctx context.Context, fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := fn(next); err != nil {
		return err
	}
	s.state = next
	s.flushLocked(ctx)
	return nil
}

// Snapshot returns an independent copy of the current state.
func (s *Store) Snapshot() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

func (s *Store) flushLocked(ctx context.Context) {
	data, err := s.state.Encode()
	if err != nil {
		log.Printf("[storage] %v", err)
		return
	}
	if err := s.backend.Set(context.WithoutCancel(ctx), s.key, data); err != nil {
		log.Printf("[storage] failed to persist state %q: %v", s.key, err)
	}
}
