// Package identity owns the durable client session identity.
package identity

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/karth1ksr/mf-recommendation-engine/internal/store"
)

// SessionKey is the fixed key under which the session identity is persisted.
const SessionKey = "mf_session_id"

// Store owns the session identity token. The token survives restarts through
// the backing repository; when storage is unavailable the store degrades to an
// in-memory token for the process lifetime instead of failing.
type Store struct {
	mu      sync.Mutex
	repo    store.Repository
	current string
}

// NewStore creates a session identity store backed by repo. A nil repo yields
// a purely in-memory store.
func NewStore(repo store.Repository) *Store {
	return &Store{repo: repo}
}

// GetOrCreate returns the current session identity, loading it from storage or
// generating and persisting a fresh one if absent.
func (s *Store) GetOrCreate(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != "" {
		return s.current
	}

	if s.repo != nil {
		stored, err := s.repo.GetValue(ctx, SessionKey)
		if err != nil {
			slog.Warn("Session identity storage unavailable, using in-memory identity", "error", err)
		} else if stored != "" {
			s.current = stored
			return s.current
		}
	}

	s.current = uuid.NewString()
	s.persistLocked(ctx)
	return s.current
}

// Reset discards the current identity, generates a fresh one, persists it and
// returns it.
func (s *Store) Reset(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.DeleteValue(ctx, SessionKey); err != nil {
			slog.Warn("Failed to discard stored session identity", "error", err)
		}
	}

	s.current = uuid.NewString()
	s.persistLocked(ctx)
	return s.current
}

// Adopt replaces the current identity with the authoritative value assigned by
// the engine and persists it. Empty values are ignored.
func (s *Store) Adopt(ctx context.Context, id string) {
	if id == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id == s.current {
		return
	}
	s.current = id
	s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) {
	if s.repo == nil {
		return
	}
	if err := s.repo.SetValue(ctx, SessionKey, s.current); err != nil {
		slog.Warn("Failed to persist session identity, continuing in-memory", "error", err)
	}
}
