// Package memory provides an in-process implementation of storage.Store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps sessions in a map guarded by a mutex.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func New() *Store {
	return &Store{sessions: make(map[string]*models.Session)}
}

func (s *Store) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return storage.ErrExists
	}
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *Store) Get(_ context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return session.Clone(), nil
}

func (s *Store) Update(ctx context.Context, id string, fn storage.UpdateFunc) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.ID = id
	s.sessions[id] = working
	return working.Clone(), nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *Store) PurgeExpired(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := before.Unix()
	removed := 0
	for id, session := range s.sessions {
		if session.UpdatedAt < cutoff {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of sessions held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) Close() error { return nil }
