// Package storage provides abstractions for session state storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/receiptsplit/internal/models"
)

var (
	// ErrNotFound is returned when no session has the requested ID.
	ErrNotFound = errors.New("session not found")
	// ErrExists is returned when creating a session whose ID is taken.
	ErrExists = errors.New("session already exists")
)

// UpdateFunc mutates a session in place. Returning an error aborts the update
// and leaves the stored session untouched.
type UpdateFunc func(s *models.Session) error

// Store defines the interface for session state storage.
// This abstraction allows swapping storage backends (memory, SQLite)
// without changing the service layer.
//
// Sessions handed out by a Store are copies; changing them has no effect
// until they go through Update.
type Store interface {
	// Create persists a new session. The session ID must be set.
	Create(ctx context.Context, s *models.Session) error

	// Get retrieves a session by its ID.
	// Returns ErrNotFound if the session does not exist.
	Get(ctx context.Context, id string) (*models.Session, error)

	// Update atomically reads a session, applies fn and stores the result.
	// It returns the stored session. Concurrent updates of the same session
	// are serialized.
	Update(ctx context.Context, id string, fn UpdateFunc) (*models.Session, error)

	// Delete removes a session. Deleting a missing session returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// PurgeExpired removes sessions not updated since before and returns how
	// many were removed.
	PurgeExpired(ctx context.Context, before time.Time) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
