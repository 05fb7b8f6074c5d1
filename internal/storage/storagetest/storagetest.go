// Package storagetest holds the behavior every storage.Store must share.
package storagetest

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/internal/storage"
)

// SampleSession returns a session with a pending merge and a transcript.
func SampleSession(id string, updatedAt int64) *models.Session {
	pending := models.ReceiptData{
		Items:    []models.ReceiptItem{{ID: "item-9", Name: "Beer", Price: 5, Quantity: 1, AssignedTo: []string{}, ScanID: "scan-2"}},
		Subtotal: 5, Tax: 0.5, Total: 5.5,
		Currency: "$",
	}
	return &models.Session{
		ID: id,
		Receipt: models.ReceiptData{
			Items: []models.ReceiptItem{
				{ID: "item-1", Name: "Pizza", Price: 20, Quantity: 2, AssignedTo: []string{"Alice", "Bob"}, ScanID: "scan-1"},
				{ID: "manual-1", Name: "Salad", Price: 8.5, Quantity: 1, AssignedTo: []string{}},
			},
			Subtotal: 28.5, Tax: 2, Tip: 3, Total: 33.5,
			Currency: "€",
			ImageRef: "abc123",
		},
		Pending:  &pending,
		Currency: "€",
		Messages: []models.ChatMessage{
			{ID: "m1", Role: models.RoleModel, Text: "hello", Timestamp: 1000},
			{ID: "m2", Role: models.RoleUser, Text: "Alice had pizza", Timestamp: 2000},
		},
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
}

// Run exercises a Store built by newStore. Each subtest gets a fresh store.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	ctx := context.Background()

	t.Run("Create then Get round trips", func(t *testing.T) {
		store := newStore(t)
		original := SampleSession("sess-1", 100)

		if err := store.Create(ctx, original); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		got, err := store.Get(ctx, "sess-1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !reflect.DeepEqual(got, original) {
			t.Errorf("Get returned\n%+v\nwant\n%+v", got, original)
		}
	})

	t.Run("Create rejects duplicate ids", func(t *testing.T) {
		store := newStore(t)
		if err := store.Create(ctx, SampleSession("dup", 1)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if err := store.Create(ctx, SampleSession("dup", 1)); !errors.Is(err, storage.ErrExists) {
			t.Errorf("second Create error = %v, want ErrExists", err)
		}
	})

	t.Run("Get missing session", func(t *testing.T) {
		store := newStore(t)
		if _, err := store.Get(ctx, "ghost"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Get error = %v, want ErrNotFound", err)
		}
	})

	t.Run("Update applies mutation", func(t *testing.T) {
		store := newStore(t)
		if err := store.Create(ctx, SampleSession("sess-u", 100)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		updated, err := store.Update(ctx, "sess-u", func(s *models.Session) error {
			s.Receipt.Items = s.Receipt.Items[:1]
			s.Receipt.Items[0].AssignedTo = []string{"Carol"}
			s.Pending = nil
			s.Messages = append(s.Messages, models.ChatMessage{ID: "m3", Role: models.RoleSystem, Text: "ok", Timestamp: 3000})
			s.UpdatedAt = 200
			return nil
		})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		got, err := store.Get(ctx, "sess-u")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !reflect.DeepEqual(got, updated) {
			t.Errorf("stored session differs from Update result:\n%+v\n%+v", got, updated)
		}
		if len(got.Receipt.Items) != 1 || got.Receipt.Items[0].AssignedTo[0] != "Carol" {
			t.Errorf("items not updated: %+v", got.Receipt.Items)
		}
		if got.Pending != nil {
			t.Error("pending merge not cleared")
		}
		if len(got.Messages) != 3 || got.UpdatedAt != 200 {
			t.Errorf("messages/updatedAt = %d/%d", len(got.Messages), got.UpdatedAt)
		}
	})

	t.Run("Update error leaves session untouched", func(t *testing.T) {
		store := newStore(t)
		original := SampleSession("sess-e", 100)
		if err := store.Create(ctx, original); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		boom := errors.New("boom")
		_, err := store.Update(ctx, "sess-e", func(s *models.Session) error {
			s.Receipt.Items = nil
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("Update error = %v, want boom", err)
		}

		got, _ := store.Get(ctx, "sess-e")
		if !reflect.DeepEqual(got, original) {
			t.Errorf("session changed after failed update: %+v", got)
		}
	})

	t.Run("Update missing session", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Update(ctx, "ghost", func(*models.Session) error { return nil })
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Update error = %v, want ErrNotFound", err)
		}
	})

	t.Run("concurrent updates are serialized", func(t *testing.T) {
		store := newStore(t)
		if err := store.Create(ctx, &models.Session{ID: "sess-c"}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		const writers = 20
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Update(ctx, "sess-c", func(s *models.Session) error {
					s.Messages = append(s.Messages, models.ChatMessage{ID: time.Now().String(), Role: models.RoleUser})
					return nil
				})
				if err != nil {
					t.Errorf("Update failed: %v", err)
				}
			}()
		}
		wg.Wait()

		got, _ := store.Get(ctx, "sess-c")
		if len(got.Messages) != writers {
			t.Errorf("messages = %d, want %d", len(got.Messages), writers)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		if err := store.Create(ctx, SampleSession("sess-d", 1)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if err := store.Delete(ctx, "sess-d"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := store.Get(ctx, "sess-d"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Get after Delete error = %v", err)
		}
		if err := store.Delete(ctx, "sess-d"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("second Delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("PurgeExpired removes idle sessions only", func(t *testing.T) {
		store := newStore(t)
		for _, s := range []*models.Session{
			SampleSession("old-1", 100),
			SampleSession("old-2", 150),
			SampleSession("fresh", 500),
		} {
			if err := store.Create(ctx, s); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
		}

		removed, err := store.PurgeExpired(ctx, time.Unix(200, 0))
		if err != nil {
			t.Fatalf("PurgeExpired failed: %v", err)
		}
		if removed != 2 {
			t.Errorf("removed = %d, want 2", removed)
		}
		if _, err := store.Get(ctx, "fresh"); err != nil {
			t.Errorf("fresh session purged: %v", err)
		}
		if _, err := store.Get(ctx, "old-1"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("old session kept: %v", err)
		}
	})
}
