package memory

import (
	"context"
	"testing"

	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/internal/storage"
	"github.com/mmynk/receiptsplit/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return New()
	})
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := New()
	if err := store.Create(ctx, storagetest.SampleSession("sess-1", 1)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, _ := store.Get(ctx, "sess-1")
	got.Receipt.Items[0].AssignedTo[0] = "Mallory"
	got.Messages = append(got.Messages, models.ChatMessage{ID: "x"})

	again, _ := store.Get(ctx, "sess-1")
	if again.Receipt.Items[0].AssignedTo[0] != "Alice" || len(again.Messages) != 2 {
		t.Errorf("caller mutation leaked into store: %+v", again)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}
