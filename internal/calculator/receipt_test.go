package calculator

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/mmynk/receiptsplit/internal/models"
)

// sequentialIDs returns an ID source producing id-1, id-2, ...
func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func TestRecomputeTotals(t *testing.T) {
	data := models.ReceiptData{
		Items: []models.ReceiptItem{
			item("1", "Pizza", 12.5, 1),
			item("2", "Beer", 7.5, 2),
		},
		Subtotal: 99, // stale
		Tax:      2,
		Tip:      3,
		Total:    0,
	}

	once, err := RecomputeTotals(data)
	if err != nil {
		t.Fatalf("RecomputeTotals failed: %v", err)
	}
	if once.Subtotal != 20 {
		t.Errorf("subtotal = %v, want 20", once.Subtotal)
	}
	if once.Total != 25 {
		t.Errorf("total = %v, want 25", once.Total)
	}
	if once.Tax != 2 || once.Tip != 3 {
		t.Errorf("tax/tip changed: %v/%v", once.Tax, once.Tip)
	}

	twice, err := RecomputeTotals(once)
	if err != nil {
		t.Fatalf("second RecomputeTotals failed: %v", err)
	}
	if twice.Subtotal != once.Subtotal || twice.Total != once.Total {
		t.Errorf("not idempotent: %+v vs %+v", twice, once)
	}
}

func TestRecomputeTotals_NonFinite(t *testing.T) {
	data := models.ReceiptData{
		Items: []models.ReceiptItem{item("1", "Broken", math.NaN(), 1)},
	}
	if _, err := RecomputeTotals(data); !errors.Is(err, ErrNonFinite) {
		t.Errorf("expected ErrNonFinite, got %v", err)
	}
}

func TestAddItem(t *testing.T) {
	base := receipt(1, 2, item("1", "Pizza", 10, 1, "Alice"))

	tests := []struct {
		name    string
		input   ItemInput
		wantErr bool
	}{
		{name: "valid item", input: ItemInput{Name: "Salad", Price: "4.50", Quantity: "1"}},
		{name: "comma decimal separator", input: ItemInput{Name: "Salad", Price: "4,50", Quantity: "1"}},
		{name: "empty name", input: ItemInput{Name: "  ", Price: "4.50", Quantity: "1"}, wantErr: true},
		{name: "non-numeric price", input: ItemInput{Name: "Salad", Price: "abc", Quantity: "1"}, wantErr: true},
		{name: "NaN price", input: ItemInput{Name: "Salad", Price: "NaN", Quantity: "1"}, wantErr: true},
		{name: "empty quantity", input: ItemInput{Name: "Salad", Price: "4.50", Quantity: ""}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, added, err := AddItem(base, tt.input, sequentialIDs("manual"))
			if (err != nil) != tt.wantErr {
				t.Fatalf("AddItem() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidItem) {
					t.Errorf("expected ErrInvalidItem, got %v", err)
				}
				if len(got.Items) != 1 || got.Subtotal != base.Subtotal || got.Total != base.Total {
					t.Errorf("receipt changed on invalid input: %+v", got)
				}
				return
			}

			if len(got.Items) != 2 {
				t.Fatalf("expected 2 items, got %d", len(got.Items))
			}
			if added.ID == "" || added.ScanID != "" || len(added.AssignedTo) != 0 {
				t.Errorf("unexpected new item: %+v", added)
			}
			if math.Abs(got.Subtotal-14.5) > 1e-9 {
				t.Errorf("subtotal = %v, want 14.5", got.Subtotal)
			}
			if math.Abs(got.Total-17.5) > 1e-9 {
				t.Errorf("total = %v, want 17.5", got.Total)
			}
			if len(base.Items) != 1 {
				t.Error("input receipt was mutated")
			}
		})
	}
}

func TestAddItem_SkipsTakenIDs(t *testing.T) {
	base := receipt(0, 0, item("manual-1", "Pizza", 10, 1))

	_, added, err := AddItem(base, ItemInput{Name: "Salad", Price: "4", Quantity: "1"}, sequentialIDs("manual"))
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if added.ID != "manual-2" {
		t.Errorf("ID = %s, want manual-2", added.ID)
	}
}

func TestEditItem(t *testing.T) {
	base := receipt(1, 0,
		models.ReceiptItem{ID: "1", Name: "Pizza", Price: 10, Quantity: 1, AssignedTo: []string{"Alice"}, ScanID: "scan-a"},
		item("2", "Beer", 5, 1),
	)

	got, edited, err := EditItem(base, "1", ItemInput{Name: "Pizza Margherita", Price: "12", Quantity: "2"})
	if err != nil {
		t.Fatalf("EditItem failed: %v", err)
	}
	if edited.ID != "1" || edited.ScanID != "scan-a" || len(edited.AssignedTo) != 1 {
		t.Errorf("identity or assignment lost: %+v", edited)
	}
	if edited.Name != "Pizza Margherita" || edited.Price != 12 || edited.Quantity != 2 {
		t.Errorf("edit not applied: %+v", edited)
	}
	if got.Subtotal != 17 || got.Total != 18 {
		t.Errorf("totals = %v/%v, want 17/18", got.Subtotal, got.Total)
	}

	if _, _, err := EditItem(base, "missing", ItemInput{Name: "X", Price: "1", Quantity: "1"}); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}

	unchanged, _, err := EditItem(base, "1", ItemInput{Name: "", Price: "12", Quantity: "2"})
	if !errors.Is(err, ErrInvalidItem) {
		t.Errorf("expected ErrInvalidItem, got %v", err)
	}
	if unchanged.Items[0].Name != "Pizza" {
		t.Errorf("invalid edit partially applied: %+v", unchanged.Items[0])
	}
}

func TestDeleteItem(t *testing.T) {
	base := receipt(2, 1,
		item("1", "Pizza", 10, 1, "Alice"),
		item("2", "Beer", 5, 1, "Bob"),
	)

	got, err := DeleteItem(base, "1")
	if err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].ID != "2" {
		t.Fatalf("items = %+v, want only item 2", got.Items)
	}
	if got.Items[0].AssignedTo[0] != "Bob" {
		t.Errorf("other item's assignment changed: %+v", got.Items[0])
	}
	if got.Subtotal != 5 || got.Total != 8 {
		t.Errorf("totals = %v/%v, want 5/8", got.Subtotal, got.Total)
	}
	if len(base.Items) != 2 {
		t.Error("input receipt was mutated")
	}

	if _, err := DeleteItem(base, "nope"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}
