package calculator

import (
	"errors"
	"math"
	"testing"

	"github.com/mmynk/receiptsplit/internal/models"
)

func TestMergeAndReplace(t *testing.T) {
	a := models.ReceiptData{
		Items:    []models.ReceiptItem{{ID: "a1", Name: "Pizza", Price: 10, Quantity: 1, AssignedTo: []string{"Ann"}, ScanID: "scan-a"}},
		Subtotal: 10, Tax: 1, Tip: 2, Total: 13,
		Currency: "€",
		ImageRef: "img-a",
	}
	b := models.ReceiptData{
		Items:    []models.ReceiptItem{{ID: "b1", Name: "Beer", Price: 5, Quantity: 1, AssignedTo: []string{}, ScanID: "scan-b"}},
		Subtotal: 5, Tax: 0.5, Tip: 0, Total: 5.5,
		Currency: "$",
		ImageRef: "img-b",
	}

	t.Run("merge sums totals and keeps existing currency", func(t *testing.T) {
		got := Merge(a, b)

		if len(got.Items) != 2 || got.Items[0].ID != "a1" || got.Items[1].ID != "b1" {
			t.Fatalf("items = %+v", got.Items)
		}
		if got.Items[1].ScanID != "scan-b" {
			t.Errorf("scan tag lost: %+v", got.Items[1])
		}
		checks := []struct {
			field     string
			got, want float64
		}{
			{"subtotal", got.Subtotal, 15},
			{"tax", got.Tax, 1.5},
			{"tip", got.Tip, 2},
			{"total", got.Total, 18.5},
		}
		for _, c := range checks {
			if math.Abs(c.got-c.want) > 1e-9 {
				t.Errorf("%s = %v, want %v", c.field, c.got, c.want)
			}
		}
		if got.Currency != "€" || got.ImageRef != "img-a" {
			t.Errorf("currency/image = %s/%s, want €/img-a", got.Currency, got.ImageRef)
		}
		if len(a.Items) != 1 {
			t.Error("existing receipt mutated")
		}
	})

	t.Run("replace yields the incoming receipt", func(t *testing.T) {
		got := Replace(a, b)
		if got.Subtotal != 5 || got.Tax != 0.5 || got.Tip != 0 || got.Total != 5.5 {
			t.Errorf("totals = %+v, want B's", got)
		}
		if got.Currency != "$" || got.ImageRef != "img-b" || len(got.Items) != 1 || got.Items[0].ID != "b1" {
			t.Errorf("replace kept parts of A: %+v", got)
		}
	})

	t.Run("merge reissues colliding ids", func(t *testing.T) {
		dup := b.Clone()
		dup.Items[0].ID = "a1"

		got := Merge(a, dup)
		if got.Items[1].ID == "a1" {
			t.Errorf("duplicate id kept: %+v", got.Items)
		}
	})
}

func TestResolve(t *testing.T) {
	existing := receipt(0, 0, item("1", "Pizza", 10, 1))
	pending := receipt(0, 0, item("2", "Beer", 5, 1))

	tests := []struct {
		choice      MergeChoice
		wantItems   int
		wantChanged bool
		wantErr     error
	}{
		{choice: MergeAppend, wantItems: 2, wantChanged: true},
		{choice: MergeReplace, wantItems: 1, wantChanged: true},
		{choice: MergeCancel, wantItems: 1, wantChanged: false},
		{choice: "shrug", wantItems: 1, wantErr: ErrUnknownMergeChoice},
	}

	for _, tt := range tests {
		t.Run(string(tt.choice), func(t *testing.T) {
			got, changed, err := Resolve(tt.choice, existing, pending)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
			}
			if changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}
			if len(got.Items) != tt.wantItems {
				t.Errorf("items = %d, want %d", len(got.Items), tt.wantItems)
			}
		})
	}
}
