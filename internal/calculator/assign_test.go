package calculator

import (
	"reflect"
	"testing"

	"github.com/mmynk/receiptsplit/internal/models"
)

func TestApplyUpdates(t *testing.T) {
	tests := []struct {
		name    string
		items   []models.ReceiptItem
		updates []models.AssignmentUpdate
		want    map[string][]string
	}{
		{
			name:    "partial update leaves other items alone",
			items:   []models.ReceiptItem{item("1", "Pizza", 10, 1), item("2", "Beer", 5, 1, "Ann")},
			updates: []models.AssignmentUpdate{{ID: "1", AssignedTo: []string{"Bo"}}},
			want:    map[string][]string{"1": {"Bo"}, "2": {"Ann"}},
		},
		{
			name:    "unknown ids are ignored",
			items:   []models.ReceiptItem{item("1", "Pizza", 10, 1, "Ann")},
			updates: []models.AssignmentUpdate{{ID: "ghost", AssignedTo: []string{"Bo"}}},
			want:    map[string][]string{"1": {"Ann"}},
		},
		{
			name:    "empty list unassigns",
			items:   []models.ReceiptItem{item("1", "Pizza", 10, 1, "Ann")},
			updates: []models.AssignmentUpdate{{ID: "1", AssignedTo: nil}},
			want:    map[string][]string{"1": {}},
		},
		{
			name:    "names are trimmed and deduplicated",
			items:   []models.ReceiptItem{item("1", "Pizza", 10, 1)},
			updates: []models.AssignmentUpdate{{ID: "1", AssignedTo: []string{" Ann", "Bo", "Ann", ""}}},
			want:    map[string][]string{"1": {"Ann", "Bo"}},
		},
		{
			name:  "last update for an id wins",
			items: []models.ReceiptItem{item("1", "Pizza", 10, 1)},
			updates: []models.AssignmentUpdate{
				{ID: "1", AssignedTo: []string{"Ann"}},
				{ID: "1", AssignedTo: []string{"Cy"}},
			},
			want: map[string][]string{"1": {"Cy"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := receipt(1, 1, tt.items...)
			got := ApplyUpdates(data, tt.updates)

			for _, it := range got.Items {
				if !reflect.DeepEqual(it.AssignedTo, tt.want[it.ID]) {
					t.Errorf("item %s assigned to %v, want %v", it.ID, it.AssignedTo, tt.want[it.ID])
				}
			}
			if got.Subtotal != data.Subtotal || got.Total != data.Total {
				t.Errorf("totals changed: %v/%v", got.Subtotal, got.Total)
			}
		})
	}
}

func TestApplyUpdates_DoesNotMutateInput(t *testing.T) {
	data := receipt(0, 0, item("1", "Pizza", 10, 1, "Ann"))

	ApplyUpdates(data, []models.AssignmentUpdate{{ID: "1", AssignedTo: []string{"Bo"}}})

	if data.Items[0].AssignedTo[0] != "Ann" {
		t.Errorf("input mutated: %+v", data.Items[0])
	}
}

func TestCommandItems(t *testing.T) {
	data := receipt(0, 0, item("1", "Pizza", 10, 1, "Ann"), item("2", "Beer", 4, 1))

	items := CommandItems(data)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "1" || items[0].Name != "Pizza" || items[0].Price != 10 {
		t.Errorf("item 0 = %+v", items[0])
	}
	if !reflect.DeepEqual(items[0].CurrentAssignments, []string{"Ann"}) {
		t.Errorf("assignments = %v", items[0].CurrentAssignments)
	}
	if items[1].CurrentAssignments == nil {
		t.Error("expected empty, non-nil assignments for unassigned item")
	}
}
