package models

import (
	"reflect"
	"testing"
)

func TestReceiptDataClone(t *testing.T) {
	tests := []struct {
		name string
		data ReceiptData
	}{
		{name: "zero value", data: ReceiptData{}},
		{name: "empty items", data: ReceiptData{Items: []ReceiptItem{}, Currency: "$"}},
		{
			name: "items with and without assignees",
			data: ReceiptData{
				Items: []ReceiptItem{
					{ID: "1", Name: "Pizza", Price: 12, Quantity: 1, AssignedTo: []string{}},
					{ID: "2", Name: "Cola", Price: 3, Quantity: 2, AssignedTo: []string{"Ann", "Bo"}},
					{ID: "3", Name: "Bread", Price: 2, Quantity: 1},
				},
				Subtotal: 17,
				Total:    17,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.data.Clone()
			if !reflect.DeepEqual(got, tt.data) {
				t.Errorf("Clone() = %+v, want %+v", got, tt.data)
			}
		})
	}
}

func TestReceiptDataClone_DoesNotShare(t *testing.T) {
	data := ReceiptData{Items: []ReceiptItem{{ID: "1", AssignedTo: []string{"Ann"}}}}

	out := data.Clone()
	out.Items[0].AssignedTo[0] = "Bo"
	out.Items[0].Name = "changed"

	if data.Items[0].AssignedTo[0] != "Ann" || data.Items[0].Name != "" {
		t.Errorf("original mutated: %+v", data.Items[0])
	}
}

func TestSessionClone(t *testing.T) {
	pending := ReceiptData{Items: []ReceiptItem{{ID: "p", AssignedTo: []string{}}}}
	session := &Session{
		ID:       "s1",
		Receipt:  ReceiptData{Items: []ReceiptItem{}},
		Pending:  &pending,
		Messages: []ChatMessage{},
	}

	got := session.Clone()
	if !reflect.DeepEqual(got, session) {
		t.Errorf("Clone() = %+v, want %+v", got, session)
	}
	if got.Pending == session.Pending {
		t.Error("expected pending receipt to be copied")
	}
}
