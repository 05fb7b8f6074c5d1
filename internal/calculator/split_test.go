package calculator

import (
	"math"
	"testing"

	"github.com/mmynk/receiptsplit/internal/models"
)

func item(id, name string, price, qty float64, assigned ...string) models.ReceiptItem {
	if assigned == nil {
		assigned = []string{}
	}
	return models.ReceiptItem{ID: id, Name: name, Price: price, Quantity: qty, AssignedTo: assigned}
}

func receipt(tax, tip float64, items ...models.ReceiptItem) models.ReceiptData {
	data := models.ReceiptData{Items: items, Tax: tax, Tip: tip, Currency: "$"}
	for _, it := range items {
		data.Subtotal += it.Price
	}
	data.Total = data.Subtotal + tax + tip
	return data
}

func findPerson(t *testing.T, people []models.PersonSummary, name string) models.PersonSummary {
	t.Helper()
	for _, p := range people {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("no summary for %s in %+v", name, people)
	return models.PersonSummary{}
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name         string
		data         models.ReceiptData
		validateFunc func(t *testing.T, people []models.PersonSummary)
	}{
		{
			name: "simple two-person split with tax and tip",
			data: receipt(3, 6,
				item("1", "Pizza", 20, 1, "Alice", "Bob"),
				item("2", "Salad", 10, 1, "Alice"),
			),
			validateFunc: func(t *testing.T, people []models.PersonSummary) {
				// Alice: subtotal = 10 + 10 = 20, tax = 3 * 20/30 = 2, tip = 6 * 20/30 = 4, total = 26
				// Bob: subtotal = 10, tax = 1, tip = 2, total = 13
				if len(people) != 2 {
					t.Fatalf("expected 2 people, got %d", len(people))
				}
				alice := people[0]
				if alice.Name != "Alice" {
					t.Errorf("expected Alice first, got %s", alice.Name)
				}
				if math.Abs(alice.Subtotal-20.0) > 0.01 {
					t.Errorf("Alice subtotal = %v, want 20.0", alice.Subtotal)
				}
				if math.Abs(alice.TaxShare-2.0) > 0.01 {
					t.Errorf("Alice tax = %v, want 2.0", alice.TaxShare)
				}
				if math.Abs(alice.TipShare-4.0) > 0.01 {
					t.Errorf("Alice tip = %v, want 4.0", alice.TipShare)
				}
				if math.Abs(alice.Total-26.0) > 0.01 {
					t.Errorf("Alice total = %v, want 26.0", alice.Total)
				}

				bob := people[1]
				if math.Abs(bob.Subtotal-10.0) > 0.01 {
					t.Errorf("Bob subtotal = %v, want 10.0", bob.Subtotal)
				}
				if math.Abs(bob.Total-13.0) > 0.01 {
					t.Errorf("Bob total = %v, want 13.0", bob.Total)
				}
			},
		},
		{
			name: "shared item splits price and quantity",
			data: receipt(0, 0, item("1", "Beer", 9, 3, "Alice", "Bob", "Charlie")),
			validateFunc: func(t *testing.T, people []models.PersonSummary) {
				for _, name := range []string{"Alice", "Bob", "Charlie"} {
					p := findPerson(t, people, name)
					if math.Abs(p.Subtotal-3.0) > 1e-9 {
						t.Errorf("%s subtotal = %v, want 3.0", name, p.Subtotal)
					}
					if len(p.Items) != 1 || math.Abs(p.Items[0].Quantity-1.0) > 1e-9 {
						t.Errorf("%s items = %+v, want one Beer with quantity 1", name, p.Items)
					}
				}
			},
		},
		{
			name: "same-named items are aggregated per person",
			data: receipt(0, 0,
				item("1", "Coke", 2, 1, "Alice"),
				item("2", "Coke", 3, 2, "Alice"),
			),
			validateFunc: func(t *testing.T, people []models.PersonSummary) {
				alice := findPerson(t, people, "Alice")
				if len(alice.Items) != 1 {
					t.Fatalf("Alice items = %+v, want 1 aggregated entry", alice.Items)
				}
				if alice.Items[0].Cost != 5 || alice.Items[0].Quantity != 3 {
					t.Errorf("Coke = %+v, want cost 5 quantity 3", alice.Items[0])
				}
			},
		},
		{
			name: "unassigned bucket is listed first",
			data: receipt(0, 0,
				item("1", "Steak", 30, 1, "Alice"),
				item("2", "Bread", 5, 1),
			),
			validateFunc: func(t *testing.T, people []models.PersonSummary) {
				if len(people) != 2 {
					t.Fatalf("expected 2 summaries, got %d", len(people))
				}
				if !people[0].IsUnassigned() {
					t.Errorf("expected Unassigned first, got %s", people[0].Name)
				}
				if people[0].Subtotal != 5 {
					t.Errorf("Unassigned subtotal = %v, want 5", people[0].Subtotal)
				}
				if AllAssigned(people) {
					t.Error("AllAssigned() = true with unassigned charges")
				}
			},
		},
		{
			name: "unassigned bucket within a cent is omitted",
			data: receipt(0, 0,
				item("1", "Steak", 30, 1, "Alice"),
				item("2", "Rounding", 0.005, 1),
			),
			validateFunc: func(t *testing.T, people []models.PersonSummary) {
				if len(people) != 1 || people[0].Name != "Alice" {
					t.Fatalf("expected only Alice, got %+v", people)
				}
				if !AllAssigned(people) {
					t.Error("AllAssigned() = false without visible unassigned charges")
				}
			},
		},
		{
			name: "zero subtotal yields zero shares",
			data: models.ReceiptData{
				Items: []models.ReceiptItem{item("1", "Water", 0, 1, "Alice")},
				Tax:   2,
				Tip:   1,
				Total: 3,
			},
			validateFunc: func(t *testing.T, people []models.PersonSummary) {
				alice := findPerson(t, people, "Alice")
				if alice.TaxShare != 0 || alice.TipShare != 0 || alice.Total != 0 {
					t.Errorf("Alice = %+v, want all-zero shares", alice)
				}
			},
		},
		{
			name: "equal totals keep first appearance order",
			data: receipt(0, 0,
				item("1", "Tea", 4, 1, "Zoe"),
				item("2", "Tea", 4, 1, "Adam"),
				item("3", "Cake", 8, 1, "Mia"),
			),
			validateFunc: func(t *testing.T, people []models.PersonSummary) {
				got := []string{people[0].Name, people[1].Name, people[2].Name}
				want := []string{"Mia", "Zoe", "Adam"}
				for i := range want {
					if got[i] != want[i] {
						t.Fatalf("order = %v, want %v", got, want)
					}
				}
			},
		},
		{
			name: "empty receipt",
			data: models.ReceiptData{},
			validateFunc: func(t *testing.T, people []models.PersonSummary) {
				if len(people) != 0 {
					t.Errorf("expected no summaries, got %+v", people)
				}
			},
		},
		{
			name: "assignee named Unassigned joins the unassigned bucket",
			data: receipt(0, 0,
				item("1", "Pizza", 10, 1, models.UnassignedName),
				item("2", "Bread", 5, 1),
				item("3", "Steak", 30, 1, "Ann"),
				item("4", "Wine", 8, 1, "Ann", models.UnassignedName),
			),
			validateFunc: func(t *testing.T, people []models.PersonSummary) {
				// Unassigned: 10 + 5 + 4 = 19, Ann: 30 + 4 = 34
				if len(people) != 2 {
					t.Fatalf("expected 2 summaries, got %+v", people)
				}
				if people[0].Name != models.UnassignedName {
					t.Errorf("expected Unassigned first, got %s", people[0].Name)
				}
				if math.Abs(people[0].Subtotal-19.0) > 0.01 {
					t.Errorf("Unassigned subtotal = %v, want 19.0", people[0].Subtotal)
				}
				if people[1].Name != "Ann" || math.Abs(people[1].Subtotal-34.0) > 0.01 {
					t.Errorf("expected Ann with 34.0, got %+v", people[1])
				}
				if AllAssigned(people) {
					t.Error("expected AllAssigned to be false")
				}
				debts := Settle(people, "Ann")
				if len(debts) != 0 {
					t.Errorf("expected no debts, got %+v", debts)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			people := Allocate(tt.data)
			tt.validateFunc(t, people)
		})
	}
}

func TestAllocate_Conservation(t *testing.T) {
	data := receipt(4.2, 7.5,
		item("1", "Pasta", 13.37, 1, "Ann", "Bo", "Cy"),
		item("2", "Wine", 41.9, 1, "Ann", "Bo"),
		item("3", "Dessert", 7.77, 3, "Cy"),
		item("4", "Bread", 3.33, 1),
		item("5", "Olives", 5.01, 2, "Bo", "Cy", "Ann", "Dee", "Eve", "Fay", "Gus"),
	)

	people := Allocate(data)

	var subtotal, total float64
	for _, p := range people {
		subtotal += p.Subtotal
		total += p.Total
		if math.Abs(p.Total-(p.Subtotal+p.TaxShare+p.TipShare)) > 1e-9 {
			t.Errorf("%s total %v != subtotal + shares", p.Name, p.Total)
		}
	}
	if math.Abs(subtotal-data.Subtotal) > 1e-6 {
		t.Errorf("sum of subtotals = %v, want %v", subtotal, data.Subtotal)
	}
	if math.Abs(total-data.Total) > 1e-6 {
		t.Errorf("sum of totals = %v, want %v", total, data.Total)
	}
}

func TestAllocate_DoesNotMutateInput(t *testing.T) {
	data := receipt(1, 0, item("1", "Pizza", 10, 2, "Alice", "Bob"))
	before := data.Clone()

	Allocate(data)

	if data.Items[0].Price != before.Items[0].Price || len(data.Items[0].AssignedTo) != 2 {
		t.Errorf("input changed: %+v", data)
	}
}

func TestSettle(t *testing.T) {
	people := []models.PersonSummary{
		{Name: models.UnassignedName, Total: 5},
		{Name: "Alice", Total: 22},
		{Name: "Bob", Total: 11},
		{Name: "Cy", Total: 0.004},
	}

	debts := Settle(people, "Alice")
	if len(debts) != 1 {
		t.Fatalf("expected 1 debt, got %+v", debts)
	}
	if debts[0].From != "Bob" || debts[0].To != "Alice" || debts[0].Amount != 11 {
		t.Errorf("debt = %+v, want Bob owes Alice 11", debts[0])
	}

	if got := Settle(people, ""); got != nil {
		t.Errorf("Settle without payer = %+v, want nil", got)
	}
}
