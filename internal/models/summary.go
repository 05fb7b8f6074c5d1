package models

// UnassignedName is the reserved summary name collecting items nobody claimed.
const UnassignedName = "Unassigned"

// PersonItem represents an item's share for one person, aggregated by item name.
type PersonItem struct {
	Name     string
	Cost     float64 // This person's share of the item price
	Quantity float64 // This person's share of the item quantity
}

// PersonSummary represents one person's calculated share of a receipt.
// This is the output of the allocation algorithm and is never stored.
type PersonSummary struct {
	// Name is the person, or UnassignedName for unclaimed charges.
	Name string

	// Items are the item shares of this person.
	Items []PersonItem

	// Subtotal is the sum of this person's item shares.
	Subtotal float64

	// TaxShare is this person's proportional share of the tax.
	// Calculated as: tax × (subtotal / receipt_subtotal)
	TaxShare float64

	// TipShare is this person's proportional share of the tip.
	TipShare float64

	// Total is Subtotal + TaxShare + TipShare.
	Total float64
}

// IsUnassigned reports whether the summary is the synthetic unassigned bucket.
func (p PersonSummary) IsUnassigned() bool {
	return p.Name == UnassignedName
}

// Debt represents an amount one person owes to the person who paid.
type Debt struct {
	From   string // Person who owes
	To     string // Person who paid the bill
	Amount float64
}
