package models

import "slices"

// DefaultCurrency is the display symbol used when a receipt does not state one.
const DefaultCurrency = "$"

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	// ID is the stable identifier of the item, assigned at ingestion or manual creation.
	ID string

	// Name is the display label (e.g., "Pizza", "Coca Cola").
	Name string

	// Price is the total price of the line (unit price × quantity).
	Price float64

	// Quantity is the line count. It may be fractional once split between people.
	Quantity float64

	// AssignedTo is the ordered set of people sharing this item.
	// Empty means nobody has claimed it yet.
	AssignedTo []string

	// ScanID tags the OCR scan that produced the item. Empty for manually added items.
	ScanID string
}

// IsAssigned reports whether at least one person shares the item.
func (i ReceiptItem) IsAssigned() bool {
	return len(i.AssignedTo) > 0
}

// ReceiptData is the canonical receipt of a session.
type ReceiptData struct {
	// Items are the line items in display order.
	Items []ReceiptItem

	// Subtotal is the sum of all item prices.
	Subtotal float64

	// Tax is the tax amount added on top of the subtotal.
	// Zero when item prices already include tax.
	Tax float64

	// Tip is the tip amount.
	Tip float64

	// Total is Subtotal + Tax + Tip.
	Total float64

	// Currency is the display symbol (e.g., "$", "€").
	Currency string

	// ImageRef is the fingerprint of the scanned image the receipt came from.
	ImageRef string
}

// Clone returns a deep copy of the receipt.
func (d ReceiptData) Clone() ReceiptData {
	out := d
	if d.Items != nil {
		out.Items = make([]ReceiptItem, len(d.Items))
		for i, item := range d.Items {
			out.Items[i] = item.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the item.
func (i ReceiptItem) Clone() ReceiptItem {
	out := i
	out.AssignedTo = slices.Clone(i.AssignedTo)
	return out
}

// FindItem returns the index of the item with the given ID, or -1.
func (d ReceiptData) FindItem(id string) int {
	for i, item := range d.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// HasItems reports whether the receipt has at least one line item.
func (d ReceiptData) HasItems() bool {
	return len(d.Items) > 0
}
