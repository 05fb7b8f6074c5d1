package calculator

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/receiptsplit/internal/models"
)

var (
	ErrInvalidItem  = errors.New("item needs a name and a numeric price and quantity")
	ErrItemNotFound = errors.New("item not found")
	ErrNonFinite    = errors.New("amount is not a finite number")
)

var validate = validator.New()

// ItemInput is an item as typed by a user. Amounts are kept as text until parsed.
type ItemInput struct {
	Name     string `validate:"required"`
	Price    string `validate:"required"`
	Quantity string `validate:"required"`
}

// parsedItem is a validated ItemInput.
type parsedItem struct {
	name     string
	price    float64
	quantity float64
}

// ManualItemID returns a fresh identifier for a manually added item.
func ManualItemID() string {
	return "manual-" + uuid.NewString()
}

// ScanItemID returns a fresh identifier for an ingested item.
func ScanItemID() string {
	return "item-" + uuid.NewString()
}

// NewScanID returns a fresh identifier for one ingestion event.
func NewScanID() string {
	return "scan-" + uuid.NewString()
}

// ParseAmount parses a user-typed amount. A single comma is accepted as the
// decimal separator ("5,99"). Only finite numbers are accepted.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	f, _ := d.Float64()
	if !isFinite(f) {
		return 0, ErrNonFinite
	}
	return f, nil
}

func parseItemInput(in ItemInput) (parsedItem, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return parsedItem{}, fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}
	price, err := ParseAmount(in.Price)
	if err != nil {
		return parsedItem{}, fmt.Errorf("%w: price: %v", ErrInvalidItem, err)
	}
	quantity, err := ParseAmount(in.Quantity)
	if err != nil {
		return parsedItem{}, fmt.Errorf("%w: quantity: %v", ErrInvalidItem, err)
	}
	return parsedItem{name: in.Name, price: price, quantity: quantity}, nil
}

// RecomputeTotals sets Subtotal to the sum of the item prices and Total to
// Subtotal + Tax + Tip. Tax and Tip are left untouched.
func RecomputeTotals(data models.ReceiptData) (models.ReceiptData, error) {
	out := data.Clone()

	var subtotal float64
	for _, item := range out.Items {
		if !isFinite(item.Price) {
			return data, fmt.Errorf("%w: price of item %s", ErrNonFinite, item.ID)
		}
		subtotal += item.Price
	}
	if !isFinite(out.Tax) || !isFinite(out.Tip) {
		return data, fmt.Errorf("%w: tax or tip", ErrNonFinite)
	}

	out.Subtotal = subtotal
	out.Total = subtotal + out.Tax + out.Tip
	return out, nil
}

// AddItem appends a manually entered item and recomputes the totals.
// On invalid input the receipt is returned unchanged with ErrInvalidItem.
func AddItem(data models.ReceiptData, in ItemInput, newID func() string) (models.ReceiptData, models.ReceiptItem, error) {
	parsed, err := parseItemInput(in)
	if err != nil {
		return data, models.ReceiptItem{}, err
	}

	item := models.ReceiptItem{
		ID:         uniqueID(data, newID),
		Name:       parsed.name,
		Price:      parsed.price,
		Quantity:   parsed.quantity,
		AssignedTo: []string{},
	}

	out := data.Clone()
	out.Items = append(out.Items, item)
	out, err = RecomputeTotals(out)
	if err != nil {
		return data, models.ReceiptItem{}, err
	}
	return out, item, nil
}

// EditItem changes the name, price and quantity of an item, keeping its ID,
// assignees and scan tag, and recomputes the totals.
func EditItem(data models.ReceiptData, id string, in ItemInput) (models.ReceiptData, models.ReceiptItem, error) {
	idx := data.FindItem(id)
	if idx < 0 {
		return data, models.ReceiptItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	parsed, err := parseItemInput(in)
	if err != nil {
		return data, models.ReceiptItem{}, err
	}

	out := data.Clone()
	item := &out.Items[idx]
	item.Name = parsed.name
	item.Price = parsed.price
	item.Quantity = parsed.quantity

	out, err = RecomputeTotals(out)
	if err != nil {
		return data, models.ReceiptItem{}, err
	}
	return out, out.Items[idx], nil
}

// DeleteItem removes one item and recomputes the totals. Assignments of the
// other items are not touched.
func DeleteItem(data models.ReceiptData, id string) (models.ReceiptData, error) {
	idx := data.FindItem(id)
	if idx < 0 {
		return data, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}

	out := data.Clone()
	out.Items = append(out.Items[:idx], out.Items[idx+1:]...)
	return RecomputeTotals(out)
}

// uniqueID draws IDs from newID until one is not used by the receipt.
func uniqueID(data models.ReceiptData, newID func() string) string {
	for {
		id := newID()
		if data.FindItem(id) < 0 {
			return id
		}
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
