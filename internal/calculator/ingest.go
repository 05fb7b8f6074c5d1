package calculator

import (
	"math"
	"strings"

	"github.com/mmynk/receiptsplit/internal/models"
)

const (
	// taxIncludedTolerance is how close the item sum must be to the stated total,
	// as a fraction of the total, for prices to count as tax-inclusive.
	taxIncludedTolerance = 0.05

	unknownItemName = "Unknown Item"
)

// NormalizeOptions tune Normalize.
type NormalizeOptions struct {
	// ScanID tags every item of this ingestion.
	ScanID string
	// NewID issues item IDs. Defaults to ScanItemID.
	NewID func() string
	// Currency replaces a blank currency. Defaults to models.DefaultCurrency.
	Currency string
	// ImageRef identifies the scanned image.
	ImageRef string
}

// Normalize turns an OCR result into a receipt ready to be shown or merged:
// every item gets a fresh ID, no assignees and the scan tag, and defaults are
// filled in once here.
//
// When the item prices already add up to the stated total (within 5%), tax is
// assumed to be included in the prices: tax becomes 0 and the subtotal the item
// sum, so it is not charged twice. This is a best-effort guess.
func Normalize(raw models.RawReceipt, opts NormalizeOptions) models.ReceiptData {
	newID := opts.NewID
	if newID == nil {
		newID = ScanItemID
	}
	currency := strings.TrimSpace(raw.Currency)
	if currency == "" {
		currency = opts.Currency
	}
	if currency == "" {
		currency = models.DefaultCurrency
	}

	data := models.ReceiptData{
		Items:    make([]models.ReceiptItem, 0, len(raw.Items)),
		Tax:      finiteOrZero(raw.Tax),
		Tip:      finiteOrZero(raw.Tip),
		Total:    finiteOrZero(raw.Total),
		Currency: currency,
		ImageRef: opts.ImageRef,
	}

	var sumItems float64
	for _, rawItem := range raw.Items {
		name := strings.TrimSpace(rawItem.Name)
		if name == "" {
			name = unknownItemName
		}
		quantity := finiteOrZero(rawItem.Quantity)
		if quantity == 0 {
			quantity = 1
		}
		price := finiteOrZero(rawItem.Price)
		sumItems += price

		data.Items = append(data.Items, models.ReceiptItem{
			ID:         uniqueID(data, newID),
			Name:       name,
			Price:      price,
			Quantity:   quantity,
			AssignedTo: []string{},
			ScanID:     opts.ScanID,
		})
	}

	data.Subtotal = finiteOrZero(raw.Subtotal)
	if data.Subtotal == 0 {
		data.Subtotal = sumItems
	}

	if TaxIncluded(sumItems, data.Total) {
		data.Tax = 0
		data.Subtotal = sumItems
	}
	return data
}

// TaxIncluded reports whether an item sum is close enough to the stated total
// for the prices to already include tax.
func TaxIncluded(sumItems, statedTotal float64) bool {
	return math.Abs(sumItems-statedTotal) < statedTotal*taxIncludedTolerance
}

func finiteOrZero(f float64) float64 {
	if !isFinite(f) {
		return 0
	}
	return f
}
