package calculator

import (
	"errors"
	"fmt"

	"github.com/mmynk/receiptsplit/internal/models"
)

var ErrUnknownMergeChoice = errors.New("unknown merge choice")

// MergeChoice is the user's answer when a scan arrives on a non-empty receipt.
type MergeChoice string

const (
	MergeAppend  MergeChoice = "merge"
	MergeReplace MergeChoice = "replace"
	MergeCancel  MergeChoice = "cancel"
)

// Merge appends the incoming items to the existing receipt and sums subtotal,
// tax, tip and total field by field. Scan tags are preserved. The existing
// currency and image reference win; no conversion is attempted.
func Merge(existing, incoming models.ReceiptData) models.ReceiptData {
	out := existing.Clone()

	for _, item := range incoming.Items {
		item = item.Clone()
		if out.FindItem(item.ID) >= 0 {
			item.ID = uniqueID(out, ScanItemID)
		}
		out.Items = append(out.Items, item)
	}

	out.Subtotal = existing.Subtotal + incoming.Subtotal
	out.Tax = existing.Tax + incoming.Tax
	out.Tip = existing.Tip + incoming.Tip
	out.Total = existing.Total + incoming.Total
	return out
}

// Replace discards the existing receipt, image reference included.
func Replace(_, incoming models.ReceiptData) models.ReceiptData {
	return incoming.Clone()
}

// Resolve applies a merge decision. It reports whether the receipt changed;
// MergeCancel keeps the existing receipt and drops the pending one.
func Resolve(choice MergeChoice, existing, pending models.ReceiptData) (models.ReceiptData, bool, error) {
	switch choice {
	case MergeAppend:
		return Merge(existing, pending), true, nil
	case MergeReplace:
		return Replace(existing, pending), true, nil
	case MergeCancel:
		return existing, false, nil
	default:
		return existing, false, fmt.Errorf("%w: %q", ErrUnknownMergeChoice, choice)
	}
}
