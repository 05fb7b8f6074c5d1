package calculator

import (
	"errors"
	"fmt"

	"github.com/mmynk/receiptsplit/internal/models"
)

var ErrInvalidTip = errors.New("invalid tip")

// TipMode selects how the tip is derived.
type TipMode string

const (
	// TipFromReceipt keeps the stored tip (e.g., as scanned).
	TipFromReceipt TipMode = "receipt"
	// TipPercent derives the tip from the current subtotal.
	TipPercent TipMode = "percent"
	// TipFixed uses a literal amount.
	TipFixed TipMode = "fixed"
)

// TipPolicy is one tip selection.
type TipPolicy struct {
	Mode  TipMode
	Value float64 // Percentage for TipPercent, amount for TipFixed
}

// ApplyTip computes the tip for the policy against the receipt as it is now and
// recomputes the total. TipFromReceipt leaves the receipt untouched.
func ApplyTip(data models.ReceiptData, policy TipPolicy) (models.ReceiptData, error) {
	if policy.Mode == "" || policy.Mode == TipFromReceipt {
		return data, nil
	}
	if !isFinite(policy.Value) || policy.Value < 0 {
		return data, fmt.Errorf("%w: value %v", ErrInvalidTip, policy.Value)
	}

	var tip float64
	switch policy.Mode {
	case TipFixed:
		tip = policy.Value
	case TipPercent:
		tip = data.Subtotal * (policy.Value / 100)
	default:
		return data, fmt.Errorf("%w: unknown mode %q", ErrInvalidTip, policy.Mode)
	}

	out := data.Clone()
	out.Tip = tip
	out.Total = out.Subtotal + out.Tax + out.Tip
	return out, nil
}
