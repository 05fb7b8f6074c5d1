package service

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Transcript texts.
const (
	msgWelcome = "Hi! Upload a photo of your receipt or add items by hand, then tell me who had what."

	msgAnalyzing     = "Analyzing your receipt..."
	msgScanFailed    = "I couldn't read that receipt. Please try another photo."
	msgCommandFailed = "I couldn't process that. Please try again."
	msgRateLimited   = "The assistant is busy right now (rate limit reached). Please wait a moment and try again."
	msgCommandDone   = "Done, assignments updated."
	msgMergeCanceled = "Okay, I discarded the new scan."
)

func msgReceiptReady(items int, total string) string {
	return fmt.Sprintf("Receipt ready: %d items, total %s. Tell me who had what, e.g. \"Ann and Bo shared the pizza\".", items, total)
}

func msgMergePrompt(items int, total string) string {
	return fmt.Sprintf("You already have items on this receipt. The new scan has %d items (total %s). Merge them, replace the receipt, or cancel?", items, total)
}

func msgMerged(items int, total string) string {
	return fmt.Sprintf("Merged %d new items. The receipt total is now %s.", items, total)
}

func msgReplaced(items int, total string) string {
	return fmt.Sprintf("Receipt replaced: %d items, total %s.", items, total)
}

// money renders an amount with two decimals, rounding half away from zero.
func money(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}
