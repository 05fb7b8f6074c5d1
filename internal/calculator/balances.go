package calculator

import "github.com/mmynk/receiptsplit/internal/models"

// Settle lists what everyone owes the person who paid the whole bill.
//
// Algorithm:
// - The payer covered the full receipt, so every other named person owes their total
// - The Unassigned bucket owes nobody; it is reported by Allocate instead
// - Amounts within a cent are dropped as floating point noise
//
// Debts keep the order of the summaries. An empty payer yields no debts.
func Settle(summaries []models.PersonSummary, payer string) []models.Debt {
	if payer == "" {
		return nil
	}

	var debts []models.Debt
	for _, s := range summaries {
		if s.IsUnassigned() || s.Name == payer {
			continue
		}
		if s.Total > visibleEpsilon {
			debts = append(debts, models.Debt{
				From:   s.Name,
				To:     payer,
				Amount: s.Total,
			})
		}
	}
	return debts
}
