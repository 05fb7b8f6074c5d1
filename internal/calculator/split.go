// Package calculator holds the pure bill arithmetic: receipt totals, per-person
// allocation, tips, assignment updates, ingestion and merging. Nothing here
// performs I/O or mutates its inputs.
package calculator

import (
	"sort"

	"github.com/mmynk/receiptsplit/internal/models"
)

const (
	// visibleEpsilon is the smallest unassigned subtotal worth showing.
	visibleEpsilon = 0.01

	// subtotalEpsilon guards the tax/tip ratio against a zero subtotal.
	subtotalEpsilon = 1e-9
)

// Allocate computes how much each person owes, including proportional tax and tip.
// Based on the algorithm: person_total = person_subtotal × (1 + (tax + tip) / receipt_subtotal)
//
// Items without assignees, and shares assigned to the reserved name Unassigned,
// are collected in the Unassigned bucket, which comes first
// when it holds more than a cent and is dropped otherwise. Everyone else is sorted by
// total, largest first, ties kept in order of first appearance.
func Allocate(data models.ReceiptData) []models.PersonSummary {
	unassigned := &models.PersonSummary{Name: models.UnassignedName}
	people := make(map[string]*models.PersonSummary)
	var order []string

	for _, item := range data.Items {
		if !item.IsAssigned() {
			addShare(unassigned, item.Name, item.Price, item.Quantity)
			continue
		}

		// Split item among assigned people
		n := float64(len(item.AssignedTo))
		perPersonPrice := item.Price / n
		perPersonQty := item.Quantity / n
		for _, name := range item.AssignedTo {
			if name == models.UnassignedName {
				addShare(unassigned, item.Name, perPersonPrice, perPersonQty)
				continue
			}
			person, exists := people[name]
			if !exists {
				person = &models.PersonSummary{Name: name}
				people[name] = person
				order = append(order, name)
			}
			addShare(person, item.Name, perPersonPrice, perPersonQty)
		}
	}

	// Apply proportional tax and tip
	applyShares(unassigned, data)
	result := make([]models.PersonSummary, 0, len(order)+1)
	for _, name := range order {
		person := people[name]
		applyShares(person, data)
		result = append(result, *person)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Total > result[j].Total
	})

	if unassigned.Subtotal > visibleEpsilon {
		result = append([]models.PersonSummary{*unassigned}, result...)
	}
	return result
}

// AllAssigned reports whether the summaries carry no unassigned charges.
func AllAssigned(summaries []models.PersonSummary) bool {
	for _, s := range summaries {
		if s.IsUnassigned() {
			return false
		}
	}
	return true
}

// addShare adds a cost and quantity to a person, merging with a same-named item.
func addShare(p *models.PersonSummary, itemName string, cost, quantity float64) {
	p.Subtotal += cost
	for i := range p.Items {
		if p.Items[i].Name == itemName {
			p.Items[i].Cost += cost
			p.Items[i].Quantity += quantity
			return
		}
	}
	p.Items = append(p.Items, models.PersonItem{Name: itemName, Cost: cost, Quantity: quantity})
}

func applyShares(p *models.PersonSummary, data models.ReceiptData) {
	var ratio float64
	if data.Subtotal > subtotalEpsilon {
		ratio = p.Subtotal / data.Subtotal
	}
	p.TaxShare = data.Tax * ratio
	p.TipShare = data.Tip * ratio
	p.Total = p.Subtotal + p.TaxShare + p.TipShare
}
