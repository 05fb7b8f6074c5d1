package calculator

import (
	"strings"

	"github.com/mmynk/receiptsplit/internal/models"
)

// ApplyUpdates replaces the assignees of every item referenced by an update.
// Items not mentioned keep their assignees, so an interpreter answer covering
// only some items leaves the rest alone. Unknown IDs are ignored. When an ID is
// updated twice the last update wins.
//
// Names, prices, quantities and totals are never touched.
func ApplyUpdates(data models.ReceiptData, updates []models.AssignmentUpdate) models.ReceiptData {
	byID := make(map[string][]string, len(updates))
	for _, u := range updates {
		byID[u.ID] = u.AssignedTo
	}

	out := data.Clone()
	for i := range out.Items {
		if names, ok := byID[out.Items[i].ID]; ok {
			out.Items[i].AssignedTo = normalizeNames(names)
		}
	}
	return out
}

// normalizeNames trims names, drops blanks and collapses duplicates keeping the
// first occurrence.
func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// CommandItems builds the abbreviated item list sent to the command interpreter.
func CommandItems(data models.ReceiptData) []models.CommandItem {
	items := make([]models.CommandItem, len(data.Items))
	for i, item := range data.Items {
		items[i] = models.CommandItem{
			ID:                 item.ID,
			Name:               item.Name,
			Price:              item.Price,
			CurrentAssignments: append([]string{}, item.AssignedTo...),
		}
	}
	return items
}
