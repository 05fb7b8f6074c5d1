package models

// RawReceipt is a receipt as returned by the OCR service, before normalization.
// Missing numbers are zero, a missing currency is empty.
type RawReceipt struct {
	Items    []RawItem
	Subtotal float64
	Tax      float64
	Tip      float64
	Total    float64
	Currency string
}

// RawItem is a line item as returned by the OCR service.
type RawItem struct {
	Name     string
	Price    float64 // Line total, already multiplied by quantity
	Quantity float64
}

// CommandItem is the abbreviated item sent to the command interpreter.
type CommandItem struct {
	ID                 string
	Name               string
	Price              float64
	CurrentAssignments []string
}

// AssignmentUpdate replaces the assignees of one item.
type AssignmentUpdate struct {
	ID         string
	AssignedTo []string
}

// CommandResult is the interpreted outcome of a free-text assignment command.
// Updates may mention only a subset of the receipt's items.
type CommandResult struct {
	Updates []AssignmentUpdate
	People  []string
	Message string
}
