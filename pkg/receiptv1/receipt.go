// Package receiptv1 holds the wire messages of the receiptsplit.v1 API.
//
// Messages are plain Go structs carried by Connect with a JSON codec; there is
// no protobuf schema behind them.
package receiptv1

type Item struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Price      float64  `json:"price"`
	Quantity   float64  `json:"quantity"`
	AssignedTo []string `json:"assigned_to"`
	ScanID     string   `json:"scan_id,omitempty"`
}

type Receipt struct {
	Items    []Item  `json:"items"`
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Tip      float64 `json:"tip"`
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
	ImageRef string  `json:"image_ref,omitempty"`
}

type PersonItem struct {
	Name     string  `json:"name"`
	Cost     float64 `json:"cost"`
	Quantity float64 `json:"quantity"`
}

type PersonSummary struct {
	Name     string       `json:"name"`
	Items    []PersonItem `json:"items"`
	Subtotal float64      `json:"subtotal"`
	TaxShare float64      `json:"tax_share"`
	TipShare float64      `json:"tip_share"`
	Total    float64      `json:"total"`
}

type Debt struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// ChatMessage is one entry of a session transcript. Role is "user", "model"
// or "system"; Timestamp is in Unix milliseconds.
type ChatMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}
