package receiptv1

// ScanStatus tells how a scanned receipt was handled.
type ScanStatus string

const (
	ScanApplied      ScanStatus = "applied"
	ScanMergePending ScanStatus = "merge_pending"
	ScanFailed       ScanStatus = "failed"
)

type CreateSessionRequest struct {
	// Currency overrides the server default for receipts without one.
	Currency string `json:"currency,omitempty"`
}

type CreateSessionResponse struct {
	SessionID string        `json:"session_id"`
	Token     string        `json:"token"`
	Receipt   *Receipt      `json:"receipt"`
	Messages  []ChatMessage `json:"messages"`
}

type GetSessionRequest struct{}

type GetSessionResponse struct {
	Receipt      *Receipt      `json:"receipt"`
	PendingMerge *Receipt      `json:"pending_merge,omitempty"`
	Messages     []ChatMessage `json:"messages"`
	// Token is a fresh token for the session. Clients replace the one they
	// hold so an active session never outlives its token.
	Token string `json:"token"`
}

type ScanReceiptRequest struct {
	// ImageBase64 is the raw base64 image, optionally as a data URL.
	ImageBase64 string `json:"image_base64"`
}

type ScanReceiptResponse struct {
	Status       ScanStatus   `json:"status"`
	Message      *ChatMessage `json:"message,omitempty"`
	Receipt      *Receipt     `json:"receipt"`
	PendingMerge *Receipt     `json:"pending_merge,omitempty"`
}

type ResolveMergeRequest struct {
	// Choice is "merge", "replace" or "cancel".
	Choice string `json:"choice"`
}

type ResolveMergeResponse struct {
	Receipt *Receipt     `json:"receipt"`
	Message *ChatMessage `json:"message,omitempty"`
}

type SendCommandRequest struct {
	Text string `json:"text"`
}

type SendCommandResponse struct {
	Applied bool         `json:"applied"`
	Message *ChatMessage `json:"message,omitempty"`
	People  []string     `json:"people"`
	Receipt *Receipt     `json:"receipt"`
}

type AddItemRequest struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
}

type EditItemRequest struct {
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
}

type DeleteItemRequest struct {
	ItemID string `json:"item_id"`
}

// ItemResponse answers AddItem, EditItem and DeleteItem. When Applied is false
// the receipt is unchanged and Reason says why.
type ItemResponse struct {
	Applied bool     `json:"applied"`
	Reason  string   `json:"reason,omitempty"`
	Item    *Item    `json:"item,omitempty"`
	Receipt *Receipt `json:"receipt"`
}

type SetTipRequest struct {
	// Mode is "receipt", "percent" or "fixed".
	Mode  string  `json:"mode"`
	Value float64 `json:"value"`
}

type SetTipResponse struct {
	Receipt *Receipt `json:"receipt"`
}

type GetSummaryRequest struct {
	// Payer, when set, adds the debts owed to them.
	Payer string `json:"payer,omitempty"`
}

type CalculateSummaryRequest struct {
	Receipt *Receipt `json:"receipt"`
	Payer   string   `json:"payer,omitempty"`
}

type SummaryResponse struct {
	People      []PersonSummary `json:"people"`
	Debts       []Debt          `json:"debts"`
	AllAssigned bool            `json:"all_assigned"`
}
