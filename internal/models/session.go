package models

import "slices"

// Message roles in a session conversation.
const (
	RoleUser   = "user"
	RoleModel  = "model"
	RoleSystem = "system"
)

// ChatMessage is one entry of the session conversation.
type ChatMessage struct {
	ID        string
	Role      string
	Text      string
	Timestamp int64 // Unix milliseconds
}

// Session is the working state of one user splitting one receipt.
type Session struct {
	// ID is the unique identifier for the session (UUID format).
	ID string

	// Receipt is the canonical receipt.
	Receipt ReceiptData

	// Pending holds a freshly scanned receipt awaiting a merge/replace/cancel decision.
	// Only one decision can be pending at a time.
	Pending *ReceiptData

	// Currency is the fallback symbol for scanned receipts that state none.
	Currency string

	// Messages is the conversation shown to the user.
	Messages []ChatMessage

	// CreatedAt is the Unix timestamp when the session was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	out := *s
	out.Receipt = s.Receipt.Clone()
	if s.Pending != nil {
		pending := s.Pending.Clone()
		out.Pending = &pending
	}
	out.Messages = slices.Clone(s.Messages)
	return &out
}
