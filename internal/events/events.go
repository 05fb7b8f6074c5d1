// Package events publishes domain events about session changes.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// Event names. They double as AMQP routing keys.
const (
	ReceiptIngested    = "receipt.ingested"
	ReceiptMerged      = "receipt.merged"
	ReceiptReplaced    = "receipt.replaced"
	AssignmentsUpdated = "assignments.updated"
	ItemChanged        = "item.changed"
	TipChanged         = "tip.changed"
)

// Event is a lightweight notification; consumers read session state if they
// need more than the attributes carried here.
type Event struct {
	Name       string         `json:"name"`
	SessionID  string         `json:"session_id"`
	Timestamp  time.Time      `json:"timestamp"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func New(name, sessionID string, attrs map[string]any) Event {
	return Event{
		Name:       name,
		SessionID:  sessionID,
		Timestamp:  time.Now().UTC(),
		Attributes: attrs,
	}
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func FromJSON(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}

// Publisher delivers events. Publishing is best effort: callers log failures
// and carry on.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of what was published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Names returns the names of the published events in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.Name
	}
	return names
}
