// Package events defines the bridge's internal event contract. Events flow
// over the in-process bus after each conversation turn; the consumer writes
// the audit trail and fans out to NATS when configured.
package events

import "time"

// Event defines the contract for all bridge events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "TURN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const TypeTurnCompleted = "TURN_COMPLETED"

// TurnCompleted records one generate call: who asked, which provider
// answered, and how the call ended. Message bodies are deliberately not
// carried; the event stream is an audit trail, not a transcript.
type TurnCompleted struct {
	EventId     string
	UserId      string
	Provider    string
	ReplyKind   string
	PromptChars int
	ReplyChars  int
	OccurredAt  time.Time
}

func (e TurnCompleted) EventType() string {
	return TypeTurnCompleted
}

func (e TurnCompleted) Payload() map[string]interface{} {
	return map[string]interface{}{
		"event_id":     e.EventId,
		"user_id":      e.UserId,
		"provider":     e.Provider,
		"reply_kind":   e.ReplyKind,
		"prompt_chars": e.PromptChars,
		"reply_chars":  e.ReplyChars,
		"occurred_at":  e.OccurredAt,
	}
}

func (e TurnCompleted) Timestamp() time.Time {
	return e.OccurredAt
}
