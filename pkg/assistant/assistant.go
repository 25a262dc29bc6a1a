// Package assistant defines the contract the response router dispatches on:
// one Responder per AI backend, each owning its conversation store and its
// knowledge-base preamble.
package assistant

import "context"

// Kind classifies a reply so callers can tell failure modes apart without
// parsing message text.
type Kind int

const (
	// KindOK is a normal AI reply.
	KindOK Kind = iota
	// KindConfigError means the adapter was never initialized (missing
	// credential); the call failed fast without touching storage or network.
	KindConfigError
	// KindMalformed means the backend answered but with no usable content;
	// the speculative user turn was rolled back.
	KindMalformed
	// KindTransient is a network/API failure; stored history is unchanged.
	KindTransient
	// KindStorage is a conversation-store read/write failure.
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindConfigError:
		return "config_error"
	case KindMalformed:
		return "malformed_response"
	case KindTransient:
		return "transient_error"
	case KindStorage:
		return "storage_error"
	default:
		return "unknown"
	}
}

// Reply is the outcome of a generation call. Text is always non-empty so
// the messaging layer has something to relay, whatever happened.
type Reply struct {
	Text string
	Kind Kind
}

// GenerateRequest carries one inbound user message.
type GenerateRequest struct {
	Prompt string
	UserID string
	Name   string
	// Model optionally overrides the adapter's default model for this call.
	Model string
}

// Responder is one AI provider adapter.
type Responder interface {
	// Name returns the provider key ("gemini", "deepseek").
	Name() string

	// Generate turns a prompt into a reply while maintaining the user's
	// conversation history. It never returns an error; failures are
	// reported through Reply.Kind.
	Generate(ctx context.Context, req GenerateRequest) Reply

	// Reset clears the user's stored history so the next Generate starts
	// a fresh session (and re-injects the knowledge base).
	Reset(ctx context.Context, userID string) error
}
