package conversation

// Message roles. These are the provider-agnostic role names; provider
// codecs map them to whatever the backend wire format expects.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// History is the ordered sequence of turns for one user under one provider.
// Invariant: at most one system message, and if present it is the first
// element. The system message is only ever installed when the history is
// empty at the start of a generation call.
type History []Message

// IsEmpty reports whether the history has no turns. A never-seen user and an
// explicitly cleared user both start from an empty history.
func (h History) IsEmpty() bool {
	return len(h) == 0
}

// WithSystem returns a copy of the history with a system message prepended.
// Calling it on a non-empty history is a programming error; the caller is
// expected to check IsEmpty first.
func (h History) WithSystem(content string) History {
	out := make(History, 0, len(h)+1)
	out = append(out, Message{Role: RoleSystem, Content: content})
	out = append(out, h...)
	return out
}

// Append returns a copy of the history with the given turn appended. The
// copy keeps the stored value untouched so a failed AI call never leaks a
// speculative turn back into the store.
func (h History) Append(role, content string) History {
	out := make(History, 0, len(h)+1)
	out = append(out, h...)
	out = append(out, Message{Role: role, Content: content})
	return out
}

// DropLast returns a copy of the history without its final turn. Used to
// roll back the speculative user turn after a malformed provider response.
func (h History) DropLast() History {
	if len(h) == 0 {
		return h
	}
	out := make(History, len(h)-1)
	copy(out, h[:len(h)-1])
	return out
}

// OnlySystem reports whether the history consists of a lone system message.
// A store should never hold a system preamble with no exchange behind it.
func (h History) OnlySystem() bool {
	return len(h) == 1 && h[0].Role == RoleSystem
}

// SystemCount returns the number of system messages. Kept for invariant
// checks in tests.
func (h History) SystemCount() int {
	n := 0
	for _, m := range h {
		if m.Role == RoleSystem {
			n++
		}
	}
	return n
}
