package gemini

import (
	"github.com/google/generative-ai-go/genai"

	"whatsapp-ai-bridge/pkg/conversation"
)

// Gemini's native role names differ from the stored ones: the model side of
// the conversation is "model", not "assistant". The system preamble is bound
// to the session (SystemInstruction), so it never appears in either format.

const (
	genaiRoleUser  = "user"
	genaiRoleModel = "model"
)

// toContents converts a stored history into Gemini chat history. System
// messages are skipped: under this adapter's strategy they are never stored,
// and a row written by an older deployment must not leak into the wire
// format as a bogus turn.
func toContents(h conversation.History) []*genai.Content {
	contents := make([]*genai.Content, 0, len(h))
	for _, m := range h {
		var role string
		switch m.Role {
		case conversation.RoleUser:
			role = genaiRoleUser
		case conversation.RoleAssistant:
			role = genaiRoleModel
		default:
			continue
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return contents
}

// fromContents converts Gemini chat history back into the stored format.
func fromContents(contents []*genai.Content) conversation.History {
	h := make(conversation.History, 0, len(contents))
	for _, c := range contents {
		if c == nil {
			continue
		}
		role := conversation.RoleUser
		if c.Role == genaiRoleModel {
			role = conversation.RoleAssistant
		}
		h = append(h, conversation.Message{Role: role, Content: textOf(c)})
	}
	return h
}

// textOf concatenates the text parts of a content block.
func textOf(c *genai.Content) string {
	var out string
	for _, p := range c.Parts {
		if t, ok := p.(genai.Text); ok {
			out += string(t)
		}
	}
	return out
}
