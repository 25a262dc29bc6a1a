package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-ai-bridge/pkg/conversation"
)

func TestToContentsMapsRolesAndSkipsSystem(t *testing.T) {
	h := conversation.History{
		{Role: conversation.RoleSystem, Content: "legacy preamble row"},
		{Role: conversation.RoleUser, Content: "Hello"},
		{Role: conversation.RoleAssistant, Content: "Hi!"},
	}

	contents := toContents(h)
	require.Len(t, contents, 2, "system rows never reach the wire")
	assert.Equal(t, genaiRoleUser, contents[0].Role)
	assert.Equal(t, "Hello", textOf(contents[0]))
	assert.Equal(t, genaiRoleModel, contents[1].Role)
	assert.Equal(t, "Hi!", textOf(contents[1]))
}

func TestFromContentsRoundTrip(t *testing.T) {
	h := conversation.History{
		{Role: conversation.RoleUser, Content: "Hello"},
		{Role: conversation.RoleAssistant, Content: "Hi!"},
	}

	assert.Equal(t, h, fromContents(toContents(h)))
}

func TestTextOfConcatenatesTextParts(t *testing.T) {
	c := &genai.Content{Parts: []genai.Part{genai.Text("one "), genai.Text("two")}}
	assert.Equal(t, "one two", textOf(c))
}

func TestExtractTextEmptyCases(t *testing.T) {
	assert.Equal(t, "", extractText(nil))
	assert.Equal(t, "", extractText(&genai.GenerateContentResponse{}))
	assert.Equal(t, "", extractText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: nil}},
	}))
}
