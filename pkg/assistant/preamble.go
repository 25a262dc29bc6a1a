package assistant

import "strings"

const (
	knowledgeHeader = "Use the following information from the knowledge base to answer user questions. Prioritize this information above all other knowledge.\n---BEGIN KNOWLEDGE BASE---\n"
	knowledgeFooter = "\n---END KNOWLEDGE BASE---"
)

// BuildPreamble merges the static system instructions with the knowledge
// base, the knowledge base appended after a clear separator. Either part may
// be empty; when both are, the result is "" and no system context is ever
// created for the session.
func BuildPreamble(instructions, knowledgeBase string) string {
	if knowledgeBase == "" {
		return instructions
	}
	kb := knowledgeHeader + knowledgeBase + knowledgeFooter
	if instructions == "" {
		return strings.TrimSpace(kb)
	}
	return instructions + "\n\n" + kb
}
