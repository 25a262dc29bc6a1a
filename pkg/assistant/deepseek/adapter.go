// Package deepseek is the DeepSeek provider adapter. DeepSeek speaks the
// OpenAI chat-completions dialect, so the wire client is go-openai pointed
// at the DeepSeek endpoint. History strategy: explicit message list. The
// system preamble lives as the first stored message of a session.
package deepseek

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"whatsapp-ai-bridge/internal/pkg/logger"
	"whatsapp-ai-bridge/pkg/assistant"
	"whatsapp-ai-bridge/pkg/conversation"
)

const (
	ProviderName   = "deepseek"
	DefaultBaseURL = "https://api.deepseek.com/v1"
	DefaultModel   = "deepseek-chat"

	replyNotConfigured = "Error: DeepSeek client not initialized."
	replyMalformed     = "Sorry, I couldn't process that response from DeepSeek."
)

// chatCompleter is the slice of the go-openai client the adapter needs.
// *openai.Client satisfies it; tests substitute a fake.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config is the adapter's startup configuration; immutable afterwards.
type Config struct {
	APIKey        string
	BaseURL       string // defaults to DefaultBaseURL
	Model         string // defaults to DefaultModel
	Instructions  string // resolved static system instructions, may be ""
	KnowledgeBase string // loaded knowledge base content, may be ""
}

type Adapter struct {
	client   chatCompleter // nil when the adapter is permanently disabled
	model    string
	preamble string
	store    conversation.Store
	log      logger.ILogger
}

var _ assistant.Responder = (*Adapter)(nil)

func New(cfg Config, store conversation.Store, log logger.ILogger) *Adapter {
	a := &Adapter{
		model:    cfg.Model,
		preamble: assistant.BuildPreamble(cfg.Instructions, cfg.KnowledgeBase),
		store:    store,
		log:      log,
	}
	if a.model == "" {
		a.model = DefaultModel
	}

	if cfg.APIKey == "" {
		log.Warn(ProviderName, "DEEPSEEK_API_KEY not set, adapter disabled", nil)
		return a
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	if clientCfg.BaseURL == "" {
		clientCfg.BaseURL = DefaultBaseURL
	}
	a.client = openai.NewClientWithConfig(clientCfg)
	return a
}

func (a *Adapter) Name() string {
	return ProviderName
}

func (a *Adapter) Generate(ctx context.Context, req assistant.GenerateRequest) assistant.Reply {
	if a.client == nil {
		return assistant.Reply{Text: replyNotConfigured, Kind: assistant.KindConfigError}
	}

	stored, _, err := a.store.Get(ctx, req.UserID)
	if err != nil {
		a.log.Error(ProviderName, "Failed to read conversation history", map[string]interface{}{
			"user_id": req.UserID,
			"error":   err.Error(),
		})
		return assistant.Reply{
			Text: fmt.Sprintf("Error accessing conversation history: %v", err),
			Kind: assistant.KindStorage,
		}
	}

	// Inject the system preamble only at session start. An ongoing
	// conversation never gets it re-injected.
	working := stored
	if working.IsEmpty() && a.preamble != "" {
		working = working.WithSystem(a.preamble)
	}
	working = working.Append(conversation.RoleUser, req.Prompt)

	model := a.model
	if req.Model != "" {
		model = req.Model
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: toOpenAIMessages(working),
	})
	if err != nil {
		// Stored history stays exactly as fetched.
		a.log.Error(ProviderName, "Chat completion failed", map[string]interface{}{
			"user_id": req.UserID,
			"error":   err.Error(),
		})
		return assistant.Reply{
			Text: fmt.Sprintf("Error communicating with DeepSeek: %v", err),
			Kind: assistant.KindTransient,
		}
	}

	text := extractText(resp)
	if text == "" {
		return a.rollback(ctx, req.UserID, working)
	}

	working = working.Append(conversation.RoleAssistant, text)
	if err := a.store.Put(ctx, req.UserID, working); err != nil {
		a.log.Error(ProviderName, "Failed to persist conversation history", map[string]interface{}{
			"user_id": req.UserID,
			"error":   err.Error(),
		})
		return assistant.Reply{
			Text: fmt.Sprintf("Error communicating with DeepSeek: %v", err),
			Kind: assistant.KindStorage,
		}
	}

	a.log.Info(ProviderName, "Generated reply", map[string]interface{}{
		"user_id":     req.UserID,
		"name":        req.Name,
		"model":       model,
		"reply_chars": len(text),
	})
	return assistant.Reply{Text: text, Kind: assistant.KindOK}
}

// rollback handles a well-formed API response carrying no usable content:
// drop the speculative user turn, and never leave a lone system preamble
// behind with no exchange.
func (a *Adapter) rollback(ctx context.Context, userID string, working conversation.History) assistant.Reply {
	a.log.Warn(ProviderName, "Response carried no usable content, rolling back user turn", map[string]interface{}{
		"user_id": userID,
	})

	working = working.DropLast()
	if working.OnlySystem() {
		working = conversation.History{}
	}
	if err := a.store.Put(ctx, userID, working); err != nil {
		a.log.Error(ProviderName, "Failed to persist rollback", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
	return assistant.Reply{Text: replyMalformed, Kind: assistant.KindMalformed}
}

func (a *Adapter) Reset(ctx context.Context, userID string) error {
	return a.store.Clear(ctx, userID)
}

func toOpenAIMessages(h conversation.History) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, len(h))
	for i, m := range h {
		role := m.Role
		switch m.Role {
		case conversation.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case conversation.RoleUser:
			role = openai.ChatMessageRoleUser
		case conversation.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		msgs[i] = openai.ChatCompletionMessage{Role: role, Content: m.Content}
	}
	return msgs
}

// extractText pulls the reply out of the first choice, or "" when the
// response has no usable content.
func extractText(resp openai.ChatCompletionResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Message.Content
}
