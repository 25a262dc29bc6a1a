// Package gemini is the Google Gemini provider adapter, built on the
// official genai SDK. History strategy: session-level instruction. The
// system preamble (static instructions + knowledge base) is bound once to
// the generative model at construction and is never stored as a message,
// so a session carries it exactly once by construction.
package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"whatsapp-ai-bridge/internal/pkg/logger"
	"whatsapp-ai-bridge/pkg/assistant"
	"whatsapp-ai-bridge/pkg/conversation"
)

const (
	ProviderName = "gemini"
	DefaultModel = "models/gemini-2.0-flash-lite"

	replyNotConfigured = "Error: Gemini model not initialized."
	replyMalformed     = "Sorry, I couldn't process that response from Gemini."
)

// chatSender runs one chat turn against the backend: prior turns plus the
// new prompt in, raw response out. The real implementation wraps the SDK's
// chat session; tests substitute a fake.
type chatSender interface {
	Send(ctx context.Context, history []*genai.Content, prompt string) (*genai.GenerateContentResponse, error)
}

type sdkSender struct {
	model *genai.GenerativeModel
}

func (s *sdkSender) Send(ctx context.Context, history []*genai.Content, prompt string) (*genai.GenerateContentResponse, error) {
	cs := s.model.StartChat()
	cs.History = history
	return cs.SendMessage(ctx, genai.Text(prompt))
}

// Config is the adapter's startup configuration; immutable afterwards.
type Config struct {
	APIKey        string
	Model         string // defaults to DefaultModel
	Instructions  string // resolved static system instructions, may be ""
	KnowledgeBase string // loaded knowledge base content, may be ""
}

type Adapter struct {
	sender chatSender // nil when the adapter is permanently disabled
	client *genai.Client
	store  conversation.Store
	log    logger.ILogger
}

var _ assistant.Responder = (*Adapter)(nil)

// New builds the adapter. A missing API key or a failed client init leaves
// it permanently disabled: every Generate fails fast without network or
// storage I/O.
func New(ctx context.Context, cfg Config, store conversation.Store, log logger.ILogger) *Adapter {
	a := &Adapter{store: store, log: log}

	if cfg.APIKey == "" {
		log.Warn(ProviderName, "GEMINI_API_KEY not set, adapter disabled", nil)
		return a
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		log.Error(ProviderName, "Failed to create Gemini client, adapter disabled", map[string]interface{}{
			"error": err.Error(),
		})
		return a
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModel
	}
	model := client.GenerativeModel(modelName)

	preamble := assistant.BuildPreamble(cfg.Instructions, cfg.KnowledgeBase)
	if preamble != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(preamble)}}
		log.Info(ProviderName, "Model initialized with system instructions", map[string]interface{}{
			"model":          modelName,
			"preamble_chars": len(preamble),
		})
	} else {
		log.Info(ProviderName, "Model initialized without system instructions", map[string]interface{}{
			"model": modelName,
		})
	}

	a.client = client
	a.sender = &sdkSender{model: model}
	return a
}

func (a *Adapter) Name() string {
	return ProviderName
}

// Close releases the underlying SDK client.
func (a *Adapter) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

func (a *Adapter) Generate(ctx context.Context, req assistant.GenerateRequest) assistant.Reply {
	if a.sender == nil {
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

	resp, err := a.sender.Send(ctx, toContents(stored), req.Prompt)
	if err != nil {
		// Stored history stays exactly as fetched.
		a.log.Error(ProviderName, "Chat send failed", map[string]interface{}{
			"user_id": req.UserID,
			"error":   err.Error(),
		})
		return assistant.Reply{
			Text: fmt.Sprintf("Error communicating with Gemini: %v", err),
			Kind: assistant.KindTransient,
		}
	}

	text := extractText(resp)
	if text == "" {
		// Nothing was persisted yet, so there is no user turn to roll
		// back from storage; the fetched state remains the stored state.
		a.log.Warn(ProviderName, "Response carried no usable content", map[string]interface{}{
			"user_id": req.UserID,
		})
		return assistant.Reply{Text: replyMalformed, Kind: assistant.KindMalformed}
	}

	updated := stored.
		Append(conversation.RoleUser, req.Prompt).
		Append(conversation.RoleAssistant, text)
	if err := a.store.Put(ctx, req.UserID, updated); err != nil {
		a.log.Error(ProviderName, "Failed to persist conversation history", map[string]interface{}{
			"user_id": req.UserID,
			"error":   err.Error(),
		})
		return assistant.Reply{
			Text: fmt.Sprintf("Error communicating with Gemini: %v", err),
			Kind: assistant.KindStorage,
		}
	}

	a.log.Info(ProviderName, "Generated reply", map[string]interface{}{
		"user_id":     req.UserID,
		"name":        req.Name,
		"reply_chars": len(text),
	})
	return assistant.Reply{Text: text, Kind: assistant.KindOK}
}

func (a *Adapter) Reset(ctx context.Context, userID string) error {
	return a.store.Clear(ctx, userID)
}

// extractText pulls the reply out of the first candidate's text parts, or
// "" when the response has no usable content.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	return textOf(cand.Content)
}
