package service

import (
	"context"
	"fmt"

	"whatsapp-ai-bridge/internal/pkg/logger"
	"whatsapp-ai-bridge/pkg/assistant"
)

// IResponderService routes prompts to the configured AI provider adapter.
type IResponderService interface {
	// Generate dispatches the prompt to the active provider and returns
	// its reply. Like the adapters, it never fails without a relay text.
	Generate(ctx context.Context, req assistant.GenerateRequest) assistant.Reply

	// Reset clears the user's history under the active provider.
	Reset(ctx context.Context, userID string) error

	// ActiveProvider returns the provider key in use.
	ActiveProvider() string
}

type responderService struct {
	responders map[string]assistant.Responder
	active     string
	fallback   string
	log        logger.ILogger
}

// NewResponderService builds the router. An unknown active key falls back
// to the default provider with a warning instead of failing the process;
// misconfiguration should degrade, not kill the webhook.
func NewResponderService(active, fallback string, log logger.ILogger, responders ...assistant.Responder) IResponderService {
	byName := make(map[string]assistant.Responder, len(responders))
	for _, r := range responders {
		byName[r.Name()] = r
	}

	if _, ok := byName[active]; !ok {
		log.Warn("responder", "Unknown AI_PROVIDER, falling back to default", map[string]interface{}{
			"requested": active,
			"fallback":  fallback,
		})
		active = fallback
	}

	return &responderService{
		responders: byName,
		active:     active,
		fallback:   fallback,
		log:        log,
	}
}

func (s *responderService) ActiveProvider() string {
	return s.active
}

func (s *responderService) Generate(ctx context.Context, req assistant.GenerateRequest) assistant.Reply {
	r, ok := s.responders[s.active]
	if !ok {
		// Only reachable when the fallback itself was never registered.
		s.log.Error("responder", "No responder registered for active provider", map[string]interface{}{
			"provider": s.active,
		})
		return assistant.Reply{
			Text: fmt.Sprintf("Sorry, I couldn't process your request using %s.", s.active),
			Kind: assistant.KindConfigError,
		}
	}

	s.log.Info("responder", "Dispatching prompt", map[string]interface{}{
		"provider": s.active,
		"user_id":  req.UserID,
		"name":     req.Name,
	})
	return r.Generate(ctx, req)
}

func (s *responderService) Reset(ctx context.Context, userID string) error {
	r, ok := s.responders[s.active]
	if !ok {
		return fmt.Errorf("no responder registered for provider %s", s.active)
	}
	return r.Reset(ctx, userID)
}
