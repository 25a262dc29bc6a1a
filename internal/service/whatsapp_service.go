package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"whatsapp-ai-bridge/internal/constant"
	"whatsapp-ai-bridge/internal/dto"
	"whatsapp-ai-bridge/internal/pkg/logger"
	"whatsapp-ai-bridge/pkg/assistant"
)

// IWhatsAppService owns the WhatsApp side of the bridge: webhook payload
// handling, outbound sends, and platform text formatting.
type IWhatsAppService interface {
	// VerifyWebhook implements the Cloud API subscription handshake.
	// Returns the challenge to echo and whether the token matched.
	VerifyWebhook(mode, token, challenge string) (string, bool)

	// ProcessMessage handles one inbound delivery end to end: route the
	// text to the AI, format the reply, send it back to the sender.
	ProcessMessage(ctx context.Context, payload *dto.WebhookPayload) error

	// SendText delivers a text message through the Graph API.
	SendText(ctx context.Context, to, body string) error
}

type whatsAppService struct {
	accessToken   string
	phoneNumberID string
	verifyToken   string
	apiBaseURL    string

	responder IResponderService
	publisher IPublisherService
	log       logger.ILogger
	client    *http.Client

	// WhatsApp redelivers webhooks it considers unacknowledged; seen
	// message IDs are remembered for a while so a redelivery doesn't
	// trigger a second AI call.
	seen *cache.Cache
}

func NewWhatsAppService(
	accessToken, phoneNumberID, verifyToken, apiVersion string,
	responder IResponderService,
	publisher IPublisherService,
	log logger.ILogger,
) IWhatsAppService {
	return &whatsAppService{
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		verifyToken:   verifyToken,
		apiBaseURL:    "https://graph.facebook.com/" + apiVersion,
		responder:     responder,
		publisher:     publisher,
		log:           log,
		client:        &http.Client{Timeout: 10 * time.Second},
		seen:          cache.New(10*time.Minute, 30*time.Minute),
	}
}

func (s *whatsAppService) VerifyWebhook(mode, token, challenge string) (string, bool) {
	if mode == "subscribe" && token != "" && token == s.verifyToken {
		return challenge, true
	}
	return "", false
}

func (s *whatsAppService) ProcessMessage(ctx context.Context, payload *dto.WebhookPayload) error {
	if !payload.HasMessage() {
		s.log.Debug("whatsapp", "Delivery carries no message, ignoring", nil)
		return nil
	}

	waId, name, msg := payload.FirstMessage()
	if msg.Type != "text" {
		s.log.Info("whatsapp", "Unsupported message type, ignoring", map[string]interface{}{
			"type": msg.Type,
			"from": waId,
		})
		return nil
	}

	if msg.Id != "" {
		if _, dup := s.seen.Get(msg.Id); dup {
			s.log.Info("whatsapp", "Duplicate webhook delivery, ignoring", map[string]interface{}{
				"message_id": msg.Id,
			})
			return nil
		}
		s.seen.Set(msg.Id, struct{}{}, cache.DefaultExpiration)
	}

	if msg.Text.Body == constant.ResetCommand {
		return s.handleReset(ctx, waId)
	}

	reply := s.responder.Generate(ctx, assistant.GenerateRequest{
		Prompt: msg.Text.Body,
		UserID: waId,
		Name:   name,
	})

	s.publisher.PublishTurnCompleted(ctx, waId, s.responder.ActiveProvider(), reply.Kind.String(),
		len(msg.Text.Body), len(reply.Text))

	return s.SendText(ctx, waId, FormatForWhatsApp(reply.Text))
}

func (s *whatsAppService) handleReset(ctx context.Context, waId string) error {
	if err := s.responder.Reset(ctx, waId); err != nil {
		s.log.Error("whatsapp", "Failed to reset conversation", map[string]interface{}{
			"user_id": waId,
			"error":   err.Error(),
		})
		return s.SendText(ctx, waId, constant.ResetFailedReply)
	}
	s.log.Info("whatsapp", "Conversation reset", map[string]interface{}{
		"user_id": waId,
	})
	return s.SendText(ctx, waId, constant.ResetAckReply)
}

func (s *whatsAppService) SendText(ctx context.Context, to, body string) error {
	payload, err := json.Marshal(dto.NewSendTextRequest(to, body))
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", s.apiBaseURL, s.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		s.log.Error("whatsapp", "Graph API rejected the send", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(respBody),
		})
		return fmt.Errorf("send message: status %d", resp.StatusCode)
	}

	s.log.Info("whatsapp", "Message sent", map[string]interface{}{
		"to":    to,
		"chars": len(body),
	})
	return nil
}

var (
	bracketCitations = regexp.MustCompile(`【.*?】`)
	doubleAsterisks  = regexp.MustCompile(`\*\*(.*?)\*\*`)
)

// FormatForWhatsApp converts common markdown to WhatsApp's markup: strips
// 【...】 citation brackets and turns **bold** into *bold*.
func FormatForWhatsApp(text string) string {
	text = strings.TrimSpace(bracketCitations.ReplaceAllString(text, ""))
	return doubleAsterisks.ReplaceAllString(text, "*$1*")
}
