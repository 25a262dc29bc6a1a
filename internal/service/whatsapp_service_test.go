package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-ai-bridge/internal/constant"
	"whatsapp-ai-bridge/internal/dto"
	"whatsapp-ai-bridge/internal/pkg/logger"
	"whatsapp-ai-bridge/pkg/assistant"
)

func TestFormatForWhatsApp(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "hello there", "hello there"},
		{"bold converted", "this is **important** stuff", "this is *important* stuff"},
		{"multiple bolds", "**a** and **b**", "*a* and *b*"},
		{"citations stripped", "per the docs【4:0†kb.txt】 it works", "per the docs it works"},
		{"citation then trim", "answer 【1†src】", "answer"},
		{"combined", "**Hours**: 9-5【2†faq.md】", "*Hours*: 9-5"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatForWhatsApp(tt.in))
		})
	}
}

type recordingResponder struct {
	reply    assistant.Reply
	calls    []assistant.GenerateRequest
	resets   []string
	resetErr error
}

func (r *recordingResponder) Generate(ctx context.Context, req assistant.GenerateRequest) assistant.Reply {
	r.calls = append(r.calls, req)
	return r.reply
}

func (r *recordingResponder) Reset(ctx context.Context, userID string) error {
	r.resets = append(r.resets, userID)
	return r.resetErr
}

func (r *recordingResponder) ActiveProvider() string { return "gemini" }

type recordingPublisher struct {
	kinds []string
}

func (p *recordingPublisher) PublishTurnCompleted(ctx context.Context, userId, provider, replyKind string, promptChars, replyChars int) {
	p.kinds = append(p.kinds, replyKind)
}

type sentMessage struct {
	To   string
	Body string
	Auth string
}

// newGraphStub stands in for the Graph API /messages endpoint.
func newGraphStub(t *testing.T, status int) (*httptest.Server, *[]sentMessage) {
	t.Helper()
	var sent []sentMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req dto.SendTextRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		sent = append(sent, sentMessage{
			To:   req.To,
			Body: req.Text.Body,
			Auth: r.Header.Get("Authorization"),
		})
		w.WriteHeader(status)
		w.Write([]byte(`{"messages":[{"id":"wamid.out"}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &sent
}

func newTestService(t *testing.T, responder IResponderService, publisher IPublisherService, graphURL string) *whatsAppService {
	t.Helper()
	svc := NewWhatsAppService("token-123", "1555", "verify-secret", "v18.0",
		responder, publisher, logger.NopLogger{}).(*whatsAppService)
	svc.apiBaseURL = graphURL
	return svc
}

func textPayload(waId, name, msgId, body string) *dto.WebhookPayload {
	p := &dto.WebhookPayload{
		Object: "whatsapp_business_account",
		Entry: []dto.WebhookEntry{{
			Id: "entry-1",
			Changes: []dto.WebhookChange{{
				Field: "messages",
				Value: dto.WebhookValue{
					MessagingProduct: "whatsapp",
					Contacts:         []dto.WebhookContact{{WaId: waId}},
					Messages: []dto.IncomingMessage{{
						Id:   msgId,
						From: waId,
						Type: "text",
					}},
				},
			}},
		}},
	}
	p.Entry[0].Changes[0].Value.Contacts[0].Profile.Name = name
	p.Entry[0].Changes[0].Value.Messages[0].Text.Body = body
	return p
}

func TestVerifyWebhook(t *testing.T) {
	svc := newTestService(t, &recordingResponder{}, &recordingPublisher{}, "http://unused")

	challenge, ok := svc.VerifyWebhook("subscribe", "verify-secret", "12345")
	assert.True(t, ok)
	assert.Equal(t, "12345", challenge)

	_, ok = svc.VerifyWebhook("subscribe", "wrong", "12345")
	assert.False(t, ok)
	_, ok = svc.VerifyWebhook("unsubscribe", "verify-secret", "12345")
	assert.False(t, ok)
	_, ok = svc.VerifyWebhook("subscribe", "", "12345")
	assert.False(t, ok)
}

func TestProcessMessageHappyPath(t *testing.T) {
	graph, sent := newGraphStub(t, http.StatusOK)
	responder := &recordingResponder{reply: assistant.Reply{Text: "**Hi** Ana!", Kind: assistant.KindOK}}
	publisher := &recordingPublisher{}
	svc := newTestService(t, responder, publisher, graph.URL)

	err := svc.ProcessMessage(context.Background(), textPayload("628111", "Ana", "wamid.1", "Hello"))
	require.NoError(t, err)

	require.Len(t, responder.calls, 1)
	assert.Equal(t, "Hello", responder.calls[0].Prompt)
	assert.Equal(t, "628111", responder.calls[0].UserID)
	assert.Equal(t, "Ana", responder.calls[0].Name)

	require.Len(t, *sent, 1)
	assert.Equal(t, "628111", (*sent)[0].To)
	assert.Equal(t, "*Hi* Ana!", (*sent)[0].Body, "reply must be WhatsApp-formatted")
	assert.Equal(t, "Bearer token-123", (*sent)[0].Auth)

	assert.Equal(t, []string{"ok"}, publisher.kinds)
}

func TestProcessMessageDeduplicatesRedelivery(t *testing.T) {
	graph, sent := newGraphStub(t, http.StatusOK)
	responder := &recordingResponder{reply: assistant.Reply{Text: "Hi!", Kind: assistant.KindOK}}
	svc := newTestService(t, responder, &recordingPublisher{}, graph.URL)
	ctx := context.Background()

	payload := textPayload("628111", "Ana", "wamid.dup", "Hello")
	require.NoError(t, svc.ProcessMessage(ctx, payload))
	require.NoError(t, svc.ProcessMessage(ctx, payload))

	assert.Len(t, responder.calls, 1, "redelivery must not trigger a second AI call")
	assert.Len(t, *sent, 1)
}

func TestProcessMessageIgnoresNonText(t *testing.T) {
	graph, sent := newGraphStub(t, http.StatusOK)
	responder := &recordingResponder{}
	svc := newTestService(t, responder, &recordingPublisher{}, graph.URL)

	payload := textPayload("628111", "Ana", "wamid.img", "")
	payload.Entry[0].Changes[0].Value.Messages[0].Type = "image"

	require.NoError(t, svc.ProcessMessage(context.Background(), payload))
	assert.Empty(t, responder.calls)
	assert.Empty(t, *sent)
}

func TestProcessMessageIgnoresStatusDelivery(t *testing.T) {
	responder := &recordingResponder{}
	svc := newTestService(t, responder, &recordingPublisher{}, "http://unused")

	payload := &dto.WebhookPayload{Object: "whatsapp_business_account", Entry: []dto.WebhookEntry{{Id: "e"}}}
	require.NoError(t, svc.ProcessMessage(context.Background(), payload))
	assert.Empty(t, responder.calls)
}

func TestProcessMessageResetCommand(t *testing.T) {
	graph, sent := newGraphStub(t, http.StatusOK)
	responder := &recordingResponder{}
	svc := newTestService(t, responder, &recordingPublisher{}, graph.URL)

	require.NoError(t, svc.ProcessMessage(context.Background(), textPayload("628111", "Ana", "wamid.r", constant.ResetCommand)))

	assert.Equal(t, []string{"628111"}, responder.resets)
	assert.Empty(t, responder.calls, "reset must not reach the AI")
	require.Len(t, *sent, 1)
	assert.Equal(t, constant.ResetAckReply, (*sent)[0].Body)
}

func TestProcessMessageResetFailure(t *testing.T) {
	graph, sent := newGraphStub(t, http.StatusOK)
	responder := &recordingResponder{resetErr: assert.AnError}
	svc := newTestService(t, responder, &recordingPublisher{}, graph.URL)

	require.NoError(t, svc.ProcessMessage(context.Background(), textPayload("628111", "Ana", "wamid.rf", constant.ResetCommand)))
	require.Len(t, *sent, 1)
	assert.Equal(t, constant.ResetFailedReply, (*sent)[0].Body)
}

func TestProcessMessageErrorReplyStillRelayed(t *testing.T) {
	graph, sent := newGraphStub(t, http.StatusOK)
	responder := &recordingResponder{reply: assistant.Reply{
		Text: "Error communicating with Gemini: quota exceeded",
		Kind: assistant.KindTransient,
	}}
	publisher := &recordingPublisher{}
	svc := newTestService(t, responder, publisher, graph.URL)

	require.NoError(t, svc.ProcessMessage(context.Background(), textPayload("628111", "Ana", "wamid.e", "Hello")))

	require.Len(t, *sent, 1)
	assert.Contains(t, (*sent)[0].Body, "Error communicating with Gemini")
	assert.Equal(t, []string{"transient_error"}, publisher.kinds)
}

func TestSendTextRejectedByGraphAPI(t *testing.T) {
	graph, _ := newGraphStub(t, http.StatusUnauthorized)
	svc := newTestService(t, &recordingResponder{}, &recordingPublisher{}, graph.URL)

	err := svc.SendText(context.Background(), "628111", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
