package controller

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-ai-bridge/internal/dto"
	"whatsapp-ai-bridge/internal/pkg/serverutils"
)

type stubWhatsApp struct {
	verifyOK   bool
	processErr error
	processed  []*dto.WebhookPayload
}

func (s *stubWhatsApp) VerifyWebhook(mode, token, challenge string) (string, bool) {
	if s.verifyOK {
		return challenge, true
	}
	return "", false
}

func (s *stubWhatsApp) ProcessMessage(ctx context.Context, payload *dto.WebhookPayload) error {
	s.processed = append(s.processed, payload)
	return s.processErr
}

func (s *stubWhatsApp) SendText(ctx context.Context, to, body string) error {
	return nil
}

func newTestApp(stub *stubWhatsApp) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewWebhookController(stub).RegisterRoutes(api)
	return app
}

func TestVerifyEchoesChallenge(t *testing.T) {
	app := newTestApp(&stubWhatsApp{verifyOK: true})

	req := httptest.NewRequest("GET", "/api/webhook/v1?hub.mode=subscribe&hub.verify_token=secret&hub.challenge=42", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "42", string(body))
}

func TestVerifyRejectsBadToken(t *testing.T) {
	app := newTestApp(&stubWhatsApp{verifyOK: false})

	req := httptest.NewRequest("GET", "/api/webhook/v1?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=42", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestReceiveValidDelivery(t *testing.T) {
	stub := &stubWhatsApp{}
	app := newTestApp(stub)

	payload := `{"object":"whatsapp_business_account","entry":[{"id":"e1","changes":[{"field":"messages","value":{"contacts":[{"wa_id":"628111","profile":{"name":"Ana"}}],"messages":[{"id":"wamid.1","from":"628111","type":"text","text":{"body":"Hello"}}]}}]}]}`
	req := httptest.NewRequest("POST", "/api/webhook/v1", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, stub.processed, 1)
	assert.Equal(t, "whatsapp_business_account", stub.processed[0].Object)
}

func TestReceiveProcessingErrorStays200(t *testing.T) {
	stub := &stubWhatsApp{processErr: errors.New("graph api down")}
	app := newTestApp(stub)

	payload := `{"object":"whatsapp_business_account","entry":[{"id":"e1"}]}`
	req := httptest.NewRequest("POST", "/api/webhook/v1", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, "a send failure must not trigger platform redelivery")

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "graph api down")
}

func TestReceiveMalformedBody(t *testing.T) {
	app := newTestApp(&stubWhatsApp{})

	req := httptest.NewRequest("POST", "/api/webhook/v1", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestReceiveMissingRequiredFields(t *testing.T) {
	app := newTestApp(&stubWhatsApp{})

	req := httptest.NewRequest("POST", "/api/webhook/v1", strings.NewReader(`{"object":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "entry is required")
}
