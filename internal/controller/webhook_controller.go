package controller

import (
	"github.com/gofiber/fiber/v2"

	"whatsapp-ai-bridge/internal/dto"
	"whatsapp-ai-bridge/internal/pkg/serverutils"
	"whatsapp-ai-bridge/internal/service"
)

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	Verify(ctx *fiber.Ctx) error
	Receive(ctx *fiber.Ctx) error
}

type webhookController struct {
	whatsapp service.IWhatsAppService
}

func NewWebhookController(whatsapp service.IWhatsAppService) IWebhookController {
	return &webhookController{whatsapp: whatsapp}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/webhook/v1")
	h.Get("", c.Verify)
	h.Post("", c.Receive)
}

// Verify answers the Cloud API subscription handshake: echo hub.challenge
// when the verify token matches, 403 otherwise.
func (c *webhookController) Verify(ctx *fiber.Ctx) error {
	challenge, ok := c.whatsapp.VerifyWebhook(
		ctx.Query("hub.mode"),
		ctx.Query("hub.verify_token"),
		ctx.Query("hub.challenge"),
	)
	if !ok {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "error",
			"message": "Verification failed",
		})
	}
	return ctx.SendString(challenge)
}

// Receive accepts one webhook delivery. Always 200 on a well-formed body:
// WhatsApp retries non-2xx responses, and a redelivered message would just
// hit the dedup cache anyway.
func (c *webhookController) Receive(ctx *fiber.Ctx) error {
	var payload dto.WebhookPayload
	if err := ctx.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "not a valid JSON body")
	}
	if err := serverutils.ValidateRequest(payload); err != nil {
		return err
	}

	if err := c.whatsapp.ProcessMessage(ctx.Context(), &payload); err != nil {
		// The send failed after processing; report it but stay 200 so the
		// platform doesn't redeliver and double-charge the AI call.
		return ctx.JSON(serverutils.SuccessResponse("Delivery processed with errors", fiber.Map{
			"error": err.Error(),
		}))
	}
	return ctx.JSON(serverutils.SuccessResponse("Delivery processed", nil))
}
