package dto

// WhatsApp Cloud API webhook payload. Only the parts of the delivery the
// bridge acts on are modeled; everything else is ignored on the floor.

type WebhookPayload struct {
	Object string         `json:"object" validate:"required"`
	Entry  []WebhookEntry `json:"entry" validate:"required,min=1"`
}

type WebhookEntry struct {
	Id      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

type WebhookValue struct {
	MessagingProduct string            `json:"messaging_product"`
	Contacts         []WebhookContact  `json:"contacts"`
	Messages         []IncomingMessage `json:"messages"`
}

type WebhookContact struct {
	WaId    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

type IncomingMessage struct {
	Id   string `json:"id"`
	From string `json:"from"`
	Type string `json:"type"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
}

// HasMessage reports whether the delivery carries at least one message with
// contact information. Status updates and other webhook noise do not.
func (p *WebhookPayload) HasMessage() bool {
	return p.Object != "" &&
		len(p.Entry) > 0 &&
		len(p.Entry[0].Changes) > 0 &&
		len(p.Entry[0].Changes[0].Value.Contacts) > 0 &&
		len(p.Entry[0].Changes[0].Value.Messages) > 0
}

// FirstMessage returns the sender id, display name and message of the first
// message in the delivery. Call HasMessage first.
func (p *WebhookPayload) FirstMessage() (waId, name string, msg IncomingMessage) {
	value := p.Entry[0].Changes[0].Value
	return value.Contacts[0].WaId, value.Contacts[0].Profile.Name, value.Messages[0]
}

// SendTextRequest is the Graph API payload for an outbound text message.
type SendTextRequest struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		PreviewURL bool   `json:"preview_url"`
		Body       string `json:"body"`
	} `json:"text"`
}

func NewSendTextRequest(to, body string) *SendTextRequest {
	req := &SendTextRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
	}
	req.Text.Body = body
	return req
}
