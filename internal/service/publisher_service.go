package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"whatsapp-ai-bridge/internal/pkg/logger"
	"whatsapp-ai-bridge/pkg/events"
)

// IPublisherService emits bridge events onto the in-process bus. Publishing
// is fire-and-forget: an event that can't be published is logged and
// dropped, never allowed to fail the webhook request.
type IPublisherService interface {
	PublishTurnCompleted(ctx context.Context, userId, provider, replyKind string, promptChars, replyChars int)
}

type publisherService struct {
	pubSub *gochannel.GoChannel
	topic  string
	log    logger.ILogger
}

func NewPublisherService(topic string, pubSub *gochannel.GoChannel, log logger.ILogger) IPublisherService {
	return &publisherService{
		pubSub: pubSub,
		topic:  topic,
		log:    log,
	}
}

func (ps *publisherService) PublishTurnCompleted(ctx context.Context, userId, provider, replyKind string, promptChars, replyChars int) {
	ev := events.TurnCompleted{
		EventId:     uuid.NewString(),
		UserId:      userId,
		Provider:    provider,
		ReplyKind:   replyKind,
		PromptChars: promptChars,
		ReplyChars:  replyChars,
		OccurredAt:  time.Now(),
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		ps.log.Error("publisher", "Failed to marshal turn event", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	msg := message.NewMessage(ev.EventId, payload)
	if err := ps.pubSub.Publish(ps.topic, msg); err != nil {
		ps.log.Error("publisher", "Failed to publish turn event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
