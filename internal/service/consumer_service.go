package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"whatsapp-ai-bridge/internal/pkg/logger"
	"whatsapp-ai-bridge/pkg/events"
	natspub "whatsapp-ai-bridge/pkg/nats"
)

// IConsumerService drains the in-process event bus in the background:
// every turn event becomes an audit log entry and, when a NATS publisher
// is wired, a JetStream message for external consumers.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub  *gochannel.GoChannel
	topic   string
	natsPub *natspub.Publisher // nil when NATS is not configured
	log     logger.ILogger
}

func NewConsumerService(pubSub *gochannel.GoChannel, topic string, natsPub *natspub.Publisher, log logger.ILogger) IConsumerService {
	return &consumerService{
		pubSub:  pubSub,
		topic:   topic,
		natsPub: natsPub,
		log:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var ev events.TurnCompleted
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		cs.log.Error("consumer", "Failed to decode turn event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	cs.log.Info("consumer", "Turn completed", map[string]interface{}{
		"event_id":     ev.EventId,
		"user_id":      ev.UserId,
		"provider":     ev.Provider,
		"reply_kind":   ev.ReplyKind,
		"prompt_chars": ev.PromptChars,
		"reply_chars":  ev.ReplyChars,
	})

	if cs.natsPub == nil {
		return
	}
	if err := cs.natsPub.Publish(ctx, ev); err != nil {
		cs.log.Warn("consumer", "Failed to forward turn event to NATS", map[string]interface{}{
			"event_id": ev.EventId,
			"error":    err.Error(),
		})
	}
}
