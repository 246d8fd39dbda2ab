// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ai-canvas-be/internal/dto"
	"ai-canvas-be/internal/repository/specification"
	"ai-canvas-be/internal/repository/unitofwork"
	"ai-canvas-be/pkg/events"
	pktNats "ai-canvas-be/pkg/nats"
	"ai-canvas-be/pkg/prosemirror"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains canvas-saved messages off the in-process bus,
// derives document stats, and relays the save to the events stream.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
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
	var payload dto.CanvasSavedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal canvas saved message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing canvas save for CanvasId: %s (source=%s)", payload.CanvasId, payload.Source)

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	canvas, err := uow.CanvasRepository().FindOne(ctx, specification.ByID{ID: payload.CanvasId})
	if err != nil {
		log.Printf("[ERROR] Failed to get canvas %s: %v", payload.CanvasId, err)
		msg.Nack()
		return
	}
	if canvas == nil {
		log.Printf("[ERROR] Canvas not found: %s", payload.CanvasId)
		msg.Ack() // Canvas deleted? Ack.
		return
	}

	content := canvas.Content
	if content == nil {
		content = prosemirror.EmptyDocument()
	}
	ix, err := prosemirror.NewIndex(content)
	if err != nil {
		log.Printf("[ERROR] Canvas %s has invalid content: %v", payload.CanvasId, err)
		msg.Ack()
		return
	}

	text := ix.ExtractText()
	headings := ix.Structure()
	log.Printf("[INFO] Canvas %s: %d characters, %d headings", payload.CanvasId, len(text), len(headings))

	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "CANVAS_SAVED",
			Data: map[string]interface{}{
				"canvas_id":       payload.CanvasId,
				"user_id":         payload.UserId,
				"source":          payload.Source,
				"character_count": len(text),
				"heading_count":   len(headings),
			},
			OccurredAt: time.Now(),
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish CANVAS_SAVED event: %v", err)
		}
	}

	msg.Ack()
}
