package service

import (
	"context"
	"encoding/json"
	"log"

	"golden-notes-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// NoteChangeDelivery is what the consumer pushes decoded changes into.
// Implemented by the websocket hub.
type NoteChangeDelivery interface {
	SendNoteChange(ownerID uuid.UUID, change dto.NoteChangedMessage)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	delivery  NoteChangeDelivery
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	delivery NoteChangeDelivery,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		delivery:  delivery,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload dto.NoteChangedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal note change: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.delivery.SendNoteChange(payload.OwnerId, payload)
	msg.Ack()
}
