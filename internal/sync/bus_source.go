package sync

import (
	"context"
	"encoding/json"

	"golden-notes-be/internal/dto"
	"golden-notes-be/internal/entity"
	"golden-notes-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

// NoteChangesTopic is the bus topic carrying NoteChangedMessage payloads.
const NoteChangesTopic = "NOTE_CHANGES"

// BusSource adapts a watermill subscription into a Source. Every instance
// owns its subscription; Close tears it down.
type BusSource struct {
	updates chan Change
	cancel  context.CancelFunc
}

// NewBusSource subscribes to the note changes topic and starts decoding
// messages into Changes. Malformed payloads are acked and dropped so they
// cannot wedge the subscription.
func NewBusSource(ctx context.Context, subscriber message.Subscriber, log logger.ILogger) (*BusSource, error) {
	ctx, cancel := context.WithCancel(ctx)

	messages, err := subscriber.Subscribe(ctx, NoteChangesTopic)
	if err != nil {
		cancel()
		return nil, err
	}

	s := &BusSource{
		updates: make(chan Change, 16),
		cancel:  cancel,
	}

	go func() {
		defer close(s.updates)
		for msg := range messages {
			var payload dto.NoteChangedMessage
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				log.Error("sync", "failed to unmarshal note change message", map[string]interface{}{
					"error":      err.Error(),
					"message_id": msg.UUID,
				})
				msg.Ack()
				continue
			}
			msg.Ack()

			select {
			case s.updates <- toChange(payload):
			case <-ctx.Done():
				return
			}
		}
	}()

	return s, nil
}

func toChange(payload dto.NoteChangedMessage) Change {
	return Change{
		Kind: payload.Kind,
		Note: entity.Note{
			Id:         payload.NoteId,
			Name:       payload.Name,
			Content:    payload.Content,
			NotebookId: payload.NotebookId,
			OwnerId:    payload.OwnerId,
			CreatedAt:  payload.CreatedAt,
			UpdatedAt:  payload.UpdatedAt,
		},
	}
}

func (s *BusSource) Updates() <-chan Change {
	return s.updates
}

func (s *BusSource) Close() {
	s.cancel()
}
