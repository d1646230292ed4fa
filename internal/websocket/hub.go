package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"golden-notes-be/internal/dto"
	"golden-notes-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub fans note change pushes out to every live session of the owning user.
// With Redis configured it also relays changes across instances, so a save
// handled by one node still reaches sessions connected to another.
type Hub struct {
	// UserID -> connections (multi-device, multi-tab)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Optional cross-instance relay. Nil in single-node deployments.
	rdb *redis.Client

	// instanceID tags relayed payloads so this instance skips its own
	// echoes; local delivery already happened in SendNoteChange.
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// SendNoteChange delivers a note change to every local session of the owner
// and relays it through Redis for sessions attached to other instances.
func (h *Hub) SendNoteChange(ownerID uuid.UUID, change dto.NoteChangedMessage) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "note_change",
		"data": change,
	})

	h.sendLocal(ownerID, data)

	if h.rdb != nil {
		payload := map[string]interface{}{
			"origin":         h.instanceID,
			"target_user_id": ownerID.String(),
			"message":        json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

func (h *Hub) sendLocal(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			// Only the unregister path in Run closes Send; closing here too
			// would close the channel twice.
			h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{"user_id": userID})
			h.unregister <- client
		}
	}
}

// subscribeToRedis consumes the cross-instance relay channel. Every
// instance subscribes to the same channel and delivers only to the users it
// holds locally.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.handleRelay([]byte(msg.Payload))
	}
}

// handleRelay delivers one relayed payload to local sessions, ignoring
// payloads this instance published itself.
func (h *Hub) handleRelay(raw []byte) {
	var payload struct {
		Origin       string          `json:"origin"`
		TargetUserID string          `json:"target_user_id"`
		Message      json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Error("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
		return
	}

	if payload.Origin == h.instanceID {
		return
	}

	uid, err := uuid.Parse(payload.TargetUserID)
	if err != nil {
		return
	}

	h.sendLocal(uid, payload.Message)
}
