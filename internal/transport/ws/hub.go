package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campusarena/campus-arena-api/internal/domain"
	"github.com/campusarena/campus-arena-api/internal/repository/ports"
)

// presenceTTL must outlive the ping interval so an active client never
// flickers offline between heartbeats.
const presenceTTL = 90 * time.Second

type outbound struct {
	userIDs []uuid.UUID
	payload []byte
}

// Hub tracks connected clients and fans targeted payloads out to them. One
// user may hold several connections (multiple tabs or devices); each gets
// its own Client.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	send       chan outbound

	presence ports.PresenceStore
	mu       sync.RWMutex
}

func NewHub(presence ports.PresenceStore) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		send:       make(chan outbound, 64),
		presence:   presence,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.markOnline(client.UserID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.sendCh)
			}
			stillConnected := h.hasUserLocked(client.UserID)
			h.mu.Unlock()
			if !stillConnected {
				h.markOffline(client.UserID)
			}

		case out := <-h.send:
			h.mu.Lock()
			for client := range h.clients {
				if !containsUser(out.userIDs, client.UserID) {
					continue
				}
				select {
				case client.sendCh <- out.payload:
				default:
					// Stalled writer; drop the connection rather than block
					// the fan-out.
					close(client.sendCh)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// MessageCreated implements service.MessageNotifier. Delivery is best
// effort: the message is already persisted, so a slow client just misses
// the push and catches up from history.
func (h *Hub) MessageCreated(memberIDs []uuid.UUID, message *domain.Message) {
	payload, err := json.Marshal(map[string]any{
		"type": "message",
		"data": message,
	})
	if err != nil {
		log.Printf("marshal ws message: %v", err)
		return
	}
	select {
	case h.send <- outbound{userIDs: memberIDs, payload: payload}:
	default:
		log.Printf("ws send queue full, dropping message %s", message.ID)
	}
}

func (h *Hub) hasUserLocked(userID uuid.UUID) bool {
	for client := range h.clients {
		if client.UserID == userID {
			return true
		}
	}
	return false
}

func (h *Hub) markOnline(userID uuid.UUID) {
	if h.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.presence.SetOnline(ctx, userID, presenceTTL); err != nil {
		log.Printf("set presence online: %v", err)
	}
}

func (h *Hub) markOffline(userID uuid.UUID) {
	if h.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.presence.SetOffline(ctx, userID); err != nil {
		log.Printf("set presence offline: %v", err)
	}
}

func containsUser(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
