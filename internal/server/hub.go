package server

import (
	"sync"

	"parley/internal/protocol"
)

// RoomHub tracks subscriber channels per room and delivers envelopes.
// Every connection is also subscribed to its private identity-room (named
// by its connection id), which makes it individually addressable.
type RoomHub struct {
	mu    sync.RWMutex
	rooms map[string]map[string]chan protocol.Envelope
}

// NewRoomHub initializes an empty hub.
func NewRoomHub() *RoomHub {
	return &RoomHub{
		rooms: make(map[string]map[string]chan protocol.Envelope),
	}
}

// Register registers a subscriber channel for the provided room.
func (h *RoomHub) Register(room string, connID string, ch chan protocol.Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[string]chan protocol.Envelope)
	}
	h.rooms[room][connID] = ch
}

// Unregister removes the subscriber from the room if present. Empty
// subscriber maps are pruned; the room descriptor itself lives in the
// directory and is unaffected.
func (h *RoomHub) Unregister(room string, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subscribers, ok := h.rooms[room]; ok {
		delete(subscribers, connID)
		if len(subscribers) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Broadcast pushes the envelope to the membership snapshot of the room at
// dispatch time. Slow consumers are dropped rather than blocking the hub.
func (h *RoomHub) Broadcast(room string, env protocol.Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.rooms[room] {
		select {
		case ch <- env:
		default:
		}
	}
}

// Unicast delivers an envelope to a single connection through its private
// identity-room.
func (h *RoomHub) Unicast(connID string, env protocol.Envelope) {
	h.Broadcast(connID, env)
}
