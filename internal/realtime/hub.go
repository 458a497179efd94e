// Package realtime fans chat events out to websocket connections grouped in
// per-user rooms.
package realtime

import (
	"errors"
	"log/slog"
	"sync"
)

// ErrUnknownConn is returned when a membership change names a connection
// that is not registered.
var ErrUnknownConn = errors.New("unknown connection")

// Sender is the minimal interface the hub needs from a connection: queue an
// encoded frame for delivery, and release the connection.
type Sender interface {
	Send(frame []byte) error
	Close()
}

// Hub tracks live connections and which user room each one has joined. A
// connection belongs to at most one room at a time.
type Hub struct {
	mu      sync.RWMutex
	conns   map[string]Sender              // conn id -> connection
	members map[string]string              // conn id -> user id
	rooms   map[string]map[string]struct{} // user id -> conn ids
	log     *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		conns:   make(map[string]Sender),
		members: make(map[string]string),
		rooms:   make(map[string]map[string]struct{}),
		log:     log,
	}
}

// Register adds a connection in the unjoined state.
func (h *Hub) Register(id string, s Sender) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[id] = s
}

// Unregister removes a connection and its room membership.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, id)
	h.leaveLocked(id)
}

func (h *Hub) leaveLocked(id string) {
	userID, ok := h.members[id]
	if !ok {
		return
	}
	delete(h.members, id)
	if room, ok := h.rooms[userID]; ok {
		delete(room, id)
		if len(room) == 0 {
			delete(h.rooms, userID)
		}
	}
}

// Join puts the connection into userID's room, replacing any room it was in.
func (h *Hub) Join(id, userID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[id]; !ok {
		return ErrUnknownConn
	}
	h.leaveLocked(id)
	h.members[id] = userID
	room, ok := h.rooms[userID]
	if !ok {
		room = make(map[string]struct{})
		h.rooms[userID] = room
	}
	room[id] = struct{}{}
	return nil
}

// Leave removes the connection from userID's room. It reports whether the
// connection was a member of that room.
func (h *Hub) Leave(id, userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.members[id] != userID {
		return false
	}
	h.leaveLocked(id)
	return true
}

// Member returns the user whose room the connection has joined.
func (h *Hub) Member(id string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	userID, ok := h.members[id]
	return userID, ok
}

// RoomSize returns how many connections have joined userID's room.
func (h *Hub) RoomSize(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

// Count returns the number of registered connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast sends the event to every registered connection.
func (h *Hub) Broadcast(event string, payload any) {
	frame, err := Encode(event, 0, payload)
	if err != nil {
		h.log.Error("encode event", "event", event, "err", err)
		return
	}

	h.mu.RLock()
	targets := make(map[string]Sender, len(h.conns))
	for id, s := range h.conns {
		targets[id] = s
	}
	h.mu.RUnlock()

	h.deliver(event, frame, targets)
}

// EmitToRooms sends the event to the connections joined to any of the given
// user rooms. A connection receives the event once even if rooms repeat.
func (h *Hub) EmitToRooms(event string, payload any, rooms ...string) {
	frame, err := Encode(event, 0, payload)
	if err != nil {
		h.log.Error("encode event", "event", event, "err", err)
		return
	}

	h.mu.RLock()
	targets := make(map[string]Sender)
	for _, userID := range rooms {
		for id := range h.rooms[userID] {
			targets[id] = h.conns[id]
		}
	}
	h.mu.RUnlock()

	h.deliver(event, frame, targets)
}

// deliver is best-effort: a connection that cannot take the frame is dropped
// from the hub and closed, the rest still receive it.
func (h *Hub) deliver(event string, frame []byte, targets map[string]Sender) {
	var failed []string
	for id, s := range targets {
		if s == nil {
			continue
		}
		if err := s.Send(frame); err != nil {
			h.log.Warn("dropping connection", "conn", id, "event", event, "err", err)
			failed = append(failed, id)
		}
	}

	for _, id := range failed {
		h.mu.Lock()
		s := h.conns[id]
		delete(h.conns, id)
		h.leaveLocked(id)
		h.mu.Unlock()
		if s != nil {
			s.Close()
		}
	}
}

// Shutdown closes every connection and empties the hub.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[string]Sender)
	h.members = make(map[string]string)
	h.rooms = make(map[string]map[string]struct{})
	h.mu.Unlock()

	for _, s := range conns {
		s.Close()
	}
}
