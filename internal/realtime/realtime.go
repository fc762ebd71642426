// Package realtime is the live-transport layer: an emitter abstraction the
// notification dispatcher pushes through, an in-process hub of per-user rooms
// for clients connected to this instance, and a broker emitter that relays
// events across instances over AMQP. The emitter is injected, never a process
// global, so tests run against doubles and multiple isolated instances can
// coexist.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"fintrack/internal/log"
)

// Emitter delivers a named event to every active connection of a user.
// Delivery is best-effort: an emit failure must never roll back the state
// change that triggered it.
type Emitter interface {
	Emit(ctx context.Context, userID, event string, payload any) error
}

// Event is what a subscribed connection receives.
type Event struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Hub tracks connections on this process, one room per authenticated user.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[chan Event]struct{})}
}

// Join registers a connection in the user's room and returns its event
// channel plus a leave function. The channel is buffered; events are dropped
// rather than blocking a slow consumer.
func (h *Hub) Join(userID string) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	room, ok := h.rooms[userID]
	if !ok {
		room = make(map[chan Event]struct{})
		h.rooms[userID] = room
	}
	room[ch] = struct{}{}
	h.mu.Unlock()

	leave := func() {
		h.mu.Lock()
		if room, ok := h.rooms[userID]; ok {
			delete(room, ch)
			if len(room) == 0 {
				delete(h.rooms, userID)
			}
		}
		h.mu.Unlock()
		close(ch)
	}
	return ch, leave
}

// Emit sends the event to every connection in the user's room. Sends to full
// channels are dropped.
func (h *Hub) Emit(ctx context.Context, userID, event string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	ev := Event{Event: event, Payload: body}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.rooms[userID] {
		select {
		case ch <- ev:
		default:
			slog.DebugContext(ctx, "Dropped event for slow consumer",
				log.FieldUserID, userID, log.FieldEvent, event)
		}
	}
	return nil
}

// Connections reports how many connections the user currently has.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

// EventPublisher is the slice of the AMQP client the broker emitter needs.
type EventPublisher interface {
	PublishEvent(ctx context.Context, userID, event string, payload json.RawMessage) error
}

// Broker relays events to other instances through the topic exchange.
type Broker struct {
	pub EventPublisher
}

func NewBroker(pub EventPublisher) *Broker {
	return &Broker{pub: pub}
}

func (b *Broker) Emit(ctx context.Context, userID, event string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return b.pub.PublishEvent(ctx, userID, event, body)
}
