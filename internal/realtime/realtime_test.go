package realtime

import (
	"context"
	"encoding/json"
	"testing"
)

func TestHub_JoinEmitLeave(t *testing.T) {
	h := NewHub()
	ctx := context.Background()

	ch, leave := h.Join("u1")
	if h.Connections("u1") != 1 {
		t.Fatalf("Connections = %d, want 1", h.Connections("u1"))
	}

	if err := h.Emit(ctx, "u1", "notification", map[string]string{"hello": "world"}); err != nil {
		t.Fatalf("Emit() = %v", err)
	}

	ev := <-ch
	if ev.Event != "notification" {
		t.Errorf("event = %q, want notification", ev.Event)
	}
	var payload map[string]string
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["hello"] != "world" {
		t.Errorf("payload = %v", payload)
	}

	leave()
	if h.Connections("u1") != 0 {
		t.Errorf("Connections after leave = %d, want 0", h.Connections("u1"))
	}
}

func TestHub_EmitToOtherUserOnly(t *testing.T) {
	h := NewHub()
	ctx := context.Background()

	ch1, leave1 := h.Join("u1")
	defer leave1()
	_, leave2 := h.Join("u2")
	defer leave2()

	if err := h.Emit(ctx, "u2", "notification", "x"); err != nil {
		t.Fatalf("Emit() = %v", err)
	}

	select {
	case ev := <-ch1:
		t.Errorf("u1 received u2's event: %+v", ev)
	default:
	}
}

func TestHub_EmitWithoutListeners(t *testing.T) {
	h := NewHub()
	if err := h.Emit(context.Background(), "nobody", "notification", "x"); err != nil {
		t.Errorf("Emit to empty room should not error, got %v", err)
	}
}

func TestHub_SlowConsumerDoesNotBlock(t *testing.T) {
	h := NewHub()
	ctx := context.Background()

	_, leave := h.Join("u1")
	defer leave()

	// Overfill the buffered channel; Emit must never block.
	for i := 0; i < 100; i++ {
		if err := h.Emit(ctx, "u1", "notification", i); err != nil {
			t.Fatalf("Emit() = %v", err)
		}
	}
}

type stubPublisher struct {
	userID, event string
	payload       json.RawMessage
	err           error
}

func (s *stubPublisher) PublishEvent(_ context.Context, userID, event string, payload json.RawMessage) error {
	s.userID, s.event, s.payload = userID, event, payload
	return s.err
}

func TestBroker_Emit(t *testing.T) {
	pub := &stubPublisher{}
	b := NewBroker(pub)

	if err := b.Emit(context.Background(), "u1", "notification", map[string]int{"n": 1}); err != nil {
		t.Fatalf("Emit() = %v", err)
	}
	if pub.userID != "u1" || pub.event != "notification" {
		t.Errorf("published to %q/%q", pub.userID, pub.event)
	}
}

