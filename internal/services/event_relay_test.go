package services

import (
	"context"
	"encoding/json"
	"testing"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

// recordingEmitter keeps the full emissions, payloads included.
type recordingEmitter struct {
	userIDs  []string
	events   []string
	payloads []any
}

func (r *recordingEmitter) Emit(_ context.Context, userID, event string, payload any) error {
	r.userIDs = append(r.userIDs, userID)
	r.events = append(r.events, event)
	r.payloads = append(r.payloads, payload)
	return nil
}

func TestRemoteNotifierPublishesReminder(t *testing.T) {
	emitter := &recordingEmitter{}
	notifier := NewRemoteNotifier(emitter)

	tx := core.Transaction{
		ID:          "tx-1",
		Description: "Rent",
		Amount:      core.Money{Cents: 90000},
		CategoryID:  "cat-housing",
	}
	if err := notifier.SendPaymentReminder(context.Background(), "u1", tx); err != nil {
		t.Fatalf("SendPaymentReminder() error = %v", err)
	}

	if len(emitter.events) != 1 || emitter.events[0] != "notification" || emitter.userIDs[0] != "u1" {
		t.Fatalf("emissions = %v for %v, want one notification for u1", emitter.events, emitter.userIDs)
	}
	n, ok := emitter.payloads[0].(core.Notification)
	if !ok {
		t.Fatalf("payload type = %T, want core.Notification", emitter.payloads[0])
	}
	if n.Type != core.NotifyPaymentReminder || n.Severity != core.SeverityLow {
		t.Errorf("Type = %q, Severity = %q, want payment_reminder/low", n.Type, n.Severity)
	}
}

func TestHandleEventAppendsNotificationAndEmitsLocally(t *testing.T) {
	ctx := context.Background()
	emitter := &stubEmitter{}
	svc := NewNotificationService(cache.NewMemory(100), emitter)

	payload, err := json.Marshal(paymentReminder(core.Transaction{
		ID:          "tx-9",
		Description: "Gym",
		Amount:      core.Money{Cents: 4500},
		CategoryID:  "cat-healthcare",
	}))
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	if err := svc.HandleEvent(ctx, "u1", "notification", payload); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	log, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(log) != 1 {
		t.Fatalf("len(log) = %d, want 1", len(log))
	}
	if log[0].Type != core.NotifyPaymentReminder || log[0].ID == "" {
		t.Errorf("log[0] = %+v, want payment reminder with assigned id", log[0])
	}
	if len(emitter.events) != 1 || emitter.events[0] != "u1:notification" {
		t.Errorf("emitter.events = %v, want [u1:notification]", emitter.events)
	}
}

func TestHandleEventForwardsOtherEvents(t *testing.T) {
	ctx := context.Background()
	emitter := &stubEmitter{}
	svc := NewNotificationService(cache.NewMemory(100), emitter)

	if err := svc.HandleEvent(ctx, "u1", "report_ready", json.RawMessage(`{"year":2026}`)); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	log, _ := svc.List(ctx, "u1")
	if len(log) != 0 {
		t.Errorf("len(log) = %d, want 0 for a non-notification event", len(log))
	}
	if len(emitter.events) != 1 || emitter.events[0] != "u1:report_ready" {
		t.Errorf("emitter.events = %v, want [u1:report_ready]", emitter.events)
	}
}

func TestHandleEventRejectsBadPayload(t *testing.T) {
	svc := NewNotificationService(cache.NewMemory(100), &stubEmitter{})

	err := svc.HandleEvent(context.Background(), "u1", "notification", json.RawMessage(`not json`))
	if err == nil {
		t.Fatal("HandleEvent() error = nil, want decode failure")
	}
	log, _ := svc.List(context.Background(), "u1")
	if len(log) != 0 {
		t.Errorf("len(log) = %d, want 0 after rejected payload", len(log))
	}
}
