package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

func TestNotificationSendPrependsNewestFirst(t *testing.T) {
	svc := NewNotificationService(cache.NewMemory(100), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Send(ctx, "u1", core.Notification{
			Type:    core.NotifySystem,
			Title:   "T",
			Message: fmt.Sprintf("message %d", i),
		})
		if err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	}

	log, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(log) != 3 {
		t.Fatalf("len(List()) = %d, want 3", len(log))
	}
	if log[0].Message != "message 2" {
		t.Errorf("log[0].Message = %q, want newest first", log[0].Message)
	}
	if log[0].Read {
		t.Error("new notification has read = true, want false")
	}
	if log[0].ID == "" {
		t.Error("notification ID not assigned")
	}
}

func TestNotificationLogCapped(t *testing.T) {
	svc := NewNotificationService(cache.NewMemory(100), nil)
	ctx := context.Background()

	for i := 0; i < core.MaxNotifications+10; i++ {
		_, err := svc.Send(ctx, "u1", core.Notification{
			Type:    core.NotifySystem,
			Message: fmt.Sprintf("message %d", i),
		})
		if err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	}

	log, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(log) != core.MaxNotifications {
		t.Fatalf("len(List()) = %d, want %d", len(log), core.MaxNotifications)
	}
	// Oldest entries were dropped.
	if log[len(log)-1].Message != "message 10" {
		t.Errorf("oldest kept = %q, want %q", log[len(log)-1].Message, "message 10")
	}
}

func TestNotificationMarkAsRead(t *testing.T) {
	svc := NewNotificationService(cache.NewMemory(100), nil)
	ctx := context.Background()

	sent, err := svc.Send(ctx, "u1", core.Notification{Type: core.NotifySystem, Message: "hello"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if err := svc.MarkAsRead(ctx, "u1", sent.ID); err != nil {
		t.Fatalf("MarkAsRead() error = %v", err)
	}
	log, _ := svc.List(ctx, "u1")
	if !log[0].Read {
		t.Error("Read = false after MarkAsRead")
	}

	// Absent id is a no-op, not an error.
	if err := svc.MarkAsRead(ctx, "u1", "missing"); err != nil {
		t.Errorf("MarkAsRead(missing) error = %v, want nil", err)
	}
}

func TestNotificationEmitsLive(t *testing.T) {
	emitter := &stubEmitter{}
	svc := NewNotificationService(cache.NewMemory(100), emitter)

	if _, err := svc.Send(context.Background(), "u1", core.Notification{Type: core.NotifySystem, Message: "hi"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(emitter.events) != 1 || emitter.events[0] != "u1:notification" {
		t.Errorf("emitted = %v, want [u1:notification]", emitter.events)
	}
}

func TestNotificationEmitFailureDoesNotRollBack(t *testing.T) {
	svc := NewNotificationService(cache.NewMemory(100), &stubEmitter{failed: true})

	if _, err := svc.Send(context.Background(), "u1", core.Notification{Type: core.NotifySystem, Message: "hi"}); err != nil {
		t.Fatalf("Send() error = %v, want nil despite emit failure", err)
	}
	log, _ := svc.List(context.Background(), "u1")
	if len(log) != 1 {
		t.Errorf("len(List()) = %d, want 1 (persisted entry survives failed emit)", len(log))
	}
}

func TestBudgetAlertSeverity(t *testing.T) {
	tests := []struct {
		pct  float64
		want core.Severity
	}{
		{85, core.SeverityMedium},
		{90, core.SeverityMedium},
		{90.1, core.SeverityHigh},
		{120, core.SeverityHigh},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("pct=%v", tt.pct), func(t *testing.T) {
			svc := NewNotificationService(cache.NewMemory(100), nil)
			if err := svc.SendBudgetAlert(context.Background(), "u1", "b1", "cat-food", tt.pct); err != nil {
				t.Fatalf("SendBudgetAlert() error = %v", err)
			}
			log, _ := svc.List(context.Background(), "u1")
			if log[0].Severity != tt.want {
				t.Errorf("Severity = %q, want %q", log[0].Severity, tt.want)
			}
			if !strings.Contains(log[0].Message, "cat-food") {
				t.Errorf("Message = %q, want category named", log[0].Message)
			}
		})
	}
}

func TestConstructorSeverities(t *testing.T) {
	svc := NewNotificationService(cache.NewMemory(100), nil)
	ctx := context.Background()

	tx := core.Transaction{ID: "t1", Description: "Netflix", Amount: core.Money{Cents: 1299}, CategoryID: "cat-fun"}
	if err := svc.SendPaymentReminder(ctx, "u1", tx); err != nil {
		t.Fatalf("SendPaymentReminder() error = %v", err)
	}
	if err := svc.SendUnusualActivity(ctx, "u1", tx); err != nil {
		t.Fatalf("SendUnusualActivity() error = %v", err)
	}
	if err := svc.SendSavingsGoalUpdate(ctx, "u1", "vacation", 42.5); err != nil {
		t.Fatalf("SendSavingsGoalUpdate() error = %v", err)
	}

	log, _ := svc.List(ctx, "u1")
	bySeverity := map[core.NotificationType]core.Severity{}
	for _, n := range log {
		bySeverity[n.Type] = n.Severity
	}
	if bySeverity[core.NotifyPaymentReminder] != core.SeverityLow {
		t.Errorf("payment reminder severity = %q, want low", bySeverity[core.NotifyPaymentReminder])
	}
	if bySeverity[core.NotifyUnusualActivity] != core.SeverityHigh {
		t.Errorf("unusual activity severity = %q, want high", bySeverity[core.NotifyUnusualActivity])
	}
	if bySeverity[core.NotifySavingsGoal] != core.SeverityInfo {
		t.Errorf("savings goal severity = %q, want info", bySeverity[core.NotifySavingsGoal])
	}
}
