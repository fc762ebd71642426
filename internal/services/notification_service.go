package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/realtime"
)

// NotificationService keeps a per-user notification log in the cache, capped
// at core.MaxNotifications entries newest first, and pushes each new entry to
// live listeners. The log has no store of record behind it. A mutex
// serializes the read-modify-write of the list so in-process sends never lose
// entries to each other.
type NotificationService struct {
	cache   cache.Store
	emitter realtime.Emitter

	mu sync.Mutex
}

func NewNotificationService(c cache.Store, emitter realtime.Emitter) *NotificationService {
	return &NotificationService{cache: c, emitter: emitter}
}

// Send prepends the notification to the user's log, truncates to capacity and
// persists the whole list before emitting it live. Live delivery is
// best-effort; a failed emit never rolls back the persisted entry.
func (s *NotificationService) Send(ctx context.Context, userID string, n core.Notification) (core.Notification, error) {
	if userID == "" {
		return core.Notification{}, core.ErrMissingUser
	}

	n.ID = uuid.NewString()
	n.Timestamp = time.Now()
	n.Read = false

	s.mu.Lock()
	entries := s.load(ctx, userID)
	entries = append([]core.Notification{n}, entries...)
	if len(entries) > core.MaxNotifications {
		entries = entries[:core.MaxNotifications]
	}
	err := s.persist(ctx, userID, entries)
	s.mu.Unlock()
	if err != nil {
		return core.Notification{}, err
	}

	if s.emitter != nil {
		if err := s.emitter.Emit(ctx, userID, notificationEvent, n); err != nil {
			slog.WarnContext(ctx, "Live notification delivery failed",
				log.FieldUserID, userID,
				"notification_id", n.ID,
				log.FieldError, err,
			)
		}
	}

	slog.InfoContext(ctx, "Notification sent",
		log.FieldUserID, userID,
		"notification_type", n.Type,
		"severity", n.Severity,
	)
	return n, nil
}

// List returns the user's notification log, newest first. An absent log is an
// empty list, not an error.
func (s *NotificationService) List(ctx context.Context, userID string) ([]core.Notification, error) {
	if userID == "" {
		return nil, core.ErrMissingUser
	}
	return s.load(ctx, userID), nil
}

// MarkAsRead flips the read flag on the matching entry and persists the list.
// An absent id is a no-op.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id string) error {
	if userID == "" {
		return core.ErrMissingUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.load(ctx, userID)
	changed := false
	for i := range log {
		if log[i].ID == id {
			log[i].Read = true
			changed = true
			break
		}
	}
	if !changed {
		return nil
	}
	return s.persist(ctx, userID, log)
}

// SendBudgetAlert notifies that a budget crossed an alert threshold.
func (s *NotificationService) SendBudgetAlert(ctx context.Context, userID, budgetID, category string, percentageUsed float64) error {
	_, err := s.Send(ctx, userID, budgetAlert(budgetID, category, percentageUsed))
	return err
}

// SendPaymentReminder notifies that a recurring transaction comes due.
func (s *NotificationService) SendPaymentReminder(ctx context.Context, userID string, t core.Transaction) error {
	_, err := s.Send(ctx, userID, paymentReminder(t))
	return err
}

// SendSavingsGoalUpdate reports progress toward a named savings goal.
func (s *NotificationService) SendSavingsGoalUpdate(ctx context.Context, userID, goalName string, progress float64) error {
	_, err := s.Send(ctx, userID, savingsGoalUpdate(goalName, progress))
	return err
}

// SendUnusualActivity flags a transaction well outside the user's usual
// spending pattern.
func (s *NotificationService) SendUnusualActivity(ctx context.Context, userID string, t core.Transaction) error {
	_, err := s.Send(ctx, userID, unusualActivity(t))
	return err
}

func budgetAlert(budgetID, category string, percentageUsed float64) core.Notification {
	severity := core.SeverityMedium
	if percentageUsed > 90 {
		severity = core.SeverityHigh
	}
	return core.Notification{
		Type:     core.NotifyBudgetAlert,
		Title:    "Budget Alert",
		Message:  fmt.Sprintf("You've used %.1f%% of your %s budget", percentageUsed, category),
		Severity: severity,
		Data: map[string]any{
			"budgetId":       budgetID,
			"category":       category,
			"percentageUsed": core.Round2(percentageUsed),
		},
	}
}

func paymentReminder(t core.Transaction) core.Notification {
	return core.Notification{
		Type:     core.NotifyPaymentReminder,
		Title:    "Upcoming Payment",
		Message:  fmt.Sprintf("Reminder: %s (%s) is due soon", t.Description, t.Amount),
		Severity: core.SeverityLow,
		Data: map[string]any{
			"transactionId": t.ID,
			"amount":        t.Amount,
			"categoryId":    t.CategoryID,
		},
	}
}

func savingsGoalUpdate(goalName string, progress float64) core.Notification {
	return core.Notification{
		Type:     core.NotifySavingsGoal,
		Title:    "Savings Goal Update",
		Message:  fmt.Sprintf("You're %.1f%% of the way to your %s goal", progress, goalName),
		Severity: core.SeverityInfo,
		Data: map[string]any{
			"goalName": goalName,
			"progress": core.Round2(progress),
		},
	}
}

func unusualActivity(t core.Transaction) core.Notification {
	return core.Notification{
		Type:     core.NotifyUnusualActivity,
		Title:    "Unusual Activity Detected",
		Message:  fmt.Sprintf("Unusually large transaction: %s for %s", t.Description, t.Amount),
		Severity: core.SeverityHigh,
		Data: map[string]any{
			"transactionId": t.ID,
			"amount":        t.Amount,
			"categoryId":    t.CategoryID,
		},
	}
}

func (s *NotificationService) load(ctx context.Context, userID string) []core.Notification {
	raw, ok := s.cache.Get(ctx, notificationsKey(userID))
	if !ok {
		return []core.Notification{}
	}
	var entries []core.Notification
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		slog.WarnContext(ctx, "Discarding corrupt notification log", log.FieldUserID, userID)
		return []core.Notification{}
	}
	return entries
}

func (s *NotificationService) persist(ctx context.Context, userID string, log []core.Notification) error {
	raw, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("serialize notification log: %w", err)
	}
	// No TTL: the log is bounded by length, not by time.
	s.cache.Set(ctx, notificationsKey(userID), string(raw), 0)
	return nil
}
