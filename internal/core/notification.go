package core

import "time"

const (
	NotifyBudgetAlert     NotificationType = "budget_alert"
	NotifyPaymentReminder NotificationType = "payment_reminder"
	NotifySavingsGoal     NotificationType = "savings_goal"
	NotifyUnusualActivity NotificationType = "unusual_activity"
	NotifySystem          NotificationType = "system"
)

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
	SeverityInfo     Severity = "info"
)

type (
	NotificationType string
	Severity         string

	// Notification lives only in the ephemeral cache: a per-user list capped at
	// MaxNotifications entries, newest first. There is no durable store of record.
	Notification struct {
		ID        string           `json:"id"`
		Type      NotificationType `json:"type"`
		Title     string           `json:"title"`
		Message   string           `json:"message"`
		Severity  Severity         `json:"severity"`
		Data      map[string]any   `json:"data,omitempty"`
		Timestamp time.Time        `json:"timestamp"`
		Read      bool             `json:"read"`
	}
)

// MaxNotifications bounds the per-user notification log; the oldest entry is
// evicted first.
const MaxNotifications = 50
