package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// DueRecurringStore is the slice of the record store the recurring processor
// needs: cross-user due scanning plus per-transaction updates.
type DueRecurringStore interface {
	ListDueRecurring(ctx context.Context, now time.Time) ([]core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
}

// PaymentReminderSender is the notification hook a due transaction fires.
type PaymentReminderSender interface {
	SendPaymentReminder(ctx context.Context, userID string, t core.Transaction) error
}

// RecurringProcessor walks active recurring transactions whose next due date
// has arrived, sends a payment reminder and rolls the schedule forward. A
// failed reminder leaves the due date in place so the next sweep retries it.
type RecurringProcessor struct {
	store    DueRecurringStore
	reminder PaymentReminderSender
}

func NewRecurringProcessor(store DueRecurringStore, reminder PaymentReminderSender) *RecurringProcessor {
	return &RecurringProcessor{store: store, reminder: reminder}
}

// ProcessDue sweeps all users' due recurring transactions once. It returns
// how many were processed; per-transaction failures are logged and skipped.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	due, err := p.store.ListDueRecurring(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list due recurring transactions: %w", err)
	}

	slog.InfoContext(ctx, "Processing due recurring transactions",
		"total_due", len(due),
		"processing_date", now.Format("2006-01-02"),
	)

	processed := 0
	for _, t := range due {
		if err := p.reminder.SendPaymentReminder(ctx, t.UserID, t); err != nil {
			slog.ErrorContext(ctx, "Failed to send payment reminder",
				log.FieldUserID, t.UserID,
				"transaction_id", t.ID,
				log.FieldError, err,
			)
			continue
		}

		t.NextDueDate = NextOccurrence(t.RecurringFrequency, t.NextDueDate)
		if _, err := p.store.UpdateTransaction(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to roll recurring schedule forward",
				log.FieldUserID, t.UserID,
				"transaction_id", t.ID,
				log.FieldError, err,
			)
			continue
		}
		processed++
	}

	slog.InfoContext(ctx, "Recurring sweep complete",
		"processed", processed,
		"total_checked", len(due),
	)
	return processed, nil
}

// Run sweeps on the given interval until the context is cancelled. One sweep
// runs immediately on start.
func (p *RecurringProcessor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := p.ProcessDue(ctx, time.Now()); err != nil {
			slog.ErrorContext(ctx, "Recurring sweep failed", log.FieldError, err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// NextOccurrence advances a due date by one period of the given frequency.
// Month-based frequencies clamp to the last day of the target month rather
// than overflowing into the next one (Jan 31 monthly lands on Feb 28/29).
func NextOccurrence(freq core.Frequency, from time.Time) time.Time {
	switch freq {
	case core.Daily:
		return from.AddDate(0, 0, 1)
	case core.Weekly:
		return from.AddDate(0, 0, 7)
	case core.Monthly:
		return addMonthsClamped(from, 1)
	case core.Quarterly:
		return addMonthsClamped(from, 3)
	case core.Yearly:
		return addMonthsClamped(from, 12)
	default:
		return from
	}
}

func addMonthsClamped(from time.Time, months int) time.Time {
	year, month, day := from.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, from.Location())
	target := first.AddDate(0, months, 0)

	lastDay := target.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	hour, min, sec := from.Clock()
	return time.Date(target.Year(), target.Month(), day, hour, min, sec, from.Nanosecond(), from.Location())
}
