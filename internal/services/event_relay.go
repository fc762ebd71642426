package services

import (
	"context"
	"encoding/json"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/realtime"
)

// notificationEvent is the event name carrying a full core.Notification as
// payload, both to SSE clients and across processes on the event exchange.
const notificationEvent = "notification"

// RemoteNotifier delivers notifications produced outside the API process. It
// never writes the log itself; it publishes the built notification on the
// event exchange and the API process appends it on receipt (HandleEvent), so
// the log has a single writer.
type RemoteNotifier struct {
	emitter realtime.Emitter
}

func NewRemoteNotifier(emitter realtime.Emitter) *RemoteNotifier {
	return &RemoteNotifier{emitter: emitter}
}

// SendPaymentReminder publishes a payment reminder for a due recurring
// transaction.
func (r *RemoteNotifier) SendPaymentReminder(ctx context.Context, userID string, t core.Transaction) error {
	return r.emitter.Emit(ctx, userID, notificationEvent, paymentReminder(t))
}

// HandleEvent applies an event arriving from the shared exchange. A
// notification event goes through Send, which appends it to the user's log
// and re-emits it to local listeners. Anything else is forwarded to live
// listeners as-is.
func (s *NotificationService) HandleEvent(ctx context.Context, userID, event string, payload json.RawMessage) error {
	if event != notificationEvent {
		if s.emitter == nil {
			return nil
		}
		return s.emitter.Emit(ctx, userID, event, payload)
	}

	var n core.Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return fmt.Errorf("decode notification event: %w", err)
	}
	_, err := s.Send(ctx, userID, n)
	return err
}
