package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"finanzas/internal/amqp"
	applog "finanzas/internal/log"
)

// NotificationWorker consumes goal alert messages and emits notifications.
// The queue redelivers on reconnect, so recently seen alerts are dropped
// instead of notifying twice.
type NotificationWorker struct {
	logger       *applog.StructuredLogger
	dedupeWindow time.Duration

	mu   sync.Mutex
	seen map[string]time.Time
}

func NewNotificationWorker(logger *applog.StructuredLogger, dedupeWindow time.Duration) *NotificationWorker {
	if dedupeWindow <= 0 {
		dedupeWindow = time.Hour
	}
	return &NotificationWorker{
		logger:       logger,
		dedupeWindow: dedupeWindow,
		seen:         make(map[string]time.Time),
	}
}

// HandleAlert processes a single goal alert message from the queue
func (w *NotificationWorker) HandleAlert(msg *amqp.GoalAlertMessage) error {
	if msg == nil {
		return fmt.Errorf("nil alert message")
	}
	if msg.GoalID <= 0 || msg.Message == "" {
		return fmt.Errorf("malformed alert message: goal_id=%d", msg.GoalID)
	}

	if w.isDuplicate(msg) {
		slog.Info("Skipping duplicate goal alert",
			"goal_id", msg.GoalID,
			"level", msg.Level)
		return nil
	}

	w.logger.LogGoalAlert(context.Background(), msg.GoalID, msg.Level, msg.Message)
	return nil
}

// isDuplicate reports whether the same alert was already delivered within
// the window. The key includes the message text: one refresh may fire a
// transition alert and a threshold alert for the same goal at the same
// level, and both must get through.
func (w *NotificationWorker) isDuplicate(msg *amqp.GoalAlertMessage) bool {
	key := fmt.Sprintf("%d:%s:%s", msg.GoalID, msg.Level, msg.Message)
	now := time.Now()

	w.mu.Lock()
	defer w.mu.Unlock()

	if last, ok := w.seen[key]; ok && now.Sub(last) < w.dedupeWindow {
		return true
	}

	w.seen[key] = now

	// Drop stale entries so the map does not grow unbounded
	for k, ts := range w.seen {
		if now.Sub(ts) >= w.dedupeWindow {
			delete(w.seen, k)
		}
	}
	return false
}
