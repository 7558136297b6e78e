package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/dreamxec/backend/internal/model"
)

// Notifier publishes fan-out events. Publishing is fire-and-forget: failures
// are logged and never surfaced to the business operation that triggered them.
type Notifier interface {
	Publish(ctx context.Context, event, userID string, payload map[string]any)
}

// NotificationSink is the minimal persistence surface the notifier needs.
type NotificationSink interface {
	Insert(ctx context.Context, n *model.Notification) error
}

type repoNotifier struct {
	sink NotificationSink
}

// NewNotifier returns a Notifier backed by the notifications table.
func NewNotifier(sink NotificationSink) Notifier {
	return &repoNotifier{sink: sink}
}

func (n *repoNotifier) Publish(ctx context.Context, event, userID string, payload map[string]any) {
	var body string
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			slog.Warn("notify: marshal payload failed", "event", event, "error", err)
		} else {
			body = string(b)
		}
	}
	if err := n.sink.Insert(ctx, &model.Notification{
		Event:   event,
		UserID:  userID,
		Payload: body,
	}); err != nil {
		slog.Warn("notify: publish failed", "event", event, "user_id", userID, "error", err)
	}
}

// NopNotifier discards all events. Used in tests and when the notification
// table is not wired.
type NopNotifier struct{}

func (NopNotifier) Publish(ctx context.Context, event, userID string, payload map[string]any) {}
