package repository

import (
	"context"

	"github.com/dreamxec/backend/internal/model"
)

// NotificationRepository handles persistence for fan-out notifications.
type NotificationRepository interface {
	Insert(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Notification, error)
}
