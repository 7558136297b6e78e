package repository

import (
	"context"

	"github.com/dreamxec/backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgNotificationRepository struct {
	pool *pgxpool.Pool
}

// NewPgNotificationRepository returns a PostgreSQL-backed NotificationRepository.
func NewPgNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &pgNotificationRepository{pool: pool}
}

func (r *pgNotificationRepository) Insert(ctx context.Context, n *model.Notification) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO notifications (event, user_id, payload)
		 VALUES ($1, NULLIF($2,'')::uuid, NULLIF($3,'')::jsonb)
		 RETURNING id, created_at`,
		n.Event, n.UserID, n.Payload,
	).Scan(&n.ID, &n.CreatedAt)
}

func (r *pgNotificationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Notification, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, event, COALESCE(user_id::text, ''), COALESCE(payload::text, ''), created_at
		 FROM notifications
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*model.Notification
	for rows.Next() {
		n := &model.Notification{}
		if err := rows.Scan(&n.ID, &n.Event, &n.UserID, &n.Payload, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}
