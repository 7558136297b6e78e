package repository

import (
	"context"

	"github.com/dreamxec/backend/internal/model"
)

// ProjectRepository handles persistence for projects.
type ProjectRepository interface {
	// Create inserts the project and its milestones in one transaction.
	Create(ctx context.Context, p *model.Project, milestones []*model.Milestone) error
	GetByID(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context, status string, limit, offset int) ([]*model.Project, error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]*model.Project, error)
	// CountByOwnerAndStatus counts projects owned by ownerID in any of statuses.
	CountByOwnerAndStatus(ctx context.Context, ownerID string, statuses []string) (int, error)
	UpdateStatus(ctx context.Context, id, status string) error
	// DeleteLatestPendingByOwner removes the most recently created PENDING
	// project for an owner (the slot-guard rollback path). Returns the
	// deleted project ID.
	DeleteLatestPendingByOwner(ctx context.Context, ownerID string) (string, error)
	GetRating(ctx context.Context, id string) (float64, error)
	UpdateRating(ctx context.Context, id string, rating float64) error
}
