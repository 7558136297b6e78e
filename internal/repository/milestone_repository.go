package repository

import (
	"context"
	"time"

	"github.com/dreamxec/backend/internal/model"
)

// MilestoneRepository handles persistence for milestones.
type MilestoneRepository interface {
	GetByID(ctx context.Context, id string) (*model.Milestone, error)
	GetByProjectAndPosition(ctx context.Context, projectID string, position int) (*model.Milestone, error)
	ListByProject(ctx context.Context, projectID string) ([]*model.Milestone, error)
	// Activate sets activated_at on the milestone at the given position if it
	// is not already activated.
	Activate(ctx context.Context, projectID string, position int, at time.Time) error
	// MarkSubmitted sets status=SUBMITTED, clears the reminder/overdue flags
	// and any admin feedback. RatingPenaltyDays is deliberately untouched.
	MarkSubmitted(ctx context.Context, id string) error
	// SetDecision records an admin decision (APPROVED or REJECTED) with
	// optional feedback.
	SetDecision(ctx context.Context, id, status, feedback string) error
	// ListDueForSweep returns PENDING milestones with activated_at and
	// due_date set, joined with their owning project ID.
	ListDueForSweep(ctx context.Context) ([]*model.Milestone, error)
	// ApplySweep persists one milestone's sweep changes (flags, penalty
	// high-water mark and project rating) in a single transaction.
	ApplySweep(ctx context.Context, u *model.SweepUpdate) error
}

// SubmissionRepository handles persistence for milestone submissions.
type SubmissionRepository interface {
	// Create inserts a submission with version = max existing version + 1,
	// computed inside the insert so concurrent submits cannot collide.
	Create(ctx context.Context, s *model.MilestoneSubmission) error
	ListByMilestone(ctx context.Context, milestoneID string) ([]*model.MilestoneSubmission, error)
	MaxVersion(ctx context.Context, milestoneID string) (int, error)
}
