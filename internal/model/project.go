package model

import "time"

// Project statuses. PENDING and APPROVED projects consume a donor slot;
// rejecting a project frees its slot immediately.
const (
	ProjectStatusPending  = "PENDING"
	ProjectStatusApproved = "APPROVED"
	ProjectStatusRejected = "REJECTED"
)

// MaxRatingDefault is the rating a freshly created project starts with.
const MaxRatingDefault = 5.0

type Project struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	GoalAmount  int       `json:"goal_amount"`
	Status      string    `json:"status"`
	Rating      float64   `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Transient: populated by handlers when requested, not stored on the row.
	Milestones []*Milestone `json:"milestones,omitempty"`
}
