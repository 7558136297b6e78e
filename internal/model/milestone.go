package model

import "time"

// Milestone statuses. APPROVED is terminal; REJECTED returns the milestone
// to a resubmittable state at the same position.
const (
	MilestoneStatusPending   = "PENDING"
	MilestoneStatusSubmitted = "SUBMITTED"
	MilestoneStatusApproved  = "APPROVED"
	MilestoneStatusRejected  = "REJECTED"
)

// Milestone is one fund-release stage of a project. Position is 1-based and
// unique within the project; milestone N cannot be submitted until milestone
// N-1 is APPROVED.
type Milestone struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Position  int    `json:"position"`
	Title     string `json:"title"`
	Budget    int    `json:"budget"`
	Status    string `json:"status"`

	DueDate     *time.Time `json:"due_date,omitempty"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`

	// Reminder flags are monotonic within one deadline cycle; a resubmission
	// resets them so the new cycle gets fresh reminders.
	Reminder3Sent bool `json:"reminder3_sent"`
	Reminder1Sent bool `json:"reminder1_sent"`
	OverdueSent   bool `json:"overdue_sent"`

	// RatingPenaltyDays is a high-water mark of penalty days already applied
	// to the owning project's rating. It never resets, even on resubmission.
	RatingPenaltyDays int `json:"rating_penalty_days"`

	AdminFeedback string    `json:"admin_feedback,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Submissions []*MilestoneSubmission `json:"submissions,omitempty"`
}

// MilestoneSubmission is one piece of evidence submitted for a milestone.
// Submissions are append-only; a resubmission after rejection creates the
// next version rather than overwriting.
type MilestoneSubmission struct {
	ID          string    `json:"id"`
	MilestoneID string    `json:"milestone_id"`
	Version     int       `json:"version"`
	SubmittedBy string    `json:"submitted_by"`
	Note        string    `json:"note,omitempty"`
	EvidenceURL string    `json:"evidence_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SweepUpdate carries the per-milestone field changes computed by one sweep
// pass. All fields of one update are persisted atomically so a notification
// can never fire without its flag sticking.
type SweepUpdate struct {
	MilestoneID string
	ProjectID   string

	SetReminder3 bool
	SetReminder1 bool
	SetOverdue   bool

	RatingPenaltyDays *int
	NewRating         *float64
}

// Empty reports whether the update would change nothing.
func (u *SweepUpdate) Empty() bool {
	return !u.SetReminder3 && !u.SetReminder1 && !u.SetOverdue &&
		u.RatingPenaltyDays == nil && u.NewRating == nil
}
