package model

import "time"

// Notification event types published by the core services.
const (
	EventDonationCompleted  = "donation.completed"
	EventProjectDecided     = "project.decided"
	EventMilestoneSubmitted = "milestone.submitted"
	EventMilestoneDecided   = "milestone.decided"
	EventMilestoneReminder3 = "milestone.reminder_3day"
	EventMilestoneReminder1 = "milestone.reminder_1day"
	EventMilestoneOverdue   = "milestone.overdue"
)

// Notification is a persisted fan-out event. Delivery (email, in-app feed)
// is handled by consumers outside this core.
type Notification struct {
	ID        string    `json:"id"`
	Event     string    `json:"event"`
	UserID    string    `json:"user_id,omitempty"`
	Payload   string    `json:"payload,omitempty"` // JSON
	CreatedAt time.Time `json:"created_at"`
}
