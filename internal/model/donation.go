package model

import "time"

// Donation payment statuses. A donation is created once per payment attempt
// and transitions at most once to completed; only completed donations count
// toward project-creation eligibility.
const (
	PaymentStatusCreated   = "created"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Donation represents a single payment attempt against a project.
type Donation struct {
	ID               string     `json:"id"`
	ProjectID        string     `json:"project_id,omitempty"`
	DonorType        string     `json:"donor_type"` // "token" or "user"
	DonorID          string     `json:"donor_id"`
	Amount           int        `json:"amount"` // whole rupees
	Currency         string     `json:"currency"`
	PaymentStatus    string     `json:"payment_status"`
	GatewayOrderID   string     `json:"-"`
	GatewayPaymentID string     `json:"-"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// DonorRef identifies a donor: either a registered user ID or a guest donor
// token, never both. It is the join key for every eligibility computation.
type DonorRef struct {
	UserID     string
	DonorToken string
}

// DonorRefForUser returns a DonorRef for a registered user.
func DonorRefForUser(userID string) DonorRef {
	return DonorRef{UserID: userID}
}

// DonorRefForToken returns a DonorRef for a guest donor token.
func DonorRefForToken(token string) DonorRef {
	return DonorRef{DonorToken: token}
}

// Valid reports whether exactly one of UserID / DonorToken is set.
func (r DonorRef) Valid() bool {
	return (r.UserID != "") != (r.DonorToken != "")
}

// DonorType returns the donations.donor_type value for this ref.
func (r DonorRef) DonorType() string {
	if r.UserID != "" {
		return "user"
	}
	return "token"
}

// DonorID returns the donations.donor_id value for this ref.
func (r DonorRef) DonorID() string {
	if r.UserID != "" {
		return r.UserID
	}
	return r.DonorToken
}

// Eligibility is the derived project-slot quota for a donor. It is computed
// on demand and never stored.
type Eligibility struct {
	TotalDonated   int  `json:"total_donated"`
	AllowedSlots   int  `json:"allowed_slots"`
	UsedSlots      int  `json:"used_slots"`
	RemainingSlots int  `json:"remaining_slots"`
	CanCreate      bool `json:"can_create"`
	PerSlotCost    int  `json:"per_slot_cost"`
}
