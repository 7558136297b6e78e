package repository

import (
	"context"

	"github.com/dreamxec/backend/internal/model"
)

// DonationRepository handles persistence for donations.
type DonationRepository interface {
	// Create inserts a donation in `created` status for a new payment attempt.
	Create(ctx context.Context, d *model.Donation) error
	// GetByGatewayOrderID returns the donation for a payment-gateway order.
	GetByGatewayOrderID(ctx context.Context, orderID string) (*model.Donation, error)
	// MarkCompleted transitions a donation to `completed` exactly once.
	// Returns false when the donation was already completed, so a webhook
	// retry never double counts.
	MarkCompleted(ctx context.Context, orderID, paymentID string) (bool, error)
	// MarkFailed transitions a still-pending donation to `failed`.
	MarkFailed(ctx context.Context, orderID string) error
	// ListByUser returns donations where donor_type='user' and donor_id=userID.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Donation, error)
	// SumCompletedByDonor returns the lifetime completed-donation total for a donor.
	SumCompletedByDonor(ctx context.Context, ref model.DonorRef) (int, error)
	// MigrateToken migrates donations from donor_type='token' to donor_type='user'.
	// Returns the number of rows updated.
	MigrateToken(ctx context.Context, token string, userID string) (int, error)
}
