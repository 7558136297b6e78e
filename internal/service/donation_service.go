package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dreamxec/backend/internal/model"
	"github.com/dreamxec/backend/pkg/payment"
)

// ---------------------------------------------------------------------------
// Minimal interfaces (only what DonationService needs)
// ---------------------------------------------------------------------------

type DonationRepo interface {
	Create(ctx context.Context, d *model.Donation) error
	GetByGatewayOrderID(ctx context.Context, orderID string) (*model.Donation, error)
	MarkCompleted(ctx context.Context, orderID, paymentID string) (bool, error)
	MarkFailed(ctx context.Context, orderID string) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Donation, error)
	MigrateToken(ctx context.Context, token string, userID string) (int, error)
}

// ---------------------------------------------------------------------------
// DonationService
// ---------------------------------------------------------------------------

// MigrateTokenResult holds the result of a guest-donor token migration.
type MigrateTokenResult struct {
	MigratedCount   int
	AlreadyMigrated bool
}

// CheckoutInput describes a new donation attempt.
type CheckoutInput struct {
	ProjectID string
	Donor     model.DonorRef
	Amount    int
	Currency  string
}

// CheckoutResult carries what the frontend needs to complete the payment.
type CheckoutResult struct {
	DonationID     string `json:"donation_id"`
	GatewayOrderID string `json:"gateway_order_id"`
	Amount         int    `json:"amount"`
	Currency       string `json:"currency"`
}

// DonationService provides business logic for donation intake and the
// payment-gateway callback.
type DonationService interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Donation, error)
	// Checkout creates a gateway order and a matching `created` donation.
	Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error)
	// CompletePayment marks the donation completed. Idempotent: a gateway
	// webhook retry is a no-op and never double counts toward eligibility.
	CompletePayment(ctx context.Context, orderID, paymentID string) error
	FailPayment(ctx context.Context, orderID string) error
	// MigrateToken attributes a guest donor token's donations to a freshly
	// registered user, one time.
	MigrateToken(ctx context.Context, token, userID string) (*MigrateTokenResult, error)
}

type donationService struct {
	repo     DonationRepo
	gateway  payment.Client
	notifier Notifier
}

// NewDonationService creates a DonationService. gateway may be nil to skip
// order creation (tests); notifier may be NopNotifier.
func NewDonationService(repo DonationRepo, gateway payment.Client, notifier Notifier) DonationService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &donationService{repo: repo, gateway: gateway, notifier: notifier}
}

func (s *donationService) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Donation, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *donationService) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if !in.Donor.Valid() {
		return nil, ErrInvalidDonor
	}
	if in.Amount <= 0 {
		return nil, errors.New("amount must be greater than 0")
	}
	currency := in.Currency
	if currency == "" {
		currency = "INR"
	}

	orderID := ""
	if s.gateway != nil {
		order, err := s.gateway.CreateOrder(ctx, payment.OrderParams{
			Amount:   in.Amount,
			Currency: currency,
			Notes: map[string]string{
				"project_id": in.ProjectID,
				"donor_type": in.Donor.DonorType(),
				"donor_id":   in.Donor.DonorID(),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("gateway order: %w", err)
		}
		orderID = order.ID
	}

	d := &model.Donation{
		ProjectID:      in.ProjectID,
		DonorType:      in.Donor.DonorType(),
		DonorID:        in.Donor.DonorID(),
		Amount:         in.Amount,
		Currency:       currency,
		PaymentStatus:  model.PaymentStatusCreated,
		GatewayOrderID: orderID,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	return &CheckoutResult{
		DonationID:     d.ID,
		GatewayOrderID: orderID,
		Amount:         d.Amount,
		Currency:       d.Currency,
	}, nil
}

func (s *donationService) CompletePayment(ctx context.Context, orderID, paymentID string) error {
	changed, err := s.repo.MarkCompleted(ctx, orderID, paymentID)
	if err != nil {
		return err
	}
	if !changed {
		// Webhook retry, already counted.
		return nil
	}

	d, err := s.repo.GetByGatewayOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	userID := ""
	if d.DonorType == "user" {
		userID = d.DonorID
	}
	s.notifier.Publish(ctx, model.EventDonationCompleted, userID, map[string]any{
		"donation_id": d.ID,
		"project_id":  d.ProjectID,
		"amount":      d.Amount,
	})
	return nil
}

func (s *donationService) FailPayment(ctx context.Context, orderID string) error {
	return s.repo.MarkFailed(ctx, orderID)
}

func (s *donationService) MigrateToken(ctx context.Context, token, userID string) (*MigrateTokenResult, error) {
	if token == "" {
		return nil, errors.New("donor_token is required")
	}
	count, err := s.repo.MigrateToken(ctx, token, userID)
	if err != nil {
		return nil, err
	}
	return &MigrateTokenResult{
		MigratedCount:   count,
		AlreadyMigrated: count == 0,
	}, nil
}
