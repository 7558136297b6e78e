package service

import (
	"context"

	"github.com/dreamxec/backend/internal/model"
)

// ---------------------------------------------------------------------------
// Minimal interfaces (only what EligibilityService needs)
// ---------------------------------------------------------------------------

type EligibilityDonationRepo interface {
	SumCompletedByDonor(ctx context.Context, ref model.DonorRef) (int, error)
}

type EligibilityProjectRepo interface {
	CountByOwnerAndStatus(ctx context.Context, ownerID string, statuses []string) (int, error)
}

// ---------------------------------------------------------------------------
// EligibilityService
// ---------------------------------------------------------------------------

// DefaultPerSlotCost is the completed-donation total (₹) that unlocks one
// project-creation slot.
const DefaultPerSlotCost = 2000

// slotConsumingStatuses are the project statuses that hold a donor slot.
// A REJECTED project frees its slot immediately by dropping out of the count.
var slotConsumingStatuses = []string{model.ProjectStatusPending, model.ProjectStatusApproved}

// EligibilityService computes a donor's project-slot quota from their
// lifetime completed donations. Pure reads, safe to call repeatedly and
// concurrently.
type EligibilityService interface {
	Compute(ctx context.Context, ref model.DonorRef) (*model.Eligibility, error)
}

type eligibilityService struct {
	donationRepo EligibilityDonationRepo
	projectRepo  EligibilityProjectRepo
	perSlotCost  int
}

// NewEligibilityService creates an EligibilityService. perSlotCost <= 0
// falls back to DefaultPerSlotCost.
func NewEligibilityService(dr EligibilityDonationRepo, pr EligibilityProjectRepo, perSlotCost int) EligibilityService {
	if perSlotCost <= 0 {
		perSlotCost = DefaultPerSlotCost
	}
	return &eligibilityService{donationRepo: dr, projectRepo: pr, perSlotCost: perSlotCost}
}

func (s *eligibilityService) Compute(ctx context.Context, ref model.DonorRef) (*model.Eligibility, error) {
	if !ref.Valid() {
		return nil, ErrInvalidDonor
	}

	total, err := s.donationRepo.SumCompletedByDonor(ctx, ref)
	if err != nil {
		return nil, err
	}

	// Guest donors cannot own projects, so only user refs have used slots.
	used := 0
	if ref.UserID != "" {
		used, err = s.projectRepo.CountByOwnerAndStatus(ctx, ref.UserID, slotConsumingStatuses)
		if err != nil {
			return nil, err
		}
	}

	allowed := total / s.perSlotCost
	remaining := allowed - used
	if remaining < 0 {
		remaining = 0
	}

	return &model.Eligibility{
		TotalDonated:   total,
		AllowedSlots:   allowed,
		UsedSlots:      used,
		RemainingSlots: remaining,
		CanCreate:      remaining > 0,
		PerSlotCost:    s.perSlotCost,
	}, nil
}

// AmountToNextSlot returns how much more a donor must donate to mint one
// additional slot given their current total.
func AmountToNextSlot(totalDonated, perSlotCost int) int {
	mod := totalDonated % perSlotCost
	return perSlotCost - mod
}
