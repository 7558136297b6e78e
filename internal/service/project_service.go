package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dreamxec/backend/internal/model"
)

// ---------------------------------------------------------------------------
// Minimal interfaces (only what ProjectService needs)
// ---------------------------------------------------------------------------

type ProjectRepo interface {
	Create(ctx context.Context, p *model.Project, milestones []*model.Milestone) error
	GetByID(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context, status string, limit, offset int) ([]*model.Project, error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]*model.Project, error)
	UpdateStatus(ctx context.Context, id, status string) error
	DeleteLatestPendingByOwner(ctx context.Context, ownerID string) (string, error)
}

type ProjectMilestoneActivator interface {
	Activate(ctx context.Context, projectID string, position int, at time.Time) error
}

// ---------------------------------------------------------------------------
// ProjectService
// ---------------------------------------------------------------------------

// MilestoneInput describes one milestone of a new campaign.
type MilestoneInput struct {
	Title   string
	Budget  int
	DueDate *time.Time
}

// CreateProjectInput is the payload for a slot-guarded project creation.
type CreateProjectInput struct {
	Title       string
	Description string
	GoalAmount  int
	Milestones  []MilestoneInput
}

// ProjectService provides business logic for campaign management, including
// the donor slot-reservation guard around creation.
type ProjectService interface {
	List(ctx context.Context, status string, limit, offset int) ([]*model.Project, error)
	GetByID(ctx context.Context, id string) (*model.Project, error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]*model.Project, error)
	// Create runs the optimistic check-create-reverify protocol. It fails
	// with *QuotaExceededError when the owner has no free slot and with
	// ErrQuotaRace when a concurrent creation stole the last slot.
	Create(ctx context.Context, ownerID string, in CreateProjectInput) (*model.Project, error)
	// Decide applies an admin approve/reject. Approval activates the first
	// milestone; rejection frees the owner's slot.
	Decide(ctx context.Context, id, decision string) error
}

type projectService struct {
	repo        ProjectRepo
	eligibility EligibilityService
	milestones  ProjectMilestoneActivator
	notifier    Notifier
	now         func() time.Time
}

// NewProjectService creates a ProjectService. notifier may be NopNotifier.
func NewProjectService(repo ProjectRepo, eligibility EligibilityService, milestones ProjectMilestoneActivator, notifier Notifier, now func() time.Time) ProjectService {
	if now == nil {
		now = time.Now
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &projectService{
		repo:        repo,
		eligibility: eligibility,
		milestones:  milestones,
		notifier:    notifier,
		now:         now,
	}
}

func (s *projectService) List(ctx context.Context, status string, limit, offset int) ([]*model.Project, error) {
	return s.repo.List(ctx, status, limit, offset)
}

func (s *projectService) GetByID(ctx context.Context, id string) (*model.Project, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *projectService) ListByOwnerID(ctx context.Context, ownerID string) ([]*model.Project, error) {
	return s.repo.ListByOwnerID(ctx, ownerID)
}

// Create implements the slot-reservation guard: check, create PENDING, then
// re-check and roll back on overrun. The optimistic protocol trades a narrow
// self-correcting race window for not holding a lock across the creation.
func (s *projectService) Create(ctx context.Context, ownerID string, in CreateProjectInput) (*model.Project, error) {
	ref := model.DonorRefForUser(ownerID)

	elig, err := s.eligibility.Compute(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("eligibility check: %w", err)
	}
	if !elig.CanCreate {
		return nil, &QuotaExceededError{
			AmountNeeded: AmountToNextSlot(elig.TotalDonated, elig.PerSlotCost),
		}
	}

	milestones, err := buildMilestones(in)
	if err != nil {
		return nil, err
	}

	p := &model.Project{
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		GoalAmount:  in.GoalAmount,
		Status:      model.ProjectStatusPending,
		Rating:      model.MaxRatingDefault,
	}
	if err := s.repo.Create(ctx, p, milestones); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	// Defensive re-check: two concurrent creations can both pass the
	// pre-check for the same last slot. The loser rolls back here.
	recheck, err := s.eligibility.Compute(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("eligibility recheck: %w", err)
	}
	if recheck.UsedSlots > recheck.AllowedSlots {
		if _, derr := s.repo.DeleteLatestPendingByOwner(ctx, ownerID); derr != nil {
			slog.Error("slot guard rollback failed", "owner_id", ownerID, "error", derr)
		}
		return nil, ErrQuotaRace
	}

	p.Milestones = milestones
	return p, nil
}

func (s *projectService) Decide(ctx context.Context, id, decision string) error {
	if decision != model.ProjectStatusApproved && decision != model.ProjectStatusRejected {
		return ErrInvalidState
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Status != model.ProjectStatusPending {
		return ErrInvalidState
	}

	if err := s.repo.UpdateStatus(ctx, id, decision); err != nil {
		return err
	}

	// Approval unlocks the first milestone for submission.
	if decision == model.ProjectStatusApproved {
		if err := s.milestones.Activate(ctx, id, 1, s.now()); err != nil {
			slog.Warn("activate first milestone failed", "project_id", id, "error", err)
		}
	}

	s.notifier.Publish(ctx, model.EventProjectDecided, p.OwnerID, map[string]any{
		"project_id": id,
		"status":     decision,
	})
	return nil
}

// buildMilestones validates and orders the milestone inputs. The summed
// budgets must not exceed the campaign goal.
func buildMilestones(in CreateProjectInput) ([]*model.Milestone, error) {
	if in.GoalAmount <= 0 {
		return nil, errors.New("goal_amount must be greater than 0")
	}
	budgetSum := 0
	milestones := make([]*model.Milestone, 0, len(in.Milestones))
	for i, m := range in.Milestones {
		if m.Budget <= 0 {
			return nil, fmt.Errorf("milestone %d: budget must be greater than 0", i+1)
		}
		budgetSum += m.Budget
		milestones = append(milestones, &model.Milestone{
			Position: i + 1,
			Title:    m.Title,
			Budget:   m.Budget,
			Status:   model.MilestoneStatusPending,
			DueDate:  m.DueDate,
		})
	}
	if budgetSum > in.GoalAmount {
		return nil, fmt.Errorf("milestone budgets (%d) exceed goal amount (%d)", budgetSum, in.GoalAmount)
	}
	return milestones, nil
}
