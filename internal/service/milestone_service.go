package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dreamxec/backend/internal/model"
	"github.com/dreamxec/backend/internal/repository"
)

// ---------------------------------------------------------------------------
// Minimal interfaces (only what MilestoneService needs)
// ---------------------------------------------------------------------------

type MilestoneRepo interface {
	GetByID(ctx context.Context, id string) (*model.Milestone, error)
	GetByProjectAndPosition(ctx context.Context, projectID string, position int) (*model.Milestone, error)
	ListByProject(ctx context.Context, projectID string) ([]*model.Milestone, error)
	Activate(ctx context.Context, projectID string, position int, at time.Time) error
	MarkSubmitted(ctx context.Context, id string) error
	SetDecision(ctx context.Context, id, status, feedback string) error
}

type MilestoneSubmissionRepo interface {
	Create(ctx context.Context, s *model.MilestoneSubmission) error
	ListByMilestone(ctx context.Context, milestoneID string) ([]*model.MilestoneSubmission, error)
}

type MilestoneProjectRepo interface {
	GetByID(ctx context.Context, id string) (*model.Project, error)
}

// ---------------------------------------------------------------------------
// MilestoneService
// ---------------------------------------------------------------------------

// SubmissionInput is the evidence payload for a milestone submission.
type SubmissionInput struct {
	Note        string
	EvidenceURL string
}

// MilestoneService drives the per-milestone lifecycle:
// PENDING → SUBMITTED → APPROVED (terminal) or REJECTED → SUBMITTED.
type MilestoneService interface {
	// Submit records a new evidence version and moves the milestone to
	// SUBMITTED. Each call produces a strictly increasing submission version,
	// including across reject→resubmit cycles.
	Submit(ctx context.Context, milestoneID, userID string, in SubmissionInput) (*model.MilestoneSubmission, error)
	// Decide applies an admin APPROVED/REJECTED decision. Approval unlocks
	// the next milestone in sequence.
	Decide(ctx context.Context, milestoneID, decision, feedback string) error
	ListByProject(ctx context.Context, projectID string) ([]*model.Milestone, error)
}

type milestoneService struct {
	milestones  MilestoneRepo
	submissions MilestoneSubmissionRepo
	projects    MilestoneProjectRepo
	notifier    Notifier
	now         func() time.Time
}

// NewMilestoneService creates a MilestoneService. notifier may be NopNotifier.
func NewMilestoneService(m MilestoneRepo, s MilestoneSubmissionRepo, p MilestoneProjectRepo, notifier Notifier, now func() time.Time) MilestoneService {
	if now == nil {
		now = time.Now
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &milestoneService{milestones: m, submissions: s, projects: p, notifier: notifier, now: now}
}

func (s *milestoneService) Submit(ctx context.Context, milestoneID, userID string, in SubmissionInput) (*model.MilestoneSubmission, error) {
	m, err := s.milestones.GetByID(ctx, milestoneID)
	if err != nil {
		return nil, err
	}

	p, err := s.projects.GetByID(ctx, m.ProjectID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != userID {
		return nil, ErrForbidden
	}
	if m.ActivatedAt == nil {
		return nil, ErrNotActivated
	}
	if m.Status == model.MilestoneStatusApproved {
		return nil, ErrAlreadyComplete
	}
	if m.Status != model.MilestoneStatusPending && m.Status != model.MilestoneStatusRejected {
		return nil, ErrInvalidState
	}

	// Sequential fund release: milestone N waits for N-1's approval.
	if m.Position > 1 {
		prior, err := s.milestones.GetByProjectAndPosition(ctx, m.ProjectID, m.Position-1)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &PriorIncompleteError{PriorPosition: m.Position - 1}
			}
			return nil, err
		}
		if prior.Status != model.MilestoneStatusApproved {
			return nil, &PriorIncompleteError{PriorPosition: m.Position - 1}
		}
	}

	sub := &model.MilestoneSubmission{
		MilestoneID: milestoneID,
		SubmittedBy: userID,
		Note:        in.Note,
		EvidenceURL: in.EvidenceURL,
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		return nil, err
	}

	// Clears the reminder/overdue flags so the new deadline cycle gets fresh
	// reminders; the penalty-day counter stays put.
	if err := s.milestones.MarkSubmitted(ctx, milestoneID); err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, model.EventMilestoneSubmitted, "", map[string]any{
		"milestone_id": milestoneID,
		"project_id":   m.ProjectID,
		"version":      sub.Version,
	})
	return sub, nil
}

func (s *milestoneService) Decide(ctx context.Context, milestoneID, decision, feedback string) error {
	if decision != model.MilestoneStatusApproved && decision != model.MilestoneStatusRejected {
		return ErrInvalidState
	}

	m, err := s.milestones.GetByID(ctx, milestoneID)
	if err != nil {
		return err
	}
	if m.Status != model.MilestoneStatusSubmitted {
		return ErrInvalidState
	}

	if err := s.milestones.SetDecision(ctx, milestoneID, decision, feedback); err != nil {
		return err
	}

	// Approval unlocks the next milestone for submission.
	if decision == model.MilestoneStatusApproved {
		if err := s.milestones.Activate(ctx, m.ProjectID, m.Position+1, s.now()); err != nil {
			slog.Warn("activate next milestone failed",
				"project_id", m.ProjectID, "position", m.Position+1, "error", err)
		}
	}

	ownerID := ""
	if p, err := s.projects.GetByID(ctx, m.ProjectID); err == nil {
		ownerID = p.OwnerID
	}
	s.notifier.Publish(ctx, model.EventMilestoneDecided, ownerID, map[string]any{
		"milestone_id": milestoneID,
		"project_id":   m.ProjectID,
		"status":       decision,
	})
	return nil
}

func (s *milestoneService) ListByProject(ctx context.Context, projectID string) ([]*model.Milestone, error) {
	list, err := s.milestones.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, m := range list {
		subs, err := s.submissions.ListByMilestone(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		m.Submissions = subs
	}
	return list, nil
}
