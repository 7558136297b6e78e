package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/dreamxec/backend/internal/model"
)

// ---------------------------------------------------------------------------
// Minimal interfaces (only what SweepService needs)
// ---------------------------------------------------------------------------

type SweepMilestoneRepo interface {
	ListDueForSweep(ctx context.Context) ([]*model.Milestone, error)
	ApplySweep(ctx context.Context, u *model.SweepUpdate) error
}

type SweepProjectRepo interface {
	GetByID(ctx context.Context, id string) (*model.Project, error)
}

// ---------------------------------------------------------------------------
// SweepService
// ---------------------------------------------------------------------------

// Default tunables for the daily sweep.
const (
	DefaultGraceDays   = 5
	DefaultPenaltyRate = 0.2
	DefaultMaxRating   = model.MaxRatingDefault
)

// SweepConfig are the tunables of the daily milestone sweep.
type SweepConfig struct {
	// GraceDays is how many overdue days are forgiven before rating penalties
	// start to accrue.
	GraceDays int
	// PenaltyRate is the rating decrement per unforgiven overdue day.
	PenaltyRate float64
	// MaxRating bounds the project rating range [0, MaxRating].
	MaxRating float64
}

func (c SweepConfig) withDefaults() SweepConfig {
	if c.GraceDays <= 0 {
		c.GraceDays = DefaultGraceDays
	}
	if c.PenaltyRate <= 0 {
		c.PenaltyRate = DefaultPenaltyRate
	}
	if c.MaxRating <= 0 {
		c.MaxRating = DefaultMaxRating
	}
	return c
}

// SweepStats summarizes one sweep run.
type SweepStats struct {
	Scanned   int
	Reminded  int
	Overdue   int
	Penalized int
	Errors    int
}

// SweepService is the once-a-day pass over outstanding milestones: 3-day and
// 1-day due reminders, a single overdue notice per episode, and an
// incremental rating penalty once the grace window is exhausted. The
// penalty-day high-water mark makes rerunning the sweep on the same day a
// no-op.
type SweepService struct {
	milestones SweepMilestoneRepo
	projects   SweepProjectRepo
	notifier   Notifier
	cfg        SweepConfig
	now        func() time.Time
}

// NewSweepService creates a SweepService with an injectable clock.
func NewSweepService(m SweepMilestoneRepo, p SweepProjectRepo, notifier Notifier, cfg SweepConfig, now func() time.Time) *SweepService {
	if now == nil {
		now = time.Now
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &SweepService{
		milestones: m,
		projects:   p,
		notifier:   notifier,
		cfg:        cfg.withDefaults(),
		now:        now,
	}
}

// Run executes one sweep. Per-milestone failures are logged and skipped so
// one bad record never halts the pass; the returned stats count them.
func (s *SweepService) Run(ctx context.Context) (*SweepStats, error) {
	due, err := s.milestones.ListDueForSweep(ctx)
	if err != nil {
		return nil, err
	}

	stats := &SweepStats{}
	today := dateOnly(s.now().UTC())

	for _, m := range due {
		stats.Scanned++
		if err := s.sweepOne(ctx, m, today, stats); err != nil {
			stats.Errors++
			slog.Error("sweep: milestone failed", "milestone_id", m.ID, "error", err)
		}
	}
	return stats, nil
}

func (s *SweepService) sweepOne(ctx context.Context, m *model.Milestone, today time.Time, stats *SweepStats) error {
	diffDays := daysBetween(today, dateOnly(m.DueDate.UTC()))

	u := &model.SweepUpdate{MilestoneID: m.ID, ProjectID: m.ProjectID}
	var events []string

	switch {
	case diffDays == 3 && !m.Reminder3Sent:
		u.SetReminder3 = true
		events = append(events, model.EventMilestoneReminder3)
		stats.Reminded++
	case diffDays == 1 && !m.Reminder1Sent:
		u.SetReminder1 = true
		events = append(events, model.EventMilestoneReminder1)
		stats.Reminded++
	case diffDays < 0:
		if !m.OverdueSent {
			u.SetOverdue = true
			events = append(events, model.EventMilestoneOverdue)
			stats.Overdue++
		}
		if err := s.computePenalty(ctx, m, -diffDays, u, stats); err != nil {
			return err
		}
	}

	if u.Empty() {
		return nil
	}

	// Persist first: a notification must never fire without its flag
	// sticking, or the next run would resend it.
	if err := s.milestones.ApplySweep(ctx, u); err != nil {
		return err
	}

	ownerID := ""
	if p, err := s.projects.GetByID(ctx, m.ProjectID); err == nil {
		ownerID = p.OwnerID
	}
	for _, event := range events {
		s.notifier.Publish(ctx, event, ownerID, map[string]any{
			"milestone_id": m.ID,
			"project_id":   m.ProjectID,
			"due_date":     m.DueDate.Format("2006-01-02"),
			"days":         diffDays,
		})
	}
	return nil
}

// computePenalty applies the incremental rating penalty for overdue days
// beyond the grace window. RatingPenaltyDays is a high-water mark of days
// already penalized, so only newly accrued days decrement the rating.
func (s *SweepService) computePenalty(ctx context.Context, m *model.Milestone, overdueDays int, u *model.SweepUpdate, stats *SweepStats) error {
	if overdueDays <= s.cfg.GraceDays {
		return nil
	}
	penaltyDays := overdueDays - s.cfg.GraceDays
	if penaltyDays <= m.RatingPenaltyDays {
		return nil
	}
	newPenalty := penaltyDays - m.RatingPenaltyDays

	p, err := s.projects.GetByID(ctx, m.ProjectID)
	if err != nil {
		return err
	}

	rating := p.Rating - float64(newPenalty)*s.cfg.PenaltyRate
	if rating < 0 {
		rating = 0
	}
	if rating > s.cfg.MaxRating {
		rating = s.cfg.MaxRating
	}

	u.RatingPenaltyDays = &penaltyDays
	u.NewRating = &rating
	stats.Penalized++
	return nil
}

// dateOnly truncates a time to UTC day granularity.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole days from `from` until `until`.
func daysBetween(from, until time.Time) int {
	return int(until.Sub(from).Hours() / 24)
}
