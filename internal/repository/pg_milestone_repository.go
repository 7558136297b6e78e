package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dreamxec/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgMilestoneRepository struct {
	pool *pgxpool.Pool
}

// NewPgMilestoneRepository returns a PostgreSQL-backed MilestoneRepository.
func NewPgMilestoneRepository(pool *pgxpool.Pool) MilestoneRepository {
	return &pgMilestoneRepository{pool: pool}
}

const milestoneSelectCols = `id, project_id, position, title, budget, status,
	due_date, activated_at, reminder3_sent, reminder1_sent, overdue_sent,
	rating_penalty_days, COALESCE(admin_feedback, ''), created_at, updated_at`

func scanMilestone(scan func(...any) error) (*model.Milestone, error) {
	m := &model.Milestone{}
	err := scan(
		&m.ID, &m.ProjectID, &m.Position, &m.Title, &m.Budget, &m.Status,
		&m.DueDate, &m.ActivatedAt, &m.Reminder3Sent, &m.Reminder1Sent,
		&m.OverdueSent, &m.RatingPenaltyDays, &m.AdminFeedback,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgMilestoneRepository) GetByID(ctx context.Context, id string) (*model.Milestone, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+milestoneSelectCols+` FROM milestones WHERE id = $1`, id)
	return scanMilestone(row.Scan)
}

func (r *pgMilestoneRepository) GetByProjectAndPosition(ctx context.Context, projectID string, position int) (*model.Milestone, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+milestoneSelectCols+`
		 FROM milestones WHERE project_id = $1 AND position = $2`,
		projectID, position)
	return scanMilestone(row.Scan)
}

func (r *pgMilestoneRepository) ListByProject(ctx context.Context, projectID string) ([]*model.Milestone, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+milestoneSelectCols+`
		 FROM milestones WHERE project_id = $1
		 ORDER BY position`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*model.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (r *pgMilestoneRepository) Activate(ctx context.Context, projectID string, position int, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE milestones SET activated_at = $3, updated_at = NOW()
		 WHERE project_id = $1 AND position = $2 AND activated_at IS NULL`,
		projectID, position, at)
	return err
}

func (r *pgMilestoneRepository) MarkSubmitted(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE milestones
		 SET status = 'SUBMITTED',
		     reminder3_sent = FALSE, reminder1_sent = FALSE, overdue_sent = FALSE,
		     admin_feedback = NULL,
		     updated_at = NOW()
		 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgMilestoneRepository) SetDecision(ctx context.Context, id, status, feedback string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE milestones
		 SET status = $2, admin_feedback = NULLIF($3, ''), updated_at = NOW()
		 WHERE id = $1`, id, status, feedback)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgMilestoneRepository) ListDueForSweep(ctx context.Context) ([]*model.Milestone, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+milestoneSelectCols+`
		 FROM milestones
		 WHERE status = 'PENDING' AND activated_at IS NOT NULL AND due_date IS NOT NULL
		 ORDER BY due_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*model.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// ApplySweep writes one milestone's flag/penalty changes and the owning
// project's rating in a single transaction, so a sweep crash cannot leave a
// reminder flag set without its rating decrement (or vice versa).
func (r *pgMilestoneRepository) ApplySweep(ctx context.Context, u *model.SweepUpdate) error {
	if u.Empty() {
		return nil
	}

	setClauses := []string{}
	args := []any{}
	argIdx := 1

	if u.SetReminder3 {
		setClauses = append(setClauses, "reminder3_sent = TRUE")
	}
	if u.SetReminder1 {
		setClauses = append(setClauses, "reminder1_sent = TRUE")
	}
	if u.SetOverdue {
		setClauses = append(setClauses, "overdue_sent = TRUE")
	}
	if u.RatingPenaltyDays != nil {
		setClauses = append(setClauses, fmt.Sprintf("rating_penalty_days = GREATEST(rating_penalty_days, $%d)", argIdx))
		args = append(args, *u.RatingPenaltyDays)
		argIdx++
	}
	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, u.MilestoneID)

	query := fmt.Sprintf("UPDATE milestones SET %s WHERE id = $%d",
		strings.Join(setClauses, ", "), argIdx)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if u.NewRating != nil {
		if _, err := tx.Exec(ctx,
			`UPDATE projects SET rating = $2, updated_at = NOW() WHERE id = $1`,
			u.ProjectID, *u.NewRating); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
