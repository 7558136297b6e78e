package repository

import (
	"context"

	"github.com/dreamxec/backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgSubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewPgSubmissionRepository returns a PostgreSQL-backed SubmissionRepository.
func NewPgSubmissionRepository(pool *pgxpool.Pool) SubmissionRepository {
	return &pgSubmissionRepository{pool: pool}
}

// Create computes the next version inside the INSERT, so two racing submits
// serialize on the (milestone_id, version) unique index instead of both
// reading the same max.
func (r *pgSubmissionRepository) Create(ctx context.Context, s *model.MilestoneSubmission) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO milestone_submissions (milestone_id, version, submitted_by, note, evidence_url)
		 VALUES ($1,
		         (SELECT COALESCE(MAX(version), 0) + 1 FROM milestone_submissions WHERE milestone_id = $1),
		         $2, NULLIF($3,''), NULLIF($4,''))
		 RETURNING id, version, created_at`,
		s.MilestoneID, s.SubmittedBy, s.Note, s.EvidenceURL,
	).Scan(&s.ID, &s.Version, &s.CreatedAt)
}

func (r *pgSubmissionRepository) ListByMilestone(ctx context.Context, milestoneID string) ([]*model.MilestoneSubmission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, milestone_id, version, submitted_by, COALESCE(note, ''), COALESCE(evidence_url, ''), created_at
		 FROM milestone_submissions
		 WHERE milestone_id = $1
		 ORDER BY version DESC`, milestoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*model.MilestoneSubmission
	for rows.Next() {
		s := &model.MilestoneSubmission{}
		if err := rows.Scan(&s.ID, &s.MilestoneID, &s.Version, &s.SubmittedBy, &s.Note, &s.EvidenceURL, &s.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *pgSubmissionRepository) MaxVersion(ctx context.Context, milestoneID string) (int, error) {
	var v int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM milestone_submissions WHERE milestone_id = $1`,
		milestoneID).Scan(&v)
	return v, err
}
