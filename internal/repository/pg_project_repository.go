package repository

import (
	"context"
	"fmt"

	"github.com/dreamxec/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgProjectRepository struct {
	pool *pgxpool.Pool
}

// NewPgProjectRepository returns a PostgreSQL-backed ProjectRepository.
func NewPgProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &pgProjectRepository{pool: pool}
}

const projectSelectCols = `id, owner_id, title, COALESCE(description, ''), goal_amount,
	status, rating, created_at, updated_at`

func scanProject(scan func(...any) error) (*model.Project, error) {
	p := &model.Project{}
	err := scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.GoalAmount,
		&p.Status, &p.Rating, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts the project and its milestone rows in a single transaction
// so a partially created campaign can never be observed.
func (r *pgProjectRepository) Create(ctx context.Context, p *model.Project, milestones []*model.Milestone) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx,
		`INSERT INTO projects (owner_id, title, description, goal_amount, status, rating)
		 VALUES ($1, $2, NULLIF($3,''), $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		p.OwnerID, p.Title, p.Description, p.GoalAmount, p.Status, p.Rating,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return err
	}

	for _, m := range milestones {
		m.ProjectID = p.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO milestones (project_id, position, title, budget, status, due_date)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, created_at, updated_at`,
			m.ProjectID, m.Position, m.Title, m.Budget, m.Status, m.DueDate,
		).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *pgProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+projectSelectCols+` FROM projects WHERE id = $1`, id)
	return scanProject(row.Scan)
}

func (r *pgProjectRepository) List(ctx context.Context, status string, limit, offset int) ([]*model.Project, error) {
	query := `SELECT ` + projectSelectCols + ` FROM projects`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*model.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *pgProjectRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*model.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+projectSelectCols+`
		 FROM projects WHERE owner_id = $1
		 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*model.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *pgProjectRepository) CountByOwnerAndStatus(ctx context.Context, ownerID string, statuses []string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM projects WHERE owner_id = $1 AND status = ANY($2)`,
		ownerID, statuses,
	).Scan(&count)
	return count, err
}

func (r *pgProjectRepository) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE projects SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgProjectRepository) DeleteLatestPendingByOwner(ctx context.Context, ownerID string) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx,
		`DELETE FROM projects
		 WHERE id = (
		   SELECT id FROM projects
		   WHERE owner_id = $1 AND status = 'PENDING'
		   ORDER BY created_at DESC
		   LIMIT 1
		 )
		 RETURNING id`, ownerID).Scan(&id)
	if err == pgx.ErrNoRows {
		return "", ErrNotFound
	}
	return id, err
}

func (r *pgProjectRepository) GetRating(ctx context.Context, id string) (float64, error) {
	var rating float64
	err := r.pool.QueryRow(ctx,
		`SELECT rating FROM projects WHERE id = $1`, id).Scan(&rating)
	if err == pgx.ErrNoRows {
		return 0, ErrNotFound
	}
	return rating, err
}

func (r *pgProjectRepository) UpdateRating(ctx context.Context, id string, rating float64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE projects SET rating = $2, updated_at = NOW() WHERE id = $1`,
		id, rating)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
