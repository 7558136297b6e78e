package repository

import (
	"context"
	"strings"

	"github.com/dreamxec/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgDonationRepository struct {
	pool *pgxpool.Pool
}

// NewPgDonationRepository returns a PostgreSQL-backed DonationRepository.
func NewPgDonationRepository(pool *pgxpool.Pool) DonationRepository {
	return &pgDonationRepository{pool: pool}
}

const donationSelectCols = `id, COALESCE(project_id::text, ''), donor_type, donor_id, amount, currency,
	payment_status, COALESCE(gateway_order_id, ''), COALESCE(gateway_payment_id, ''),
	completed_at, created_at, updated_at`

func scanDonation(scan func(...any) error) (*model.Donation, error) {
	d := &model.Donation{}
	err := scan(
		&d.ID, &d.ProjectID, &d.DonorType, &d.DonorID,
		&d.Amount, &d.Currency, &d.PaymentStatus,
		&d.GatewayOrderID, &d.GatewayPaymentID,
		&d.CompletedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *pgDonationRepository) Create(ctx context.Context, d *model.Donation) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO donations
		 (project_id, donor_type, donor_id, amount, currency, payment_status, gateway_order_id)
		 VALUES (NULLIF($1,'')::uuid, $2, $3, $4, $5, $6, NULLIF($7,''))
		 RETURNING id, created_at, updated_at`,
		d.ProjectID, d.DonorType, d.DonorID, d.Amount, d.Currency,
		d.PaymentStatus, d.GatewayOrderID,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrDuplicate
	}
	return err
}

func (r *pgDonationRepository) GetByGatewayOrderID(ctx context.Context, orderID string) (*model.Donation, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+donationSelectCols+` FROM donations WHERE gateway_order_id = $1`, orderID)
	return scanDonation(row.Scan)
}

// MarkCompleted is the idempotent completion step: the status guard in the
// WHERE clause makes a webhook retry a zero-row update rather than a second
// completion.
func (r *pgDonationRepository) MarkCompleted(ctx context.Context, orderID, paymentID string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE donations
		 SET payment_status = 'completed', gateway_payment_id = $2,
		     completed_at = NOW(), updated_at = NOW()
		 WHERE gateway_order_id = $1 AND payment_status <> 'completed'`,
		orderID, paymentID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		// Either already completed (fine) or unknown order.
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM donations WHERE gateway_order_id = $1)`,
			orderID).Scan(&exists); err != nil {
			return false, err
		}
		if !exists {
			return false, ErrNotFound
		}
		return false, nil
	}
	return true, nil
}

func (r *pgDonationRepository) MarkFailed(ctx context.Context, orderID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE donations
		 SET payment_status = 'failed', updated_at = NOW()
		 WHERE gateway_order_id = $1 AND payment_status = 'created'`,
		orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgDonationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Donation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+donationSelectCols+`
		 FROM donations
		 WHERE donor_type = 'user' AND donor_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*model.Donation
	for rows.Next() {
		d, err := scanDonation(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func (r *pgDonationRepository) SumCompletedByDonor(ctx context.Context, ref model.DonorRef) (int, error) {
	var sum int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)::int
		 FROM donations
		 WHERE donor_type = $1 AND donor_id = $2 AND payment_status = 'completed'`,
		ref.DonorType(), ref.DonorID(),
	).Scan(&sum)
	return sum, err
}

func (r *pgDonationRepository) MigrateToken(ctx context.Context, token string, userID string) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE donations SET donor_type = 'user', donor_id = $1, updated_at = NOW()
		 WHERE donor_type = 'token' AND donor_id = $2`,
		userID, token)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
