package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/givebridge/backend/internal/model"
)

// DonationRepository is the persistence interface for the donation
// ledger. Rows are created from gateway webhook events, so Create must
// report ErrDuplicate when the payment intent id was already recorded.
type DonationRepository interface {
	Create(ctx context.Context, d *model.Donation) error
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*model.Donation, error)
	MarkRefunded(ctx context.Context, paymentIntentID, refundID string, amount int64) error
	List(ctx context.Context, limit, offset int) ([]*model.Donation, error)
}

// PgDonationRepository is the PostgreSQL implementation of DonationRepository.
type PgDonationRepository struct {
	pool *pgxpool.Pool
}

var _ DonationRepository = (*PgDonationRepository)(nil)

// NewPgDonationRepository creates a PgDonationRepository backed by the given pool.
func NewPgDonationRepository(pool *pgxpool.Pool) *PgDonationRepository {
	return &PgDonationRepository{pool: pool}
}

const donationSelectCols = `id, payment_intent_id, project_id, COALESCE(project_title, ''),
	donor_name, donor_email, anonymous, amount, currency, COALESCE(message, ''),
	status, COALESCE(refund_id, ''), refunded_amount, created_at, updated_at`

func scanDonation(scan func(...any) error) (*model.Donation, error) {
	d := &model.Donation{}
	return d, scan(
		&d.ID, &d.PaymentIntentID, &d.ProjectID, &d.ProjectTitle,
		&d.DonorName, &d.DonorEmail, &d.Anonymous, &d.Amount, &d.Currency,
		&d.Message, &d.Status, &d.RefundID, &d.RefundedAmount,
		&d.CreatedAt, &d.UpdatedAt,
	)
}

// Create inserts a ledger row. The payment_intent_id unique index turns
// redelivered webhook events into ErrDuplicate instead of double rows.
func (r *PgDonationRepository) Create(ctx context.Context, d *model.Donation) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO donations
		 (payment_intent_id, project_id, project_title, donor_name, donor_email,
		  anonymous, amount, currency, message, status)
		 VALUES ($1, $2, NULLIF($3,''), $4, $5, $6, $7, $8, NULLIF($9,''), $10)
		 RETURNING id, created_at, updated_at`,
		d.PaymentIntentID, d.ProjectID, d.ProjectTitle, d.DonorName, d.DonorEmail,
		d.Anonymous, d.Amount, d.Currency, d.Message, d.Status,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrDuplicate
	}
	return err
}

// GetByPaymentIntentID looks up the ledger row for a payment intent.
func (r *PgDonationRepository) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*model.Donation, error) {
	d, err := scanDonation(r.pool.QueryRow(ctx,
		`SELECT `+donationSelectCols+` FROM donations WHERE payment_intent_id = $1`,
		paymentIntentID,
	).Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// MarkRefunded flips the ledger row to refunded and records the refund
// id and amount. Missing rows are ErrNotFound so the caller can decide
// whether an unmatched refund event is worth alerting on.
func (r *PgDonationRepository) MarkRefunded(ctx context.Context, paymentIntentID, refundID string, amount int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE donations
		 SET status = $1, refund_id = $2, refunded_amount = $3, updated_at = now()
		 WHERE payment_intent_id = $4`,
		model.DonationStatusRefunded, refundID, amount, paymentIntentID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns ledger rows newest first.
func (r *PgDonationRepository) List(ctx context.Context, limit, offset int) ([]*model.Donation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+donationSelectCols+` FROM donations
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var donations []*model.Donation
	for rows.Next() {
		d, err := scanDonation(rows.Scan)
		if err != nil {
			return nil, err
		}
		donations = append(donations, d)
	}
	return donations, rows.Err()
}
