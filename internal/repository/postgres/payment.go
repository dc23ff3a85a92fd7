package postgres

import (
	"context"
	"database/sql"
	"errors"

	"shelfspace-backend/internal/domain"
	"shelfspace-backend/internal/repository"
)

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, rental_request_id, from_profile_id, to_profile_id, type, amount_cents,
	platform_fee_cents, net_amount_cents, transaction_reference, payment_method, status,
	payment_date, processed_date, settlement_date`

// Create upserts on the unique (rental_request_id, transaction_reference)
// key, so two reconcilers racing past the pre-insert lookup converge on a
// single row: the loser's insert degrades to a status patch.
func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (rental_request_id, from_profile_id, to_profile_id, type, amount_cents,
	            platform_fee_cents, net_amount_cents, transaction_reference, payment_method, status,
	            payment_date, processed_date, settlement_date)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          ON CONFLICT (rental_request_id, transaction_reference)
	          DO UPDATE SET status = EXCLUDED.status, processed_date = EXCLUDED.processed_date
	          RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		p.RentalRequestID, p.FromProfileID, p.ToProfileID, p.Type, p.AmountCents,
		p.PlatformFeeCents, p.NetAmountCents, p.TransactionReference, p.PaymentMethod, p.Status,
		p.PaymentDate, p.ProcessedDate, p.SettlementDate,
	).Scan(&p.ID)
}

func (r *paymentRepository) GetByRequestAndReference(ctx context.Context, rentalRequestID int32, transactionReference string) (*domain.Payment, error) {
	p := &domain.Payment{}
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE rental_request_id = $1 AND transaction_reference = $2`
	err := r.db.QueryRowContext(ctx, query, rentalRequestID, transactionReference).Scan(
		&p.ID, &p.RentalRequestID, &p.FromProfileID, &p.ToProfileID, &p.Type, &p.AmountCents,
		&p.PlatformFeeCents, &p.NetAmountCents, &p.TransactionReference, &p.PaymentMethod, &p.Status,
		&p.PaymentDate, &p.ProcessedDate, &p.SettlementDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	query := `UPDATE payments SET status=$1, processed_date=$2, settlement_date=$3 WHERE id=$4`
	_, err := r.db.ExecContext(ctx, query, p.Status, p.ProcessedDate, p.SettlementDate, p.ID)
	return err
}

func (r *paymentRepository) ListByRequest(ctx context.Context, rentalRequestID int32) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE rental_request_id = $1 ORDER BY payment_date DESC`
	rows, err := r.db.QueryContext(ctx, query, rentalRequestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.RentalRequestID, &p.FromProfileID, &p.ToProfileID, &p.Type, &p.AmountCents,
			&p.PlatformFeeCents, &p.NetAmountCents, &p.TransactionReference, &p.PaymentMethod, &p.Status,
			&p.PaymentDate, &p.ProcessedDate, &p.SettlementDate); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
