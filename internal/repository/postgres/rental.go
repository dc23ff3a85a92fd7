package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shelfspace-backend/internal/domain"
	"shelfspace-backend/internal/repository"
)

type rentalRequestRepository struct {
	db *sql.DB
}

func NewRentalRequestRepository(db *sql.DB) repository.RentalRequestRepository {
	return &rentalRequestRepository{db: db}
}

const rentalColumns = `id, shelf_id, branch_id, brand_profile_id, store_profile_id, status, start_date, end_date,
	monthly_price_cents, total_amount_cents, selected_products, store_commission_percent,
	conversation_id, rejection_reason, created_on, updated_on`

func (r *rentalRequestRepository) Create(ctx context.Context, req *domain.RentalRequest) error {
	products, err := json.Marshal(req.SelectedProducts)
	if err != nil {
		return fmt.Errorf("failed to encode selected products: %w", err)
	}
	query := `INSERT INTO rental_requests (shelf_id, branch_id, brand_profile_id, store_profile_id, status, start_date, end_date,
	            monthly_price_cents, total_amount_cents, selected_products, store_commission_percent, conversation_id, rejection_reason, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		req.ShelfID, req.BranchID, req.BrandProfileID, req.StoreProfileID, req.Status,
		req.StartDate, req.EndDate, req.MonthlyPriceCents, req.TotalAmountCents,
		products, req.StoreCommissionPercent, req.ConversationID, req.RejectionReason, now, now,
	).Scan(&req.ID)
}

func (r *rentalRequestRepository) scanRequest(row interface{ Scan(...any) error }) (*domain.RentalRequest, error) {
	req := &domain.RentalRequest{}
	var products []byte
	err := row.Scan(&req.ID, &req.ShelfID, &req.BranchID, &req.BrandProfileID, &req.StoreProfileID,
		&req.Status, &req.StartDate, &req.EndDate, &req.MonthlyPriceCents, &req.TotalAmountCents,
		&products, &req.StoreCommissionPercent, &req.ConversationID, &req.RejectionReason,
		&req.CreatedOn, &req.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if len(products) > 0 {
		if err := json.Unmarshal(products, &req.SelectedProducts); err != nil {
			return nil, fmt.Errorf("failed to decode selected products: %w", err)
		}
	}
	return req, nil
}

func (r *rentalRequestRepository) GetByID(ctx context.Context, id int32) (*domain.RentalRequest, error) {
	query := `SELECT ` + rentalColumns + ` FROM rental_requests WHERE id = $1`
	req, err := r.scanRequest(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("rental request", fmt.Sprintf("%d", id))
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *rentalRequestRepository) Update(ctx context.Context, req *domain.RentalRequest) error {
	query := `UPDATE rental_requests SET status=$1, rejection_reason=$2, conversation_id=$3, updated_on=$4 WHERE id=$5`
	_, err := r.db.ExecContext(ctx, query, req.Status, req.RejectionReason, req.ConversationID, time.Now(), req.ID)
	return err
}

func (r *rentalRequestRepository) HasActiveForShelf(ctx context.Context, shelfID, excludeID int32) (bool, error) {
	var count int32
	query := `SELECT count(*) FROM rental_requests WHERE shelf_id = $1 AND status = $2 AND id <> $3`
	err := r.db.QueryRowContext(ctx, query, shelfID, domain.RentalStatusActive, excludeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// lockRequestAndShelf loads the request and takes a row lock on its shelf.
// Every status transition that depends on the single-active-rental check
// goes through this lock, so concurrent transitions on the same shelf
// serialize instead of interleaving.
func (r *rentalRequestRepository) lockRequestAndShelf(ctx context.Context, tx *sql.Tx, id int32) (*domain.RentalRequest, error) {
	query := `SELECT ` + rentalColumns + ` FROM rental_requests WHERE id = $1 FOR UPDATE`
	req, err := r.scanRequest(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("rental request", fmt.Sprintf("%d", id))
	}
	if err != nil {
		return nil, err
	}

	var shelfID int32
	if err := tx.QueryRowContext(ctx, `SELECT id FROM shelves WHERE id = $1 FOR UPDATE`, req.ShelfID).Scan(&shelfID); err != nil {
		return nil, err
	}
	return req, nil
}

func hasActiveForShelfTx(ctx context.Context, tx *sql.Tx, shelfID, excludeID int32) (bool, error) {
	var count int32
	query := `SELECT count(*) FROM rental_requests WHERE shelf_id = $1 AND status = $2 AND id <> $3`
	err := tx.QueryRowContext(ctx, query, shelfID, domain.RentalStatusActive, excludeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *rentalRequestRepository) Accept(ctx context.Context, id int32) (*domain.RentalRequest, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	req, err := r.lockRequestAndShelf(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.RentalStatusPending {
		return nil, domain.NewConflictError("request is not pending")
	}
	active, err := hasActiveForShelfTx(ctx, tx, req.ShelfID, req.ID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, domain.NewConflictError("shelf already has an active rental")
	}

	req.Status = domain.RentalStatusAccepted
	if _, err := tx.ExecContext(ctx, `UPDATE rental_requests SET status=$1, updated_on=NOW() WHERE id=$2`, req.Status, req.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return req, nil
}

func (r *rentalRequestRepository) Activate(ctx context.Context, id int32) (*domain.RentalRequest, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	req, err := r.lockRequestAndShelf(ctx, tx, id)
	if err != nil {
		return nil, false, err
	}
	if req.Status == domain.RentalStatusActive {
		// Duplicate capture delivery; nothing to write.
		return req, false, nil
	}
	if !req.Status.Payable() && req.Status != domain.RentalStatusPending {
		return nil, false, domain.NewConflictError(fmt.Sprintf("request in status %s cannot be activated", req.Status))
	}
	active, err := hasActiveForShelfTx(ctx, tx, req.ShelfID, req.ID)
	if err != nil {
		return nil, false, err
	}
	if active {
		return nil, false, domain.NewConflictError("shelf already has an active rental")
	}

	req.Status = domain.RentalStatusActive
	if _, err := tx.ExecContext(ctx, `UPDATE rental_requests SET status=$1, updated_on=NOW() WHERE id=$2`, req.Status, req.ID); err != nil {
		return nil, false, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE shelves SET status = $1 WHERE id = $2`, domain.ShelfStatusRented, req.ShelfID); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return req, true, nil
}

func (r *rentalRequestRepository) ListByBrand(ctx context.Context, brandProfileID int32, status string, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	return r.list(ctx, "brand_profile_id", brandProfileID, status, page, pageSize)
}

func (r *rentalRequestRepository) ListByStore(ctx context.Context, storeProfileID int32, status string, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	return r.list(ctx, "store_profile_id", storeProfileID, status, page, pageSize)
}

func (r *rentalRequestRepository) list(ctx context.Context, column string, profileID int32, status string, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + rentalColumns + ` FROM rental_requests WHERE ` + column + ` = $1`

	args := []interface{}{profileID}
	argIdx := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var requests []domain.RentalRequest
	for rows.Next() {
		req, err := r.scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, *req)
	}
	return requests, count, rows.Err()
}

func (r *rentalRequestRepository) ExpireStale(ctx context.Context, cutoff time.Time) ([]int32, error) {
	query := `UPDATE rental_requests
	          SET status = $1, updated_on = NOW()
	          WHERE status IN ($2, $3) AND created_on < $4
	          RETURNING id`
	rows, err := r.db.QueryContext(ctx, query,
		domain.RentalStatusExpired, domain.RentalStatusPending, domain.RentalStatusAccepted, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *rentalRequestRepository) ListElapsedActive(ctx context.Context, now time.Time) ([]domain.RentalRequest, error) {
	query := `SELECT ` + rentalColumns + ` FROM rental_requests WHERE status = $1 AND end_date < $2`
	rows, err := r.db.QueryContext(ctx, query, domain.RentalStatusActive, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []domain.RentalRequest
	for rows.Next() {
		req, err := r.scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}
