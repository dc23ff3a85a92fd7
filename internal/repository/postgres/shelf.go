package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shelfspace-backend/internal/domain"
	"shelfspace-backend/internal/repository"

	"github.com/lib/pq"
)

type shelfRepository struct {
	db *sql.DB
}

func NewShelfRepository(db *sql.DB) repository.ShelfRepository {
	return &shelfRepository{db: db}
}

func (r *shelfRepository) Create(ctx context.Context, s *domain.Shelf) error {
	query := `INSERT INTO shelves (branch_id, name, status, monthly_price_cents, product_types, available_from, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRowContext(ctx, query, s.BranchID, s.Name, s.Status, s.MonthlyPriceCents, pq.Array(s.ProductTypes), s.AvailableFrom, time.Now()).Scan(&s.ID)
}

func (r *shelfRepository) GetByID(ctx context.Context, id int32) (*domain.Shelf, error) {
	s := &domain.Shelf{}
	query := `SELECT id, branch_id, name, status, monthly_price_cents, product_types, available_from, created_on FROM shelves WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.BranchID, &s.Name, &s.Status, &s.MonthlyPriceCents, pq.Array(&s.ProductTypes), &s.AvailableFrom, &s.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("shelf", fmt.Sprintf("%d", id))
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *shelfRepository) UpdateStatus(ctx context.Context, id int32, status domain.ShelfStatus) error {
	query := `UPDATE shelves SET status = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

func (r *shelfRepository) ListByBranch(ctx context.Context, branchID int32) ([]domain.Shelf, error) {
	query := `SELECT id, branch_id, name, status, monthly_price_cents, product_types, available_from, created_on FROM shelves WHERE branch_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shelves []domain.Shelf
	for rows.Next() {
		var s domain.Shelf
		if err := rows.Scan(&s.ID, &s.BranchID, &s.Name, &s.Status, &s.MonthlyPriceCents, pq.Array(&s.ProductTypes), &s.AvailableFrom, &s.CreatedOn); err != nil {
			return nil, err
		}
		shelves = append(shelves, s)
	}
	return shelves, rows.Err()
}
