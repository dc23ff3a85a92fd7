package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shelfspace-backend/internal/domain"
	"shelfspace-backend/internal/repository"
)

type branchRepository struct {
	db *sql.DB
}

func NewBranchRepository(db *sql.DB) repository.BranchRepository {
	return &branchRepository{db: db}
}

func (r *branchRepository) Create(ctx context.Context, b *domain.Branch) error {
	query := `INSERT INTO branches (store_profile_id, name, city, is_active, created_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	return r.db.QueryRowContext(ctx, query, b.StoreProfileID, b.Name, b.City, b.IsActive, time.Now()).Scan(&b.ID)
}

func (r *branchRepository) GetByID(ctx context.Context, id int32) (*domain.Branch, error) {
	b := &domain.Branch{}
	query := `SELECT id, store_profile_id, name, city, is_active, created_on FROM branches WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.StoreProfileID, &b.Name, &b.City, &b.IsActive, &b.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("branch", fmt.Sprintf("%d", id))
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *branchRepository) ListActive(ctx context.Context) ([]domain.Branch, error) {
	query := `SELECT id, store_profile_id, name, city, is_active, created_on FROM branches WHERE is_active = true ORDER BY created_on DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []domain.Branch
	for rows.Next() {
		var b domain.Branch
		if err := rows.Scan(&b.ID, &b.StoreProfileID, &b.Name, &b.City, &b.IsActive, &b.CreatedOn); err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}
