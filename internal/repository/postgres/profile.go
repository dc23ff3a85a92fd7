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

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, p *domain.Profile) error {
	query := `INSERT INTO profiles (type, name, email, phone_number, password_hash, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query, p.Type, p.Name, p.Email, p.PhoneNumber, p.PasswordHash, now, now).Scan(&p.ID)
}

func (r *profileRepository) GetByID(ctx context.Context, id int32) (*domain.Profile, error) {
	p := &domain.Profile{}
	query := `SELECT id, type, name, email, phone_number, password_hash, created_on, updated_on FROM profiles WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Type, &p.Name, &p.Email, &p.PhoneNumber, &p.PasswordHash, &p.CreatedOn, &p.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("profile", fmt.Sprintf("%d", id))
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	p := &domain.Profile{}
	query := `SELECT id, type, name, email, phone_number, password_hash, created_on, updated_on FROM profiles WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).Scan(&p.ID, &p.Type, &p.Name, &p.Email, &p.PhoneNumber, &p.PasswordHash, &p.CreatedOn, &p.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("profile", email)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
