package postgres

import (
	"context"
	"database/sql"
	"errors"

	"shelfspace-backend/internal/domain"
	"shelfspace-backend/internal/repository"
)

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetCommissionRatePercent(ctx context.Context) (float64, error) {
	var rate float64
	query := `SELECT commission_rate_percent FROM platform_settings ORDER BY id LIMIT 1`
	err := r.db.QueryRowContext(ctx, query).Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultCommissionRatePercent, nil
	}
	if err != nil {
		return 0, err
	}
	return rate, nil
}
