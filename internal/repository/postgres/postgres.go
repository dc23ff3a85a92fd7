package postgres

import (
	"database/sql"

	"shelfspace-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.ProfileRepository
	repository.BranchRepository
	repository.ShelfRepository
	repository.RentalRequestRepository
	repository.PaymentRepository
	repository.NotificationRepository
	repository.SettingsRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                      db,
		ProfileRepository:       NewProfileRepository(db),
		BranchRepository:        NewBranchRepository(db),
		ShelfRepository:         NewShelfRepository(db),
		RentalRequestRepository: NewRentalRequestRepository(db),
		PaymentRepository:       NewPaymentRepository(db),
		NotificationRepository:  NewNotificationRepository(db),
		SettingsRepository:      NewSettingsRepository(db),
	}
}
