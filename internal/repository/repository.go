package repository

import (
	"context"
	"time"

	"shelfspace-backend/internal/domain"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id int32) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
}

type BranchRepository interface {
	Create(ctx context.Context, branch *domain.Branch) error
	GetByID(ctx context.Context, id int32) (*domain.Branch, error)
	ListActive(ctx context.Context) ([]domain.Branch, error)
}

type ShelfRepository interface {
	Create(ctx context.Context, shelf *domain.Shelf) error
	GetByID(ctx context.Context, id int32) (*domain.Shelf, error)
	UpdateStatus(ctx context.Context, id int32, status domain.ShelfStatus) error
	ListByBranch(ctx context.Context, branchID int32) ([]domain.Shelf, error)
}

type RentalRequestRepository interface {
	Create(ctx context.Context, req *domain.RentalRequest) error
	GetByID(ctx context.Context, id int32) (*domain.RentalRequest, error)
	Update(ctx context.Context, req *domain.RentalRequest) error
	// HasActiveForShelf reports whether any request other than excludeID
	// currently holds ACTIVE status for the shelf.
	HasActiveForShelf(ctx context.Context, shelfID, excludeID int32) (bool, error)
	// Accept transitions a PENDING request to ACCEPTED. The status check and
	// the single-active-rental check run in the same transaction as the
	// write, under a lock on the shelf row.
	Accept(ctx context.Context, id int32) (*domain.RentalRequest, error)
	// Activate transitions a payable request to ACTIVE and its shelf to
	// RENTED in one transaction. An already-ACTIVE request is returned
	// unchanged with activated=false; a shelf held by another ACTIVE
	// request yields a conflict.
	Activate(ctx context.Context, id int32) (req *domain.RentalRequest, activated bool, err error)
	ListByBrand(ctx context.Context, brandProfileID int32, status string, page, pageSize int32) ([]domain.RentalRequest, int32, error)
	ListByStore(ctx context.Context, storeProfileID int32, status string, page, pageSize int32) ([]domain.RentalRequest, int32, error)
	// ExpireStale moves PENDING and ACCEPTED requests created before the
	// cutoff to EXPIRED and returns the affected ids.
	ExpireStale(ctx context.Context, cutoff time.Time) ([]int32, error)
	// ListElapsedActive returns ACTIVE requests whose end date is before now.
	ListElapsedActive(ctx context.Context, now time.Time) ([]domain.RentalRequest, error)
}

type PaymentRepository interface {
	// Create upserts on (rental_request_id, transaction_reference): a
	// concurrent duplicate patches the existing row instead of inserting a
	// second one.
	Create(ctx context.Context, payment *domain.Payment) error
	// GetByRequestAndReference returns nil, nil when no row matches; the
	// reconciler uses this lookup to stay idempotent under webhook retries.
	GetByRequestAndReference(ctx context.Context, rentalRequestID int32, transactionReference string) (*domain.Payment, error)
	Update(ctx context.Context, payment *domain.Payment) error
	ListByRequest(ctx context.Context, rentalRequestID int32) ([]domain.Payment, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, profileID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, profileID int32) error
}

type SettingsRepository interface {
	// GetCommissionRatePercent returns the platform commission rate,
	// falling back to the default when no settings row exists.
	GetCommissionRatePercent(ctx context.Context) (float64, error)
}
