package service

import (
	"context"
	"time"

	"shelfspace-backend/internal/domain"
	"shelfspace-backend/internal/gateway/tap"
)

// Identity is the authenticated caller, resolved by the API layer and
// passed explicitly into every service call. Services never read the
// caller from ambient state.
type Identity struct {
	ProfileID int32
	Type      domain.ProfileType
}

func (id Identity) IsBrand() bool { return id.Type == domain.ProfileTypeBrand }
func (id Identity) IsStore() bool { return id.Type == domain.ProfileTypeStore }

type AuthService interface {
	Register(ctx context.Context, profileType domain.ProfileType, name, email, phone, password string) (*domain.Profile, string, error)
	Login(ctx context.Context, email, password string) (*domain.Profile, string, error)
}

type CreateRentalInput struct {
	ShelfID          int32
	StartDate        time.Time
	EndDate          time.Time
	SelectedProducts []domain.ProductSelection
}

type RentalService interface {
	CreateRentalRequest(ctx context.Context, caller Identity, input CreateRentalInput) (*domain.RentalRequest, error)
	AcceptRentalRequest(ctx context.Context, caller Identity, requestID int32) (*domain.RentalRequest, error)
	RejectRentalRequest(ctx context.Context, caller Identity, requestID int32, reason string) (*domain.RentalRequest, error)
	CancelRentalRequest(ctx context.Context, caller Identity, requestID int32) (*domain.RentalRequest, error)
	// ActivateViaPayment is the system-only transition driven by payment
	// capture. Idempotent: activating an already-active rental is a no-op.
	ActivateViaPayment(ctx context.Context, requestID int32) (*domain.RentalRequest, error)
	// CancelViaRefund is the system-only transition driven by a refunded
	// charge; it frees the shelf.
	CancelViaRefund(ctx context.Context, requestID int32) (*domain.RentalRequest, error)
	GetRentalRequest(ctx context.Context, caller Identity, requestID int32) (*domain.RentalRequest, error)
	ListRentalRequests(ctx context.Context, caller Identity, status string, page, pageSize int32) ([]domain.RentalRequest, int32, error)
	ExpireStaleRequests(ctx context.Context, cutoff time.Time) ([]int32, error)
	CompleteElapsedRentals(ctx context.Context, now time.Time) (int, error)
}

type CheckoutCustomer struct {
	Name  string
	Email string
	Phone string
}

type CheckoutInput struct {
	AmountCents     int64
	Description     string
	Customer        CheckoutCustomer
	RentalRequestID int32  // authenticated brand-owner flow when set
	OrderID         string // anonymous guest purchase flow when set
	BranchID        int32  // scopes the guest redirect page
	Metadata        map[string]string
}

type CheckoutSession struct {
	ChargeID    string `json:"charge_id"`
	Status      string `json:"status"`
	CheckoutURL string `json:"checkout_url"`
}

// ChargeEvent is the reconciler's view of a gateway charge, built either
// from a validated webhook payload or from a manual charge fetch.
type ChargeEvent struct {
	ChargeID        string
	Status          string
	AmountCents     int64
	RentalRequestID int32
	PaymentMethod   string
}

// ReconcileOutcome reports the mapped statuses and the payment row, if one
// was persisted, for a processed charge event.
type ReconcileOutcome struct {
	PaymentStatus domain.PaymentStatus
	RentalStatus  domain.RentalStatus
	Payment       *domain.Payment
	Skipped       bool
}

type PaymentService interface {
	// CreateCheckoutSession builds and submits a hosted-checkout session.
	// caller is nil for the anonymous guest purchase flow; the rental
	// request flow requires the owning brand profile. No payment or rental
	// row is written here; persistence happens only after the gateway
	// confirms capture.
	CreateCheckoutSession(ctx context.Context, caller *Identity, input CheckoutInput) (*CheckoutSession, error)
	// Reconcile maps a gateway charge status to internal payment and
	// rental state. Idempotent under at-least-once webhook delivery.
	Reconcile(ctx context.Context, event ChargeEvent) (*ReconcileOutcome, error)
	// VerifyAndConfirm fetches the charge from the gateway and reconciles
	// it; used when webhooks cannot reach the environment.
	VerifyAndConfirm(ctx context.Context, caller Identity, chargeID string) (*ReconcileOutcome, error)
	// Refund submits a refund for a captured charge and reconciles the
	// refunded state.
	Refund(ctx context.Context, caller Identity, chargeID string, amountCents int64, reason string) (*tap.Refund, error)
}

type BranchFilter struct {
	Search        string
	MinPriceCents int64
	MaxPriceCents int64
	ProductType   string
	Page          int32
	PageSize      int32
}

type MarketplaceService interface {
	ListBranchSummaries(ctx context.Context, filter BranchFilter) ([]domain.BranchSummary, int32, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, profileID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, profileID, notificationID int32) error
}
