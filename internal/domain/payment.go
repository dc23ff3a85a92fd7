package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

type PaymentType string

const (
	PaymentTypeBrandPayment PaymentType = "brand_payment"
)

// Payment is a ledger record created only when a gateway charge reaches a
// captured terminal state. At most one completed Payment exists per
// (RentalRequestID, TransactionReference) pair; a duplicate webhook delivery
// patches the existing row instead of inserting another.
type Payment struct {
	ID              int32       `json:"id"`
	RentalRequestID int32       `json:"rental_request_id"`
	FromProfileID   int32       `json:"from_profile_id"`
	// ToProfileID is nil when the payee is the platform itself.
	ToProfileID          *int32        `json:"to_profile_id,omitempty"`
	Type                 PaymentType   `json:"type"`
	AmountCents          int64         `json:"amount_cents"`
	PlatformFeeCents     int64         `json:"platform_fee_cents"`
	NetAmountCents       int64         `json:"net_amount_cents"`
	TransactionReference string        `json:"transaction_reference"`
	PaymentMethod        string        `json:"payment_method"`
	Status               PaymentStatus `json:"status"`
	PaymentDate          time.Time     `json:"payment_date"`
	ProcessedDate        *time.Time    `json:"processed_date,omitempty"`
	SettlementDate       *time.Time    `json:"settlement_date,omitempty"`
}
