package domain

import "time"

type RentalStatus string

const (
	// RentalStatusPending means the request awaits the store owner's decision.
	RentalStatusPending RentalStatus = "PENDING"
	// RentalStatusAccepted means the store owner approved the request but
	// payment has not been captured yet. The shelf is not marked rented
	// until activation.
	RentalStatusAccepted RentalStatus = "ACCEPTED"
	// RentalStatusPaymentPending means a payment attempt exists for the
	// request but has not reached a successful terminal state.
	RentalStatusPaymentPending RentalStatus = "PAYMENT_PENDING"
	RentalStatusActive         RentalStatus = "ACTIVE"
	RentalStatusRejected       RentalStatus = "REJECTED"
	RentalStatusExpired        RentalStatus = "EXPIRED"
	RentalStatusCancelled      RentalStatus = "CANCELLED"
	RentalStatusCompleted      RentalStatus = "COMPLETED"
)

// IsTerminal reports whether no further lifecycle transition is allowed
// from the given status.
func (s RentalStatus) IsTerminal() bool {
	switch s {
	case RentalStatusRejected, RentalStatusExpired, RentalStatusCancelled, RentalStatusCompleted:
		return true
	default:
		return false
	}
}

// Payable reports whether a payment capture may still activate the rental.
func (s RentalStatus) Payable() bool {
	return s == RentalStatusAccepted || s == RentalStatusPaymentPending
}

// ProductSelection is a line item snapshot captured at request creation
// time so later product edits do not retroactively alter the request.
type ProductSelection struct {
	ProductID      int32 `json:"product_id"`
	Quantity       int32 `json:"quantity"`
	UnitPriceCents int64 `json:"unit_price_cents"`
}

func (p ProductSelection) LineTotalCents() int64 {
	return int64(p.Quantity) * p.UnitPriceCents
}

type RentalRequest struct {
	ID             int32        `json:"id"`
	ShelfID        int32        `json:"shelf_id"`
	BranchID       int32        `json:"branch_id"`
	BrandProfileID int32        `json:"brand_profile_id"`
	StoreProfileID int32        `json:"store_profile_id"`
	Status         RentalStatus `json:"status"`
	StartDate      time.Time    `json:"start_date"`
	EndDate        time.Time    `json:"end_date"`
	// Price snapshot fields, captured from the shelf at request creation.
	// All cost calculations use these snapshots, not live shelf prices.
	MonthlyPriceCents      int64              `json:"monthly_price_cents"`
	TotalAmountCents       int64              `json:"total_amount_cents"`
	SelectedProducts       []ProductSelection `json:"selected_products"`
	StoreCommissionPercent float64            `json:"store_commission_percent"`
	ConversationID         *string            `json:"conversation_id,omitempty"`
	RejectionReason        string             `json:"rejection_reason,omitempty"`
	CreatedOn              time.Time          `json:"created_on"`
	UpdatedOn              time.Time          `json:"updated_on"`
}
