package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"shelfspace-backend/internal/domain"
	"shelfspace-backend/internal/service"
)

type PaymentHandler struct {
	paymentSvc service.PaymentService
}

func NewPaymentHandler(paymentSvc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

type checkoutRequest struct {
	AmountCents     int64             `json:"amount_cents"`
	Description     string            `json:"description"`
	CustomerName    string            `json:"customer_name"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerPhone   string            `json:"customer_phone"`
	RentalRequestID int32             `json:"rental_request_id,omitempty"`
	OrderID         string            `json:"order_id,omitempty"`
	BranchID        int32             `json:"branch_id,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// Checkout serves both flows: the rental flow requires a bearer token,
// the guest order flow does not. The route uses optional auth so an
// identity is attached only when present.
func (h *PaymentHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var body checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("body", "malformed JSON"))
		return
	}

	var caller *service.Identity
	if identity, ok := callerIdentity(r); ok {
		caller = &identity
	}

	session, err := h.paymentSvc.CreateCheckoutSession(r.Context(), caller, service.CheckoutInput{
		AmountCents: body.AmountCents,
		Description: body.Description,
		Customer: service.CheckoutCustomer{
			Name:  body.CustomerName,
			Email: body.CustomerEmail,
			Phone: body.CustomerPhone,
		},
		RentalRequestID: body.RentalRequestID,
		OrderID:         body.OrderID,
		BranchID:        body.BranchID,
		Metadata:        body.Metadata,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

type verifyResponse struct {
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	RentalStatus  domain.RentalStatus  `json:"rental_status,omitempty"`
	Payment       *domain.Payment      `json:"payment,omitempty"`
}

// Verify fetches the charge from the gateway and reconciles it. It exists
// for environments the gateway cannot reach with webhooks.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerIdentity(r)
	chargeID := mux.Vars(r)["chargeID"]
	if chargeID == "" {
		writeError(w, domain.NewValidationError("chargeID", "is required"))
		return
	}

	outcome, err := h.paymentSvc.VerifyAndConfirm(r.Context(), caller, chargeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{
		PaymentStatus: outcome.PaymentStatus,
		RentalStatus:  outcome.RentalStatus,
		Payment:       outcome.Payment,
	})
}

type refundRequest struct {
	ChargeID    string `json:"charge_id"`
	AmountCents int64  `json:"amount_cents"`
	Reason      string `json:"reason"`
}

func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerIdentity(r)

	var body refundRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("body", "malformed JSON"))
		return
	}
	if body.ChargeID == "" {
		writeError(w, domain.NewValidationError("charge_id", "is required"))
		return
	}

	refund, err := h.paymentSvc.Refund(r.Context(), caller, body.ChargeID, body.AmountCents, body.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, refund)
}
