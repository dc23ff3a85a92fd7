package http

import (
	"io"
	"net/http"
	"time"

	"shelfspace-backend/internal/gateway/tap"
	"shelfspace-backend/internal/logger"
	"shelfspace-backend/internal/service"
)

// WebhookHandler gates untrusted gateway payloads before they influence
// state: signature first (401 on failure), then payload shape (400), and
// only then the reconciler. A 500 makes the gateway retry delivery.
type WebhookHandler struct {
	paymentSvc    service.PaymentService
	webhookSecret string
}

func NewWebhookHandler(paymentSvc service.PaymentService, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{paymentSvc: paymentSvc, webhookSecret: webhookSecret}
}

type webhookResponse struct {
	Success bool `json:"success"`
}

func (h *WebhookHandler) HandleChargeWebhook(w http.ResponseWriter, r *http.Request) {
	event, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	if event.Object != "" && event.Object != "charge" {
		// Unhandled event kinds are acknowledged so the gateway stops
		// retrying them.
		logger.Info("Ignoring non-charge webhook", "object", event.Object, "id", event.ID)
		writeJSON(w, http.StatusOK, webhookResponse{Success: true})
		return
	}

	chargeEvent := service.ChargeEvent{
		ChargeID:        event.ID,
		Status:          event.Status,
		RentalRequestID: event.RentalRequestID(),
	}
	if event.HasAmount {
		chargeEvent.AmountCents = tap.AmountFromGateway(event.Amount)
	}

	if _, err := h.paymentSvc.Reconcile(r.Context(), chargeEvent); err != nil {
		logger.Error("Webhook reconciliation failed", "charge_id", event.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "reconciliation failed"})
		return
	}

	writeJSON(w, http.StatusOK, webhookResponse{Success: true})
}

// HandleRefundWebhook validates the same envelope with `object` expected
// "refund". Refund state currently converges through charge reconciliation;
// the event itself is only logged.
func (h *WebhookHandler) HandleRefundWebhook(w http.ResponseWriter, r *http.Request) {
	event, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	logger.Info("Refund webhook received", "id", event.ID, "status", event.Status, "object", event.Object)
	writeJSON(w, http.StatusOK, webhookResponse{Success: true})
}

// authenticate verifies signature and payload shape, writing the error
// response itself when either check fails.
func (h *WebhookHandler) authenticate(w http.ResponseWriter, r *http.Request) (*tap.WebhookEvent, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable body"})
		return nil, false
	}

	if err := tap.VerifySignature(r.Header.Get(tap.SignatureHeader), body, h.webhookSecret, time.Now()); err != nil {
		logger.Warn("Webhook signature rejected", "error", err)
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid signature"})
		return nil, false
	}

	event, err := tap.ValidateEvent(body)
	if err != nil {
		logger.Warn("Webhook payload rejected", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return nil, false
	}

	return event, true
}
