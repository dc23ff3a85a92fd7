package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *AuthHandler
	Rental       *RentalHandler
	Payment      *PaymentHandler
	Webhook      *WebhookHandler
	Marketplace  *MarketplaceHandler
	Notification *NotificationHandler
	AuthMW       *AuthMiddleware
}

// NewRouter wires all routes. Webhook routes are unauthenticated on purpose:
// they carry their own signature scheme. Checkout uses optional auth so
// guests can pay without an account.
func NewRouter(h Handlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Auth
	api.HandleFunc("/auth/register", h.Auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)

	// Rental lifecycle
	api.HandleFunc("/rentals", h.AuthMW.Require(h.Rental.Create)).Methods(http.MethodPost)
	api.HandleFunc("/rentals", h.AuthMW.Require(h.Rental.List)).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id}", h.AuthMW.Require(h.Rental.Get)).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id}/accept", h.AuthMW.Require(h.Rental.Accept)).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/reject", h.AuthMW.Require(h.Rental.Reject)).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/cancel", h.AuthMW.Require(h.Rental.Cancel)).Methods(http.MethodPost)

	// Payments
	api.HandleFunc("/checkout", h.AuthMW.Optional(h.Payment.Checkout)).Methods(http.MethodPost)
	api.HandleFunc("/payments/{chargeID}/verify", h.AuthMW.Require(h.Payment.Verify)).Methods(http.MethodPost)
	api.HandleFunc("/refunds", h.AuthMW.Require(h.Payment.Refund)).Methods(http.MethodPost)

	// Gateway webhooks
	api.HandleFunc("/tap/webhook", h.Webhook.HandleChargeWebhook).Methods(http.MethodPost)
	api.HandleFunc("/tap/webhook-refund", h.Webhook.HandleRefundWebhook).Methods(http.MethodPost)

	// Marketplace
	api.HandleFunc("/marketplace/branches", h.Marketplace.ListBranches).Methods(http.MethodGet)

	// Notifications
	api.HandleFunc("/notifications", h.AuthMW.Require(h.Notification.List)).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id}/read", h.AuthMW.Require(h.Notification.MarkAsRead)).Methods(http.MethodPost)

	return r
}
