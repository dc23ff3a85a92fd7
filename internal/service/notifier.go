package service

import (
	"context"
	"fmt"

	"shelfspace-backend/internal/domain"
	"shelfspace-backend/internal/logger"
	"shelfspace-backend/internal/repository"
)

// LifecycleNotifier delivers counter-party notifications for rental
// lifecycle transitions. Every method is best-effort: failures are logged
// and never propagate to the transition that triggered them.
type LifecycleNotifier interface {
	RequestCreated(ctx context.Context, req *domain.RentalRequest, shelf *domain.Shelf, brand, store *domain.Profile)
	RequestAccepted(ctx context.Context, req *domain.RentalRequest, shelf *domain.Shelf, brand, store *domain.Profile)
	RequestRejected(ctx context.Context, req *domain.RentalRequest, shelf *domain.Shelf, brand, store *domain.Profile)
	RentalActivated(ctx context.Context, req *domain.RentalRequest, shelf *domain.Shelf, brand, store *domain.Profile, amountCents int64)
}

// KarzounTemplates names the provider-side WhatsApp templates. Positional
// parameters are template-specific; see the dispatch sites below for the
// expected order.
type KarzounTemplates struct {
	NewRequest string
	Invoice    string
}

type lifecycleNotifier struct {
	whatsapp  WhatsAppSender
	email     EmailService
	noteRepo  repository.NotificationRepository
	templates KarzounTemplates
	siteURL   string
}

func NewLifecycleNotifier(whatsapp WhatsAppSender, email EmailService, noteRepo repository.NotificationRepository, templates KarzounTemplates, siteURL string) LifecycleNotifier {
	return &lifecycleNotifier{
		whatsapp:  whatsapp,
		email:     email,
		noteRepo:  noteRepo,
		templates: templates,
		siteURL:   siteURL,
	}
}

// dashboardLink builds a deep link to the rental detail page on the
// recipient's dashboard.
func (n *lifecycleNotifier) dashboardLink(recipient domain.ProfileType, requestID int32) string {
	dashboard := "brand"
	if recipient == domain.ProfileTypeStore {
		dashboard = "store"
	}
	return fmt.Sprintf("%s/dashboard/%s/rentals/%d", n.siteURL, dashboard, requestID)
}

func (n *lifecycleNotifier) note(ctx context.Context, profileID int32, title, message, event string, requestID int32) {
	notif := &domain.Notification{
		ProfileID: profileID,
		Title:     title,
		Message:   message,
		Attributes: map[string]string{
			"type":              event,
			"rental_request_id": fmt.Sprintf("%d", requestID),
		},
	}
	if err := n.noteRepo.Create(ctx, notif); err != nil {
		logger.Warn("Failed to persist notification", "event", event, "profile_id", profileID, "error", err)
	}
}

func (n *lifecycleNotifier) RequestCreated(ctx context.Context, req *domain.RentalRequest, shelf *domain.Shelf, brand, store *domain.Profile) {
	link := n.dashboardLink(domain.ProfileTypeStore, req.ID)
	result := n.whatsapp.SendTemplate(ctx, store.PhoneNumber, n.templates.NewRequest,
		[]string{store.Name, brand.Name, shelf.Name, link})
	if !result.Success {
		logger.Warn("WhatsApp dispatch failed", "event", "RENTAL_REQUEST", "rental_request_id", req.ID)
	}
	if err := n.email.SendRentalRequestNotification(ctx, store.Email, brand.Name, shelf.Name); err != nil {
		logger.Warn("Email dispatch failed", "event", "RENTAL_REQUEST", "error", err)
	}
	n.note(ctx, store.ID, "New Rental Request",
		fmt.Sprintf("%s requested to rent %s", brand.Name, shelf.Name),
		"RENTAL_REQUEST", req.ID)
}

func (n *lifecycleNotifier) RequestAccepted(ctx context.Context, req *domain.RentalRequest, shelf *domain.Shelf, brand, store *domain.Profile) {
	link := n.dashboardLink(domain.ProfileTypeBrand, req.ID)
	result := n.whatsapp.SendTemplate(ctx, brand.PhoneNumber, n.templates.NewRequest,
		[]string{brand.Name, store.Name, shelf.Name, link})
	if !result.Success {
		logger.Warn("WhatsApp dispatch failed", "event", "RENTAL_ACCEPTED", "rental_request_id", req.ID)
	}
	if err := n.email.SendRentalAcceptedNotification(ctx, brand.Email, shelf.Name, store.Name); err != nil {
		logger.Warn("Email dispatch failed", "event", "RENTAL_ACCEPTED", "error", err)
	}
	n.note(ctx, brand.ID, "Rental Request Accepted",
		fmt.Sprintf("Your request for %s was accepted by %s", shelf.Name, store.Name),
		"RENTAL_ACCEPTED", req.ID)
}

func (n *lifecycleNotifier) RequestRejected(ctx context.Context, req *domain.RentalRequest, shelf *domain.Shelf, brand, store *domain.Profile) {
	link := n.dashboardLink(domain.ProfileTypeBrand, req.ID)
	result := n.whatsapp.SendTemplate(ctx, brand.PhoneNumber, n.templates.NewRequest,
		[]string{brand.Name, store.Name, shelf.Name, link})
	if !result.Success {
		logger.Warn("WhatsApp dispatch failed", "event", "RENTAL_REJECTED", "rental_request_id", req.ID)
	}
	if err := n.email.SendRentalRejectedNotification(ctx, brand.Email, shelf.Name, store.Name); err != nil {
		logger.Warn("Email dispatch failed", "event", "RENTAL_REJECTED", "error", err)
	}
	n.note(ctx, brand.ID, "Rental Request Rejected",
		fmt.Sprintf("Your request for %s was rejected by %s", shelf.Name, store.Name),
		"RENTAL_REJECTED", req.ID)
}

func (n *lifecycleNotifier) RentalActivated(ctx context.Context, req *domain.RentalRequest, shelf *domain.Shelf, brand, store *domain.Profile, amountCents int64) {
	amount := fmt.Sprintf("%.2f", float64(amountCents)/100)

	// Both parties are informed on activation.
	for _, recipient := range []*domain.Profile{brand, store} {
		link := n.dashboardLink(recipient.Type, req.ID)
		result := n.whatsapp.SendTemplate(ctx, recipient.PhoneNumber, n.templates.Invoice,
			[]string{recipient.Name, shelf.Name, amount, link})
		if !result.Success {
			logger.Warn("WhatsApp dispatch failed", "event", "RENTAL_ACTIVE", "rental_request_id", req.ID, "profile_id", recipient.ID)
		}
		if err := n.email.SendRentalActiveNotification(ctx, recipient.Email, shelf.Name, amountCents); err != nil {
			logger.Warn("Email dispatch failed", "event", "RENTAL_ACTIVE", "error", err)
		}
		n.note(ctx, recipient.ID, "Rental Active",
			fmt.Sprintf("Rental for %s is now active", shelf.Name),
			"RENTAL_ACTIVE", req.ID)
	}
}
