package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"shelfspace-backend/internal/domain"
	"shelfspace-backend/internal/gateway/tap"
	"shelfspace-backend/internal/logger"
	"shelfspace-backend/internal/repository"
	"shelfspace-backend/internal/utils"
)

// GatewayClient is the payment gateway surface the service depends on.
// *tap.Client satisfies it.
type GatewayClient interface {
	CreateCharge(ctx context.Context, req *tap.ChargeRequest) (*tap.Charge, error)
	GetCharge(ctx context.Context, chargeID string) (*tap.Charge, error)
	CreateRefund(ctx context.Context, req *tap.RefundRequest) (*tap.Refund, error)
}

type paymentService struct {
	gateway      GatewayClient
	rentalRepo   repository.RentalRequestRepository
	paymentRepo  repository.PaymentRepository
	settingsRepo repository.SettingsRepository
	rentalSvc    RentalService
	siteURL      string
}

func NewPaymentService(
	gateway GatewayClient,
	rentalRepo repository.RentalRequestRepository,
	paymentRepo repository.PaymentRepository,
	settingsRepo repository.SettingsRepository,
	rentalSvc RentalService,
	siteURL string,
) PaymentService {
	return &paymentService{
		gateway:      gateway,
		rentalRepo:   rentalRepo,
		paymentRepo:  paymentRepo,
		settingsRepo: settingsRepo,
		rentalSvc:    rentalSvc,
		siteURL:      siteURL,
	}
}

// MapChargeStatus is the single authoritative mapping of a gateway charge
// status to internal payment and rental statuses. Case-insensitive; every
// unrecognized status maps to (pending, payment_pending).
func MapChargeStatus(status string) (domain.PaymentStatus, domain.RentalStatus) {
	switch strings.ToUpper(status) {
	case "CAPTURED":
		return domain.PaymentStatusCompleted, domain.RentalStatusActive
	case "FAILED", "DECLINED", "CANCELLED":
		return domain.PaymentStatusFailed, domain.RentalStatusPaymentPending
	case "REFUNDED":
		return domain.PaymentStatusRefunded, domain.RentalStatusCancelled
	default:
		return domain.PaymentStatusPending, domain.RentalStatusPaymentPending
	}
}

func (s *paymentService) CreateCheckoutSession(ctx context.Context, caller *Identity, input CheckoutInput) (*CheckoutSession, error) {
	first, middle, last := tap.SplitCustomerName(input.Customer.Name)
	if first == "" {
		return nil, domain.NewValidationError("customer.name", "first name is required")
	}
	if input.Customer.Email == "" {
		return nil, domain.NewValidationError("customer.email", "email is required")
	}

	amount := input.AmountCents
	metadata := map[string]string{}
	for k, v := range input.Metadata {
		metadata[k] = v
	}

	redirectURL := fmt.Sprintf("%s/payment/status", s.siteURL)

	if input.RentalRequestID > 0 {
		// Rental payments are a brand-owner-only action; guest checkout is
		// allowed only for plain order purchases.
		if caller == nil {
			return nil, domain.NewAuthorizationError("rental payment requires an authenticated caller")
		}
		req, err := s.rentalRepo.GetByID(ctx, input.RentalRequestID)
		if err != nil {
			return nil, err
		}
		if req.BrandProfileID != caller.ProfileID {
			return nil, domain.NewAuthorizationError("caller does not own this rental request")
		}
		if !req.Status.Payable() {
			return nil, domain.NewConflictError(fmt.Sprintf("request in status %s is not payable", req.Status))
		}
		// The charge amount always comes from the request snapshot, never
		// from client input.
		amount = req.TotalAmountCents
		metadata["rentalRequestId"] = fmt.Sprintf("%d", req.ID)
		redirectURL = fmt.Sprintf("%s/shelves/%d?rentalRequestId=%d", s.siteURL, req.ShelfID, req.ID)
	} else if input.OrderID != "" {
		metadata["orderId"] = input.OrderID
		if input.BranchID > 0 {
			redirectURL = fmt.Sprintf("%s/branches/%d/success?orderId=%s", s.siteURL, input.BranchID, input.OrderID)
		}
	} else {
		return nil, domain.NewValidationError("reference", "either rentalRequestId or orderId is required")
	}

	if amount <= 0 {
		return nil, domain.NewValidationError("amount", "must be positive")
	}

	chargeReq := &tap.ChargeRequest{
		Amount:      tap.AmountToGateway(amount),
		Currency:    "SAR",
		Description: input.Description,
		Reference: map[string]string{
			"transaction": tap.NewTransactionReference("txn"),
			"order":       tap.NewTransactionReference("ord"),
		},
		Source:   map[string]string{"id": "src_all"},
		Metadata: metadata,
	}
	chargeReq.Customer.FirstName = first
	chargeReq.Customer.MiddleName = middle
	chargeReq.Customer.LastName = last
	chargeReq.Customer.Email = input.Customer.Email
	chargeReq.Customer.Phone.CountryCode = tap.SaudiCountryCode
	chargeReq.Customer.Phone.Number = tap.NormalizePhone(input.Customer.Phone)
	chargeReq.Redirect.URL = redirectURL

	// No payment or rental row is written here. Persistence happens only
	// after the gateway confirms capture, in Reconcile.
	charge, err := s.gateway.CreateCharge(ctx, chargeReq)
	if err != nil {
		return nil, err
	}

	return &CheckoutSession{
		ChargeID:    charge.ID,
		Status:      charge.Status,
		CheckoutURL: charge.Transaction.URL,
	}, nil
}

func (s *paymentService) Reconcile(ctx context.Context, event ChargeEvent) (*ReconcileOutcome, error) {
	paymentStatus, rentalStatus := MapChargeStatus(event.Status)
	outcome := &ReconcileOutcome{PaymentStatus: paymentStatus, RentalStatus: rentalStatus}

	if event.RentalRequestID == 0 {
		// A charge without a rental reference is not actionable either
		// way; not an error condition worth surfacing to the payer.
		logger.Info("Charge has no rental reference, skipping", "charge_id", event.ChargeID)
		outcome.Skipped = true
		return outcome, nil
	}

	req, err := s.rentalRepo.GetByID(ctx, event.RentalRequestID)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			logger.Info("Charge references unknown rental request, skipping",
				"charge_id", event.ChargeID, "rental_request_id", event.RentalRequestID)
			outcome.Skipped = true
			return outcome, nil
		}
		return nil, err
	}

	switch paymentStatus {
	case domain.PaymentStatusCompleted:
		payment, err := s.recordCompletedPayment(ctx, req, event)
		if err != nil {
			return nil, err
		}
		outcome.Payment = payment
		if _, err := s.rentalSvc.ActivateViaPayment(ctx, req.ID); err != nil {
			var conflict *domain.ConflictError
			if !errors.As(err, &conflict) {
				return nil, err
			}
			// An already-settled request (duplicate delivery racing the
			// first) is not a reconciliation failure.
			logger.Warn("Activation skipped", "rental_request_id", req.ID, "reason", conflict.Reason)
		}

	case domain.PaymentStatusRefunded:
		if err := s.markPaymentRefunded(ctx, req, event); err != nil {
			return nil, err
		}
		if _, err := s.rentalSvc.CancelViaRefund(ctx, req.ID); err != nil {
			return nil, err
		}

	default:
		// Failed or still-pending charges never create a ledger record.
		// The request stays payable so the brand owner may retry.
		if req.Status.Payable() && req.Status != domain.RentalStatusPaymentPending {
			req.Status = domain.RentalStatusPaymentPending
			if err := s.rentalRepo.Update(ctx, req); err != nil {
				return nil, err
			}
		}
	}

	return outcome, nil
}

// recordCompletedPayment persists the ledger record for a captured charge.
// The lookup-then-write keyed on (rentalRequestID, transactionReference)
// keeps reconciliation idempotent under at-least-once webhook delivery: a
// duplicate delivery patches the existing row instead of inserting. The
// lookup is an optimization, not the guarantee: the repository upserts on
// the same key, so two deliveries racing past the lookup still land on a
// single row.
func (s *paymentService) recordCompletedPayment(ctx context.Context, req *domain.RentalRequest, event ChargeEvent) (*domain.Payment, error) {
	now := time.Now()

	existing, err := s.paymentRepo.GetByRequestAndReference(ctx, req.ID, event.ChargeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.Status = domain.PaymentStatusCompleted
		existing.ProcessedDate = &now
		if err := s.paymentRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	amount := event.AmountCents
	if amount == 0 {
		amount = req.TotalAmountCents
	}

	rate, err := s.settingsRepo.GetCommissionRatePercent(ctx)
	if err != nil {
		return nil, err
	}
	fee := utils.PlatformFeeCents(amount, rate)

	payment := &domain.Payment{
		RentalRequestID:      req.ID,
		FromProfileID:        req.BrandProfileID,
		ToProfileID:          nil, // platform is the payee
		Type:                 domain.PaymentTypeBrandPayment,
		AmountCents:          amount,
		PlatformFeeCents:     fee,
		NetAmountCents:       amount - fee,
		TransactionReference: event.ChargeID,
		PaymentMethod:        event.PaymentMethod,
		Status:               domain.PaymentStatusCompleted,
		PaymentDate:          now,
		ProcessedDate:        &now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) markPaymentRefunded(ctx context.Context, req *domain.RentalRequest, event ChargeEvent) error {
	existing, err := s.paymentRepo.GetByRequestAndReference(ctx, req.ID, event.ChargeID)
	if err != nil {
		return err
	}
	if existing == nil {
		logger.Warn("Refund for unknown payment", "charge_id", event.ChargeID, "rental_request_id", req.ID)
		return nil
	}
	now := time.Now()
	existing.Status = domain.PaymentStatusRefunded
	existing.ProcessedDate = &now
	return s.paymentRepo.Update(ctx, existing)
}

func (s *paymentService) VerifyAndConfirm(ctx context.Context, caller Identity, chargeID string) (*ReconcileOutcome, error) {
	charge, err := s.gateway.GetCharge(ctx, chargeID)
	if err != nil {
		return nil, err
	}

	event := chargeToEvent(charge)
	if event.RentalRequestID > 0 {
		req, err := s.rentalRepo.GetByID(ctx, event.RentalRequestID)
		if err == nil && req.BrandProfileID != caller.ProfileID && req.StoreProfileID != caller.ProfileID {
			return nil, domain.NewAuthorizationError("caller is not a party to this rental request")
		}
	}

	return s.Reconcile(ctx, event)
}

func (s *paymentService) Refund(ctx context.Context, caller Identity, chargeID string, amountCents int64, reason string) (*tap.Refund, error) {
	if caller.ProfileID == 0 {
		return nil, domain.NewAuthorizationError("refund requires an authenticated caller")
	}

	charge, err := s.gateway.GetCharge(ctx, chargeID)
	if err != nil {
		return nil, err
	}

	amount := amountCents
	if amount == 0 {
		amount = tap.AmountFromGateway(charge.Amount)
	}

	refund, err := s.gateway.CreateRefund(ctx, &tap.RefundRequest{
		ChargeID: chargeID,
		Amount:   tap.AmountToGateway(amount),
		Currency: "SAR",
		Reason:   reason,
	})
	if err != nil {
		return nil, err
	}

	event := chargeToEvent(charge)
	event.Status = "REFUNDED"
	if _, err := s.Reconcile(ctx, event); err != nil {
		// The gateway refund already succeeded; reconciliation will also
		// converge through the refund webhook.
		logger.Error("Refund reconciliation failed", "charge_id", chargeID, "error", err)
	}

	return refund, nil
}

func chargeToEvent(charge *tap.Charge) ChargeEvent {
	event := ChargeEvent{
		ChargeID:    charge.ID,
		Status:      charge.Status,
		AmountCents: tap.AmountFromGateway(charge.Amount),
	}
	// The reference must be a whole decimal number; anything else means the
	// charge does not belong to a rental and reconciliation skips it.
	if raw, ok := charge.Metadata["rentalRequestId"]; ok {
		if id, err := strconv.ParseInt(raw, 10, 32); err == nil {
			event.RentalRequestID = int32(id)
		}
	}
	return event
}
