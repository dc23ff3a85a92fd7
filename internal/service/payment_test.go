package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelfspace-backend/internal/domain"
	"shelfspace-backend/internal/gateway/tap"
)

const testSiteURL = "https://shelfspace.example"

type paymentFixture struct {
	svc         PaymentService
	gateway     *fakeGateway
	rentalRepo  *fakeRentalRepo
	paymentRepo *fakePaymentRepo
	shelfRepo   *fakeShelfRepo
	notifier    *fakeNotifier
}

func newPaymentFixture(t *testing.T, requests ...*domain.RentalRequest) *paymentFixture {
	t.Helper()

	rental := newRentalFixture(t, requests...)
	gateway := &fakeGateway{}
	paymentRepo := &fakePaymentRepo{}

	svc := NewPaymentService(
		gateway,
		rental.rentalRepo,
		paymentRepo,
		&fakeSettingsRepo{},
		rental.svc,
		testSiteURL,
	)
	return &paymentFixture{
		svc:         svc,
		gateway:     gateway,
		rentalRepo:  rental.rentalRepo,
		paymentRepo: paymentRepo,
		shelfRepo:   rental.shelfRepo,
		notifier:    rental.notifier,
	}
}

func TestMapChargeStatus(t *testing.T) {
	tests := []struct {
		status  string
		payment domain.PaymentStatus
		rental  domain.RentalStatus
	}{
		{"CAPTURED", domain.PaymentStatusCompleted, domain.RentalStatusActive},
		{"captured", domain.PaymentStatusCompleted, domain.RentalStatusActive},
		{"FAILED", domain.PaymentStatusFailed, domain.RentalStatusPaymentPending},
		{"DECLINED", domain.PaymentStatusFailed, domain.RentalStatusPaymentPending},
		{"CANCELLED", domain.PaymentStatusFailed, domain.RentalStatusPaymentPending},
		{"REFUNDED", domain.PaymentStatusRefunded, domain.RentalStatusCancelled},
		{"INITIATED", domain.PaymentStatusPending, domain.RentalStatusPaymentPending},
		{"IN_PROGRESS", domain.PaymentStatusPending, domain.RentalStatusPaymentPending},
		{"", domain.PaymentStatusPending, domain.RentalStatusPaymentPending},
		{"SOMETHING_NEW", domain.PaymentStatusPending, domain.RentalStatusPaymentPending},
	}

	for _, tc := range tests {
		t.Run("Status_"+tc.status, func(t *testing.T) {
			payment, rental := MapChargeStatus(tc.status)
			assert.Equal(t, tc.payment, payment)
			assert.Equal(t, tc.rental, rental)
		})
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	ctx := context.Background()

	chargeResult := &tap.Charge{ID: "chg_1", Status: "INITIATED"}
	chargeResult.Transaction.URL = "https://checkout.example/chg_1"

	t.Run("Rental_Flow_Uses_Snapshot_Amount", func(t *testing.T) {
		req := pendingRequest(1)
		req.Status = domain.RentalStatusAccepted
		fx := newPaymentFixture(t, req)
		fx.gateway.charge = chargeResult

		session, err := fx.svc.CreateCheckoutSession(ctx, &brandCaller, CheckoutInput{
			AmountCents:     999, // ignored in favor of the snapshot
			Customer:        CheckoutCustomer{Name: "Sara Ahmed", Email: "sara@example.com", Phone: "0512345678"},
			RentalRequestID: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, "chg_1", session.ChargeID)
		assert.Equal(t, "https://checkout.example/chg_1", session.CheckoutURL)

		sent := fx.gateway.lastChargeIn
		assert.Equal(t, tap.AmountToGateway(req.TotalAmountCents), sent.Amount)
		assert.Equal(t, "SAR", sent.Currency)
		assert.Equal(t, "1", sent.Metadata["rentalRequestId"])
		assert.Equal(t, "Sara", sent.Customer.FirstName)
		assert.Equal(t, "Ahmed", sent.Customer.LastName)
		assert.Equal(t, "512345678", sent.Customer.Phone.Number)
		assert.Equal(t, testSiteURL+"/shelves/10?rentalRequestId=1", sent.Redirect.URL)
		// No ledger write before the gateway confirms capture.
		assert.Equal(t, 0, fx.paymentRepo.creates)
	})

	t.Run("Rental_Flow_Requires_Authentication", func(t *testing.T) {
		req := pendingRequest(1)
		req.Status = domain.RentalStatusAccepted
		fx := newPaymentFixture(t, req)
		fx.gateway.charge = chargeResult

		_, err := fx.svc.CreateCheckoutSession(ctx, nil, CheckoutInput{
			Customer:        CheckoutCustomer{Name: "Sara Ahmed", Email: "sara@example.com"},
			RentalRequestID: 1,
		})
		var authz *domain.AuthorizationError
		assert.True(t, errors.As(err, &authz))
	})

	t.Run("Rental_Flow_Requires_Ownership", func(t *testing.T) {
		req := pendingRequest(1)
		req.Status = domain.RentalStatusAccepted
		fx := newPaymentFixture(t, req)
		fx.gateway.charge = chargeResult

		stranger := Identity{ProfileID: 99, Type: domain.ProfileTypeBrand}
		_, err := fx.svc.CreateCheckoutSession(ctx, &stranger, CheckoutInput{
			Customer:        CheckoutCustomer{Name: "Sara Ahmed", Email: "sara@example.com"},
			RentalRequestID: 1,
		})
		var authz *domain.AuthorizationError
		assert.True(t, errors.As(err, &authz))
	})

	t.Run("Unpayable_Status_Rejected", func(t *testing.T) {
		fx := newPaymentFixture(t, pendingRequest(1)) // still PENDING
		fx.gateway.charge = chargeResult

		_, err := fx.svc.CreateCheckoutSession(ctx, &brandCaller, CheckoutInput{
			Customer:        CheckoutCustomer{Name: "Sara Ahmed", Email: "sara@example.com"},
			RentalRequestID: 1,
		})
		var conflict *domain.ConflictError
		assert.True(t, errors.As(err, &conflict))
	})

	t.Run("Guest_Order_Flow", func(t *testing.T) {
		fx := newPaymentFixture(t)
		fx.gateway.charge = chargeResult

		session, err := fx.svc.CreateCheckoutSession(ctx, nil, CheckoutInput{
			AmountCents: 7_500,
			Customer:    CheckoutCustomer{Name: "Walk In", Email: "guest@example.com", Phone: "garbage"},
			OrderID:     "ord_55",
			BranchID:    20,
		})
		require.NoError(t, err)
		assert.Equal(t, "chg_1", session.ChargeID)

		sent := fx.gateway.lastChargeIn
		assert.Equal(t, "ord_55", sent.Metadata["orderId"])
		assert.Equal(t, tap.FallbackPhoneNumber, sent.Customer.Phone.Number)
		assert.Equal(t, testSiteURL+"/branches/20/success?orderId=ord_55", sent.Redirect.URL)
	})

	t.Run("Missing_Reference_Rejected", func(t *testing.T) {
		fx := newPaymentFixture(t)
		_, err := fx.svc.CreateCheckoutSession(ctx, nil, CheckoutInput{
			AmountCents: 7_500,
			Customer:    CheckoutCustomer{Name: "Walk In", Email: "guest@example.com"},
		})
		var validation *domain.ValidationError
		assert.True(t, errors.As(err, &validation))
	})

	t.Run("Missing_Name_Rejected", func(t *testing.T) {
		fx := newPaymentFixture(t)
		_, err := fx.svc.CreateCheckoutSession(ctx, nil, CheckoutInput{
			AmountCents: 7_500,
			Customer:    CheckoutCustomer{Email: "guest@example.com"},
			OrderID:     "ord_55",
		})
		var validation *domain.ValidationError
		assert.True(t, errors.As(err, &validation))
	})
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()

	capturedEvent := func(requestID int32) ChargeEvent {
		return ChargeEvent{
			ChargeID:        "chg_1",
			Status:          "CAPTURED",
			AmountCents:     200_000,
			RentalRequestID: requestID,
		}
	}

	t.Run("Captured_Charge_Activates_And_Records_Payment", func(t *testing.T) {
		req := pendingRequest(1)
		req.Status = domain.RentalStatusAccepted
		fx := newPaymentFixture(t, req)

		outcome, err := fx.svc.Reconcile(ctx, capturedEvent(1))
		require.NoError(t, err)
		assert.False(t, outcome.Skipped)
		assert.Equal(t, domain.PaymentStatusCompleted, outcome.PaymentStatus)
		assert.Equal(t, domain.RentalStatusActive, outcome.RentalStatus)

		require.NotNil(t, outcome.Payment)
		payment := outcome.Payment
		assert.Equal(t, int64(200_000), payment.AmountCents)
		// Default 10% commission.
		assert.Equal(t, int64(20_000), payment.PlatformFeeCents)
		assert.Equal(t, int64(180_000), payment.NetAmountCents)
		assert.Equal(t, payment.AmountCents, payment.PlatformFeeCents+payment.NetAmountCents)
		assert.Nil(t, payment.ToProfileID)
		assert.Equal(t, "chg_1", payment.TransactionReference)

		updated, err := fx.rentalRepo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusActive, updated.Status)
	})

	t.Run("Duplicate_Delivery_Is_Idempotent", func(t *testing.T) {
		req := pendingRequest(1)
		req.Status = domain.RentalStatusAccepted
		fx := newPaymentFixture(t, req)

		first, err := fx.svc.Reconcile(ctx, capturedEvent(1))
		require.NoError(t, err)
		second, err := fx.svc.Reconcile(ctx, capturedEvent(1))
		require.NoError(t, err)

		// Exactly one ledger row; the replay patches it in place.
		assert.Equal(t, 1, fx.paymentRepo.creates)
		assert.Len(t, fx.paymentRepo.payments, 1)
		assert.Equal(t, first.Payment.ID, second.Payment.ID)
		assert.Equal(t, 1, fx.notifier.activated)
	})

	t.Run("Writers_Racing_Past_The_Lookup_Collapse_To_One_Row", func(t *testing.T) {
		// Two deliveries can both see an empty lookup before either has
		// written; the ledger keys on (request, reference) so the second
		// insert must patch the first row, never add one.
		fx := newPaymentFixture(t)
		now := time.Now()
		first := &domain.Payment{RentalRequestID: 1, TransactionReference: "chg_1", Status: domain.PaymentStatusCompleted, AmountCents: 200_000, PaymentDate: now}
		second := &domain.Payment{RentalRequestID: 1, TransactionReference: "chg_1", Status: domain.PaymentStatusCompleted, AmountCents: 200_000, PaymentDate: now}

		require.NoError(t, fx.paymentRepo.Create(ctx, first))
		require.NoError(t, fx.paymentRepo.Create(ctx, second))

		assert.Len(t, fx.paymentRepo.payments, 1)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("Missing_Reference_Skips", func(t *testing.T) {
		fx := newPaymentFixture(t)
		outcome, err := fx.svc.Reconcile(ctx, ChargeEvent{ChargeID: "chg_x", Status: "CAPTURED"})
		require.NoError(t, err)
		assert.True(t, outcome.Skipped)
		assert.Equal(t, 0, fx.paymentRepo.creates)
	})

	t.Run("Unknown_Request_Skips", func(t *testing.T) {
		fx := newPaymentFixture(t)
		outcome, err := fx.svc.Reconcile(ctx, capturedEvent(404))
		require.NoError(t, err)
		assert.True(t, outcome.Skipped)
	})

	t.Run("Failed_Charge_Keeps_Request_Payable", func(t *testing.T) {
		req := pendingRequest(1)
		req.Status = domain.RentalStatusAccepted
		fx := newPaymentFixture(t, req)

		outcome, err := fx.svc.Reconcile(ctx, ChargeEvent{
			ChargeID:        "chg_1",
			Status:          "DECLINED",
			RentalRequestID: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusFailed, outcome.PaymentStatus)
		assert.Equal(t, 0, fx.paymentRepo.creates)

		updated, err := fx.rentalRepo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusPaymentPending, updated.Status)
		assert.True(t, updated.Status.Payable())
	})

	t.Run("Zero_Amount_Falls_Back_To_Snapshot", func(t *testing.T) {
		req := pendingRequest(1)
		req.Status = domain.RentalStatusAccepted
		fx := newPaymentFixture(t, req)

		event := capturedEvent(1)
		event.AmountCents = 0
		outcome, err := fx.svc.Reconcile(ctx, event)
		require.NoError(t, err)
		assert.Equal(t, req.TotalAmountCents, outcome.Payment.AmountCents)
	})

	t.Run("Refunded_Charge_Cancels_And_Frees_Shelf", func(t *testing.T) {
		req := pendingRequest(1)
		req.Status = domain.RentalStatusAccepted
		fx := newPaymentFixture(t, req)

		_, err := fx.svc.Reconcile(ctx, capturedEvent(1))
		require.NoError(t, err)

		event := capturedEvent(1)
		event.Status = "REFUNDED"
		outcome, err := fx.svc.Reconcile(ctx, event)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusRefunded, outcome.PaymentStatus)

		updated, err := fx.rentalRepo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusCancelled, updated.Status)

		shelf, err := fx.shelfRepo.GetByID(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, domain.ShelfStatusActive, shelf.Status)

		assert.Equal(t, domain.PaymentStatusRefunded, fx.paymentRepo.payments[0].Status)
	})
}

func TestVerifyAndConfirm(t *testing.T) {
	ctx := context.Background()

	t.Run("Party_Verifies_And_Activates", func(t *testing.T) {
		req := pendingRequest(1)
		req.Status = domain.RentalStatusAccepted
		fx := newPaymentFixture(t, req)
		fx.gateway.charge = &tap.Charge{
			ID:       "chg_1",
			Status:   "CAPTURED",
			Amount:   2000.00,
			Metadata: map[string]string{"rentalRequestId": "1"},
		}

		outcome, err := fx.svc.VerifyAndConfirm(ctx, brandCaller, "chg_1")
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusCompleted, outcome.PaymentStatus)

		updated, err := fx.rentalRepo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusActive, updated.Status)
	})

	t.Run("Malformed_Reference_Skips", func(t *testing.T) {
		// "12abc" must not be read as request 12.
		fx := newPaymentFixture(t)
		fx.gateway.charge = &tap.Charge{
			ID:       "chg_1",
			Status:   "CAPTURED",
			Amount:   2000.00,
			Metadata: map[string]string{"rentalRequestId": "12abc"},
		}

		outcome, err := fx.svc.VerifyAndConfirm(ctx, brandCaller, "chg_1")
		require.NoError(t, err)
		assert.True(t, outcome.Skipped)
		assert.Equal(t, 0, fx.paymentRepo.creates)
	})

	t.Run("Stranger_Rejected", func(t *testing.T) {
		req := pendingRequest(1)
		req.Status = domain.RentalStatusAccepted
		fx := newPaymentFixture(t, req)
		fx.gateway.charge = &tap.Charge{
			ID:       "chg_1",
			Status:   "CAPTURED",
			Metadata: map[string]string{"rentalRequestId": "1"},
		}

		stranger := Identity{ProfileID: 99, Type: domain.ProfileTypeBrand}
		_, err := fx.svc.VerifyAndConfirm(ctx, stranger, "chg_1")
		var authz *domain.AuthorizationError
		assert.True(t, errors.As(err, &authz))
	})
}

func TestRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("Refund_Submits_And_Reconciles", func(t *testing.T) {
		req := pendingRequest(1)
		req.Status = domain.RentalStatusActive
		fx := newPaymentFixture(t, req)
		require.NoError(t, fx.paymentRepo.Create(ctx, &domain.Payment{
			RentalRequestID:      1,
			TransactionReference: "chg_1",
			Status:               domain.PaymentStatusCompleted,
			AmountCents:          200_000,
		}))
		fx.gateway.charge = &tap.Charge{
			ID:       "chg_1",
			Status:   "CAPTURED",
			Amount:   2000.00,
			Metadata: map[string]string{"rentalRequestId": "1"},
		}
		fx.gateway.refund = &tap.Refund{ID: "re_1", Status: "PENDING", Amount: 2000.00}

		refund, err := fx.svc.Refund(ctx, brandCaller, "chg_1", 0, "requested_by_customer")
		require.NoError(t, err)
		assert.Equal(t, "re_1", refund.ID)
		// Amount defaults to the full charge amount.
		assert.Equal(t, 2000.00, fx.gateway.lastRefundIn.Amount)

		updated, err := fx.rentalRepo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusCancelled, updated.Status)
		assert.Equal(t, domain.PaymentStatusRefunded, fx.paymentRepo.payments[0].Status)
	})

	t.Run("Anonymous_Rejected", func(t *testing.T) {
		fx := newPaymentFixture(t)
		_, err := fx.svc.Refund(ctx, Identity{}, "chg_1", 0, "")
		var authz *domain.AuthorizationError
		assert.True(t, errors.As(err, &authz))
	})
}
