package service

import (
	"context"
	"fmt"
	"time"

	"shelfspace-backend/internal/domain"
	"shelfspace-backend/internal/gateway/tap"
)

// In-memory fakes shared by the service tests. Not safe for concurrent use;
// each test builds its own instances.

type fakeRentalRepo struct {
	requests map[int32]*domain.RentalRequest
	nextID   int32
	updates  int
	// shelves mirrors the shelf flip that the real Activate performs in its
	// transaction; nil when a test does not care about shelf state.
	shelves *fakeShelfRepo
}

func newFakeRentalRepo(reqs ...*domain.RentalRequest) *fakeRentalRepo {
	repo := &fakeRentalRepo{requests: map[int32]*domain.RentalRequest{}, nextID: 1}
	for _, req := range reqs {
		if req.ID >= repo.nextID {
			repo.nextID = req.ID + 1
		}
		copied := *req
		repo.requests[req.ID] = &copied
	}
	return repo
}

func (r *fakeRentalRepo) Create(_ context.Context, req *domain.RentalRequest) error {
	req.ID = r.nextID
	r.nextID++
	req.CreatedOn = time.Now()
	copied := *req
	r.requests[req.ID] = &copied
	return nil
}

func (r *fakeRentalRepo) GetByID(_ context.Context, id int32) (*domain.RentalRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, domain.NewNotFoundError("rental request", fmt.Sprintf("%d", id))
	}
	copied := *req
	return &copied, nil
}

func (r *fakeRentalRepo) Update(_ context.Context, req *domain.RentalRequest) error {
	if _, ok := r.requests[req.ID]; !ok {
		return domain.NewNotFoundError("rental request", fmt.Sprintf("%d", req.ID))
	}
	r.updates++
	copied := *req
	r.requests[req.ID] = &copied
	return nil
}

func (r *fakeRentalRepo) HasActiveForShelf(_ context.Context, shelfID, excludeID int32) (bool, error) {
	for _, req := range r.requests {
		if req.ShelfID == shelfID && req.ID != excludeID && req.Status == domain.RentalStatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRentalRepo) Accept(_ context.Context, id int32) (*domain.RentalRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, domain.NewNotFoundError("rental request", fmt.Sprintf("%d", id))
	}
	if req.Status != domain.RentalStatusPending {
		return nil, domain.NewConflictError("request is not pending")
	}
	for _, other := range r.requests {
		if other.ShelfID == req.ShelfID && other.ID != req.ID && other.Status == domain.RentalStatusActive {
			return nil, domain.NewConflictError("shelf already has an active rental")
		}
	}
	req.Status = domain.RentalStatusAccepted
	r.updates++
	copied := *req
	return &copied, nil
}

func (r *fakeRentalRepo) Activate(ctx context.Context, id int32) (*domain.RentalRequest, bool, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, false, domain.NewNotFoundError("rental request", fmt.Sprintf("%d", id))
	}
	if req.Status == domain.RentalStatusActive {
		copied := *req
		return &copied, false, nil
	}
	if !req.Status.Payable() && req.Status != domain.RentalStatusPending {
		return nil, false, domain.NewConflictError(fmt.Sprintf("request in status %s cannot be activated", req.Status))
	}
	for _, other := range r.requests {
		if other.ShelfID == req.ShelfID && other.ID != req.ID && other.Status == domain.RentalStatusActive {
			return nil, false, domain.NewConflictError("shelf already has an active rental")
		}
	}
	req.Status = domain.RentalStatusActive
	r.updates++
	if r.shelves != nil {
		_ = r.shelves.UpdateStatus(ctx, req.ShelfID, domain.ShelfStatusRented)
	}
	copied := *req
	return &copied, true, nil
}

func (r *fakeRentalRepo) ListByBrand(_ context.Context, brandProfileID int32, status string, _, _ int32) ([]domain.RentalRequest, int32, error) {
	var out []domain.RentalRequest
	for _, req := range r.requests {
		if req.BrandProfileID == brandProfileID && (status == "" || string(req.Status) == status) {
			out = append(out, *req)
		}
	}
	return out, int32(len(out)), nil
}

func (r *fakeRentalRepo) ListByStore(_ context.Context, storeProfileID int32, status string, _, _ int32) ([]domain.RentalRequest, int32, error) {
	var out []domain.RentalRequest
	for _, req := range r.requests {
		if req.StoreProfileID == storeProfileID && (status == "" || string(req.Status) == status) {
			out = append(out, *req)
		}
	}
	return out, int32(len(out)), nil
}

func (r *fakeRentalRepo) ExpireStale(_ context.Context, cutoff time.Time) ([]int32, error) {
	var ids []int32
	for _, req := range r.requests {
		eligible := req.Status == domain.RentalStatusPending || req.Status == domain.RentalStatusAccepted
		if eligible && req.CreatedOn.Before(cutoff) {
			req.Status = domain.RentalStatusExpired
			ids = append(ids, req.ID)
		}
	}
	return ids, nil
}

func (r *fakeRentalRepo) ListElapsedActive(_ context.Context, now time.Time) ([]domain.RentalRequest, error) {
	var out []domain.RentalRequest
	for _, req := range r.requests {
		if req.Status == domain.RentalStatusActive && req.EndDate.Before(now) {
			out = append(out, *req)
		}
	}
	return out, nil
}

type fakeShelfRepo struct {
	shelves map[int32]*domain.Shelf
}

func newFakeShelfRepo(shelves ...*domain.Shelf) *fakeShelfRepo {
	repo := &fakeShelfRepo{shelves: map[int32]*domain.Shelf{}}
	for _, shelf := range shelves {
		copied := *shelf
		repo.shelves[shelf.ID] = &copied
	}
	return repo
}

func (r *fakeShelfRepo) Create(_ context.Context, shelf *domain.Shelf) error {
	copied := *shelf
	r.shelves[shelf.ID] = &copied
	return nil
}

func (r *fakeShelfRepo) GetByID(_ context.Context, id int32) (*domain.Shelf, error) {
	shelf, ok := r.shelves[id]
	if !ok {
		return nil, domain.NewNotFoundError("shelf", fmt.Sprintf("%d", id))
	}
	copied := *shelf
	return &copied, nil
}

func (r *fakeShelfRepo) UpdateStatus(_ context.Context, id int32, status domain.ShelfStatus) error {
	shelf, ok := r.shelves[id]
	if !ok {
		return domain.NewNotFoundError("shelf", fmt.Sprintf("%d", id))
	}
	shelf.Status = status
	return nil
}

func (r *fakeShelfRepo) ListByBranch(_ context.Context, branchID int32) ([]domain.Shelf, error) {
	var out []domain.Shelf
	for _, shelf := range r.shelves {
		if shelf.BranchID == branchID {
			out = append(out, *shelf)
		}
	}
	return out, nil
}

type fakeBranchRepo struct {
	branches map[int32]*domain.Branch
}

func newFakeBranchRepo(branches ...*domain.Branch) *fakeBranchRepo {
	repo := &fakeBranchRepo{branches: map[int32]*domain.Branch{}}
	for _, branch := range branches {
		copied := *branch
		repo.branches[branch.ID] = &copied
	}
	return repo
}

func (r *fakeBranchRepo) Create(_ context.Context, branch *domain.Branch) error {
	copied := *branch
	r.branches[branch.ID] = &copied
	return nil
}

func (r *fakeBranchRepo) GetByID(_ context.Context, id int32) (*domain.Branch, error) {
	branch, ok := r.branches[id]
	if !ok {
		return nil, domain.NewNotFoundError("branch", fmt.Sprintf("%d", id))
	}
	copied := *branch
	return &copied, nil
}

func (r *fakeBranchRepo) ListActive(_ context.Context) ([]domain.Branch, error) {
	var out []domain.Branch
	for _, branch := range r.branches {
		if branch.IsActive {
			out = append(out, *branch)
		}
	}
	return out, nil
}

type fakeProfileRepo struct {
	profiles map[int32]*domain.Profile
}

func newFakeProfileRepo(profiles ...*domain.Profile) *fakeProfileRepo {
	repo := &fakeProfileRepo{profiles: map[int32]*domain.Profile{}}
	for _, profile := range profiles {
		copied := *profile
		repo.profiles[profile.ID] = &copied
	}
	return repo
}

func (r *fakeProfileRepo) Create(_ context.Context, profile *domain.Profile) error {
	profile.ID = int32(len(r.profiles) + 1)
	copied := *profile
	r.profiles[profile.ID] = &copied
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id int32) (*domain.Profile, error) {
	profile, ok := r.profiles[id]
	if !ok {
		return nil, domain.NewNotFoundError("profile", fmt.Sprintf("%d", id))
	}
	copied := *profile
	return &copied, nil
}

func (r *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	for _, profile := range r.profiles {
		if profile.Email == email {
			copied := *profile
			return &copied, nil
		}
	}
	return nil, domain.NewNotFoundError("profile", email)
}

type fakePaymentRepo struct {
	payments []*domain.Payment
	creates  int
	updates  int
}

// Create enforces the same upsert-on-(request, reference) contract as the
// real repository: a duplicate key patches the existing row.
func (r *fakePaymentRepo) Create(_ context.Context, payment *domain.Payment) error {
	for _, existing := range r.payments {
		if existing.RentalRequestID == payment.RentalRequestID && existing.TransactionReference == payment.TransactionReference {
			existing.Status = payment.Status
			existing.ProcessedDate = payment.ProcessedDate
			payment.ID = existing.ID
			return nil
		}
	}
	payment.ID = int32(len(r.payments) + 1)
	r.creates++
	copied := *payment
	r.payments = append(r.payments, &copied)
	return nil
}

func (r *fakePaymentRepo) GetByRequestAndReference(_ context.Context, rentalRequestID int32, ref string) (*domain.Payment, error) {
	for _, payment := range r.payments {
		if payment.RentalRequestID == rentalRequestID && payment.TransactionReference == ref {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) Update(_ context.Context, payment *domain.Payment) error {
	for i, existing := range r.payments {
		if existing.ID == payment.ID {
			r.updates++
			copied := *payment
			r.payments[i] = &copied
			return nil
		}
	}
	return domain.NewNotFoundError("payment", fmt.Sprintf("%d", payment.ID))
}

func (r *fakePaymentRepo) ListByRequest(_ context.Context, rentalRequestID int32) ([]domain.Payment, error) {
	var out []domain.Payment
	for _, payment := range r.payments {
		if payment.RentalRequestID == rentalRequestID {
			out = append(out, *payment)
		}
	}
	return out, nil
}

type fakeSettingsRepo struct {
	rate float64
}

func (r *fakeSettingsRepo) GetCommissionRatePercent(_ context.Context) (float64, error) {
	if r.rate == 0 {
		return domain.DefaultCommissionRatePercent, nil
	}
	return r.rate, nil
}

type fakeNotificationRepo struct {
	notes []*domain.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, note *domain.Notification) error {
	note.ID = int32(len(r.notes) + 1)
	copied := *note
	r.notes = append(r.notes, &copied)
	return nil
}

func (r *fakeNotificationRepo) List(_ context.Context, profileID int32, _, _ int32) ([]domain.Notification, int32, error) {
	var out []domain.Notification
	for _, note := range r.notes {
		if note.ProfileID == profileID {
			out = append(out, *note)
		}
	}
	return out, int32(len(out)), nil
}

func (r *fakeNotificationRepo) MarkAsRead(_ context.Context, id, profileID int32) error {
	for _, note := range r.notes {
		if note.ID == id && note.ProfileID == profileID {
			note.IsRead = true
			return nil
		}
	}
	return domain.NewNotFoundError("notification", fmt.Sprintf("%d", id))
}

// fakeNotifier records which lifecycle events fired.
type fakeNotifier struct {
	created   int
	accepted  int
	rejected  int
	activated int
}

func (n *fakeNotifier) RequestCreated(context.Context, *domain.RentalRequest, *domain.Shelf, *domain.Profile, *domain.Profile) {
	n.created++
}

func (n *fakeNotifier) RequestAccepted(context.Context, *domain.RentalRequest, *domain.Shelf, *domain.Profile, *domain.Profile) {
	n.accepted++
}

func (n *fakeNotifier) RequestRejected(context.Context, *domain.RentalRequest, *domain.Shelf, *domain.Profile, *domain.Profile) {
	n.rejected++
}

func (n *fakeNotifier) RentalActivated(context.Context, *domain.RentalRequest, *domain.Shelf, *domain.Profile, *domain.Profile, int64) {
	n.activated++
}

// fakeGateway scripts gateway responses.
type fakeGateway struct {
	charge       *tap.Charge
	chargeErr    error
	refund       *tap.Refund
	refundErr    error
	createCalls  int
	lastChargeIn *tap.ChargeRequest
	lastRefundIn *tap.RefundRequest
}

func (g *fakeGateway) CreateCharge(_ context.Context, req *tap.ChargeRequest) (*tap.Charge, error) {
	g.createCalls++
	g.lastChargeIn = req
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	return g.charge, nil
}

func (g *fakeGateway) GetCharge(_ context.Context, _ string) (*tap.Charge, error) {
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	return g.charge, nil
}

func (g *fakeGateway) CreateRefund(_ context.Context, req *tap.RefundRequest) (*tap.Refund, error) {
	g.lastRefundIn = req
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	return g.refund, nil
}
