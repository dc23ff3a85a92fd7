package service

import (
	"context"
	"fmt"
	"time"

	"shelfspace-backend/internal/domain"
	"shelfspace-backend/internal/logger"
	"shelfspace-backend/internal/repository"
	"shelfspace-backend/internal/utils"
)

type rentalService struct {
	rentalRepo repository.RentalRequestRepository
	shelfRepo  repository.ShelfRepository
	branchRepo repository.BranchRepository
	profRepo   repository.ProfileRepository
	notifier   LifecycleNotifier
}

func NewRentalService(
	rentalRepo repository.RentalRequestRepository,
	shelfRepo repository.ShelfRepository,
	branchRepo repository.BranchRepository,
	profRepo repository.ProfileRepository,
	notifier LifecycleNotifier,
) RentalService {
	return &rentalService{
		rentalRepo: rentalRepo,
		shelfRepo:  shelfRepo,
		branchRepo: branchRepo,
		profRepo:   profRepo,
		notifier:   notifier,
	}
}

func (s *rentalService) CreateRentalRequest(ctx context.Context, caller Identity, input CreateRentalInput) (*domain.RentalRequest, error) {
	if !caller.IsBrand() {
		return nil, domain.NewAuthorizationError("only brand profiles can create rental requests")
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, domain.NewValidationError("end_date", "must be after start date")
	}

	shelf, err := s.shelfRepo.GetByID(ctx, input.ShelfID)
	if err != nil {
		return nil, err
	}
	if shelf.Status != domain.ShelfStatusActive {
		return nil, domain.NewConflictError("shelf is not available for rent")
	}
	active, err := s.rentalRepo.HasActiveForShelf(ctx, shelf.ID, 0)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, domain.NewConflictError("shelf already has an active rental")
	}

	branch, err := s.branchRepo.GetByID(ctx, shelf.BranchID)
	if err != nil {
		return nil, err
	}

	// Snapshot the price and product lines at creation time so later
	// shelf edits do not retroactively alter this request.
	rentCost, err := utils.RentCostCents(input.StartDate, input.EndDate, shelf.MonthlyPriceCents)
	if err != nil {
		return nil, domain.NewValidationError("dates", err.Error())
	}
	total := rentCost
	for _, p := range input.SelectedProducts {
		if p.Quantity <= 0 {
			return nil, domain.NewValidationError("selected_products", "quantity must be positive")
		}
		total += p.LineTotalCents()
	}

	req := &domain.RentalRequest{
		ShelfID:           shelf.ID,
		BranchID:          branch.ID,
		BrandProfileID:    caller.ProfileID,
		StoreProfileID:    branch.StoreProfileID,
		Status:            domain.RentalStatusPending,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		MonthlyPriceCents: shelf.MonthlyPriceCents,
		TotalAmountCents:  total,
		SelectedProducts:  input.SelectedProducts,
	}
	if err := s.rentalRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.dispatch(ctx, req, shelf, func(brand, store *domain.Profile) {
		s.notifier.RequestCreated(ctx, req, shelf, brand, store)
	})

	return req, nil
}

func (s *rentalService) AcceptRentalRequest(ctx context.Context, caller Identity, requestID int32) (*domain.RentalRequest, error) {
	if _, err := s.loadForStore(ctx, caller, requestID); err != nil {
		return nil, err
	}

	// The pending check and the single-active-rental re-check run in the
	// repository, in the same transaction as the status write. Acceptance
	// does not mark the shelf rented; that happens on payment activation.
	req, err := s.rentalRepo.Accept(ctx, requestID)
	if err != nil {
		return nil, err
	}

	shelf, _ := s.shelfRepo.GetByID(ctx, req.ShelfID)
	if shelf != nil {
		s.dispatch(ctx, req, shelf, func(brand, store *domain.Profile) {
			s.notifier.RequestAccepted(ctx, req, shelf, brand, store)
		})
	}

	return req, nil
}

func (s *rentalService) RejectRentalRequest(ctx context.Context, caller Identity, requestID int32, reason string) (*domain.RentalRequest, error) {
	req, err := s.loadForStore(ctx, caller, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.RentalStatusPending {
		return nil, domain.NewConflictError("request is not pending")
	}

	req.Status = domain.RentalStatusRejected
	req.RejectionReason = reason
	if err := s.rentalRepo.Update(ctx, req); err != nil {
		return nil, err
	}

	shelf, _ := s.shelfRepo.GetByID(ctx, req.ShelfID)
	if shelf != nil {
		s.dispatch(ctx, req, shelf, func(brand, store *domain.Profile) {
			s.notifier.RequestRejected(ctx, req, shelf, brand, store)
		})
	}

	return req, nil
}

func (s *rentalService) CancelRentalRequest(ctx context.Context, caller Identity, requestID int32) (*domain.RentalRequest, error) {
	req, err := s.rentalRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.BrandProfileID != caller.ProfileID {
		return nil, domain.NewAuthorizationError("caller does not own this rental request")
	}
	if req.Status.IsTerminal() || req.Status == domain.RentalStatusActive {
		return nil, domain.NewConflictError(fmt.Sprintf("request in status %s cannot be cancelled", req.Status))
	}

	req.Status = domain.RentalStatusCancelled
	if err := s.rentalRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *rentalService) ActivateViaPayment(ctx context.Context, requestID int32) (*domain.RentalRequest, error) {
	// The payable check, the single-active-rental re-check, the request
	// flip and the shelf flip are one repository transaction, so two
	// capture deliveries racing each other cannot both activate.
	req, activated, err := s.rentalRepo.Activate(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !activated {
		// Duplicate capture delivery; nothing to do.
		return req, nil
	}

	shelf, _ := s.shelfRepo.GetByID(ctx, req.ShelfID)
	if shelf != nil {
		s.dispatch(ctx, req, shelf, func(brand, store *domain.Profile) {
			s.notifier.RentalActivated(ctx, req, shelf, brand, store, req.TotalAmountCents)
		})
	}

	return req, nil
}

func (s *rentalService) CancelViaRefund(ctx context.Context, requestID int32) (*domain.RentalRequest, error) {
	req, err := s.rentalRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status == domain.RentalStatusCancelled {
		return req, nil
	}

	wasActive := req.Status == domain.RentalStatusActive
	req.Status = domain.RentalStatusCancelled
	if err := s.rentalRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	if wasActive {
		if err := s.shelfRepo.UpdateStatus(ctx, req.ShelfID, domain.ShelfStatusActive); err != nil {
			return nil, err
		}
	}
	return req, nil
}

func (s *rentalService) GetRentalRequest(ctx context.Context, caller Identity, requestID int32) (*domain.RentalRequest, error) {
	req, err := s.rentalRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.BrandProfileID != caller.ProfileID && req.StoreProfileID != caller.ProfileID {
		return nil, domain.NewAuthorizationError("caller is not a party to this rental request")
	}
	return req, nil
}

func (s *rentalService) ListRentalRequests(ctx context.Context, caller Identity, status string, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	if caller.IsStore() {
		return s.rentalRepo.ListByStore(ctx, caller.ProfileID, status, page, pageSize)
	}
	return s.rentalRepo.ListByBrand(ctx, caller.ProfileID, status, page, pageSize)
}

func (s *rentalService) ExpireStaleRequests(ctx context.Context, cutoff time.Time) ([]int32, error) {
	ids, err := s.rentalRepo.ExpireStale(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		logger.Info("Expired stale rental requests", "count", len(ids))
	}
	return ids, nil
}

func (s *rentalService) CompleteElapsedRentals(ctx context.Context, now time.Time) (int, error) {
	elapsed, err := s.rentalRepo.ListElapsedActive(ctx, now)
	if err != nil {
		return 0, err
	}

	completed := 0
	for i := range elapsed {
		req := &elapsed[i]
		req.Status = domain.RentalStatusCompleted
		if err := s.rentalRepo.Update(ctx, req); err != nil {
			logger.Error("Failed to complete rental", "rental_request_id", req.ID, "error", err)
			continue
		}
		if err := s.shelfRepo.UpdateStatus(ctx, req.ShelfID, domain.ShelfStatusActive); err != nil {
			logger.Error("Failed to free shelf", "shelf_id", req.ShelfID, "error", err)
			continue
		}
		completed++
	}
	return completed, nil
}

// loadForStore fetches a request and verifies the caller is the store
// owner of the shelf's branch.
func (s *rentalService) loadForStore(ctx context.Context, caller Identity, requestID int32) (*domain.RentalRequest, error) {
	req, err := s.rentalRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !caller.IsStore() || req.StoreProfileID != caller.ProfileID {
		return nil, domain.NewAuthorizationError("caller does not own the shelf's branch")
	}
	return req, nil
}

// dispatch resolves both parties and invokes a notification callback.
// Resolution failures only suppress the notification, never the transition.
func (s *rentalService) dispatch(ctx context.Context, req *domain.RentalRequest, shelf *domain.Shelf, send func(brand, store *domain.Profile)) {
	brand, err := s.profRepo.GetByID(ctx, req.BrandProfileID)
	if err != nil {
		logger.Warn("Notification skipped: brand profile unresolved", "rental_request_id", req.ID, "error", err)
		return
	}
	store, err := s.profRepo.GetByID(ctx, req.StoreProfileID)
	if err != nil {
		logger.Warn("Notification skipped: store profile unresolved", "rental_request_id", req.ID, "error", err)
		return
	}
	send(brand, store)
}
