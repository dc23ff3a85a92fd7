package service

import (
	"context"
	"sort"
	"strings"

	"shelfspace-backend/internal/domain"
	"shelfspace-backend/internal/repository"
)

// marketplaceService serves read-only branch discovery. Aggregation is
// recomputed per query with no caching; collections are assumed to stay in
// the hundreds of shelves.
type marketplaceService struct {
	branchRepo repository.BranchRepository
	shelfRepo  repository.ShelfRepository
}

func NewMarketplaceService(branchRepo repository.BranchRepository, shelfRepo repository.ShelfRepository) MarketplaceService {
	return &marketplaceService{branchRepo: branchRepo, shelfRepo: shelfRepo}
}

func (s *marketplaceService) ListBranchSummaries(ctx context.Context, filter BranchFilter) ([]domain.BranchSummary, int32, error) {
	branches, err := s.branchRepo.ListActive(ctx)
	if err != nil {
		return nil, 0, err
	}

	var summaries []domain.BranchSummary
	for _, branch := range branches {
		shelves, err := s.shelfRepo.ListByBranch(ctx, branch.ID)
		if err != nil {
			return nil, 0, err
		}
		summary, ok := summarize(branch, shelves)
		if !ok {
			continue
		}
		if !matches(summary, filter) {
			continue
		}
		summaries = append(summaries, summary)
	}

	total := int32(len(summaries))
	return paginate(summaries, filter.Page, filter.PageSize), total, nil
}

// summarize folds a branch's active and rented shelves into a discovery
// summary. Branches with no listable shelves are omitted.
func summarize(branch domain.Branch, shelves []domain.Shelf) (domain.BranchSummary, bool) {
	summary := domain.BranchSummary{
		BranchID:       branch.ID,
		StoreProfileID: branch.StoreProfileID,
		Name:           branch.Name,
		City:           branch.City,
	}

	typeSet := map[string]bool{}
	for _, shelf := range shelves {
		if shelf.Status != domain.ShelfStatusActive && shelf.Status != domain.ShelfStatusRented {
			continue
		}
		if summary.ShelfCount == 0 {
			summary.MinPriceCents = shelf.MonthlyPriceCents
			summary.MaxPriceCents = shelf.MonthlyPriceCents
			summary.EarliestAvailable = shelf.AvailableFrom
		} else {
			if shelf.MonthlyPriceCents < summary.MinPriceCents {
				summary.MinPriceCents = shelf.MonthlyPriceCents
			}
			if shelf.MonthlyPriceCents > summary.MaxPriceCents {
				summary.MaxPriceCents = shelf.MonthlyPriceCents
			}
			if shelf.AvailableFrom.Before(summary.EarliestAvailable) {
				summary.EarliestAvailable = shelf.AvailableFrom
			}
		}
		summary.ShelfCount++
		for _, pt := range shelf.ProductTypes {
			typeSet[pt] = true
		}
	}
	if summary.ShelfCount == 0 {
		return domain.BranchSummary{}, false
	}

	for pt := range typeSet {
		summary.ProductTypes = append(summary.ProductTypes, pt)
	}
	sort.Strings(summary.ProductTypes)
	return summary, true
}

func matches(summary domain.BranchSummary, filter BranchFilter) bool {
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(summary.Name), needle) &&
			!strings.Contains(strings.ToLower(summary.City), needle) {
			return false
		}
	}

	// Price filters match when the requested range overlaps the branch's
	// own [min, max] price range.
	if filter.MinPriceCents > 0 && summary.MaxPriceCents < filter.MinPriceCents {
		return false
	}
	if filter.MaxPriceCents > 0 && summary.MinPriceCents > filter.MaxPriceCents {
		return false
	}

	if filter.ProductType != "" {
		found := false
		for _, pt := range summary.ProductTypes {
			if strings.EqualFold(pt, filter.ProductType) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

func paginate(summaries []domain.BranchSummary, page, pageSize int32) []domain.BranchSummary {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= int32(len(summaries)) {
		return nil
	}
	end := start + pageSize
	if end > int32(len(summaries)) {
		end = int32(len(summaries))
	}
	return summaries[start:end]
}
