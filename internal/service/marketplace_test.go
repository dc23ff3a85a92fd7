package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelfspace-backend/internal/domain"
)

func TestListBranchSummaries(t *testing.T) {
	ctx := context.Background()

	branchRepo := newFakeBranchRepo(
		&domain.Branch{ID: 1, StoreProfileID: 11, Name: "Riyadh Gallery", City: "Riyadh", IsActive: true},
		&domain.Branch{ID: 2, StoreProfileID: 12, Name: "Jeddah Corner", City: "Jeddah", IsActive: true},
		&domain.Branch{ID: 3, StoreProfileID: 13, Name: "Empty Branch", City: "Dammam", IsActive: true},
		&domain.Branch{ID: 4, StoreProfileID: 14, Name: "Closed Branch", City: "Riyadh", IsActive: false},
	)
	shelfRepo := newFakeShelfRepo(
		&domain.Shelf{ID: 1, BranchID: 1, Status: domain.ShelfStatusActive, MonthlyPriceCents: 50_000,
			ProductTypes: []string{"snacks", "coffee"}, AvailableFrom: date(2026, 4, 1)},
		&domain.Shelf{ID: 2, BranchID: 1, Status: domain.ShelfStatusRented, MonthlyPriceCents: 150_000,
			ProductTypes: []string{"coffee"}, AvailableFrom: date(2026, 3, 1)},
		&domain.Shelf{ID: 3, BranchID: 1, Status: domain.ShelfStatusInactive, MonthlyPriceCents: 999_999,
			ProductTypes: []string{"electronics"}},
		&domain.Shelf{ID: 4, BranchID: 2, Status: domain.ShelfStatusActive, MonthlyPriceCents: 80_000,
			ProductTypes: []string{"perfume"}, AvailableFrom: date(2026, 5, 1)},
	)

	svc := NewMarketplaceService(branchRepo, shelfRepo)

	findBranch := func(summaries []domain.BranchSummary, id int32) *domain.BranchSummary {
		for i := range summaries {
			if summaries[i].BranchID == id {
				return &summaries[i]
			}
		}
		return nil
	}

	t.Run("Aggregates_Active_And_Rented_Shelves", func(t *testing.T) {
		summaries, total, err := svc.ListBranchSummaries(ctx, BranchFilter{})
		require.NoError(t, err)
		assert.Equal(t, int32(2), total)

		riyadh := findBranch(summaries, 1)
		require.NotNil(t, riyadh)
		// The inactive shelf contributes nothing.
		assert.Equal(t, int32(2), riyadh.ShelfCount)
		assert.Equal(t, int64(50_000), riyadh.MinPriceCents)
		assert.Equal(t, int64(150_000), riyadh.MaxPriceCents)
		assert.Equal(t, []string{"coffee", "snacks"}, riyadh.ProductTypes)
		assert.True(t, riyadh.EarliestAvailable.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))

		// Shelfless and inactive branches are omitted.
		assert.Nil(t, findBranch(summaries, 3))
		assert.Nil(t, findBranch(summaries, 4))
	})

	t.Run("Search_Matches_Name_And_City", func(t *testing.T) {
		summaries, total, err := svc.ListBranchSummaries(ctx, BranchFilter{Search: "jeddah"})
		require.NoError(t, err)
		assert.Equal(t, int32(1), total)
		assert.Equal(t, int32(2), summaries[0].BranchID)
	})

	t.Run("Price_Range_Overlap", func(t *testing.T) {
		// 100k-200k overlaps Riyadh's 50k-150k but not Jeddah's 80k-80k.
		summaries, total, err := svc.ListBranchSummaries(ctx, BranchFilter{
			MinPriceCents: 100_000,
			MaxPriceCents: 200_000,
		})
		require.NoError(t, err)
		assert.Equal(t, int32(1), total)
		assert.Equal(t, int32(1), summaries[0].BranchID)
	})

	t.Run("Product_Type_Case_Insensitive", func(t *testing.T) {
		summaries, total, err := svc.ListBranchSummaries(ctx, BranchFilter{ProductType: "Coffee"})
		require.NoError(t, err)
		assert.Equal(t, int32(1), total)
		assert.Equal(t, int32(1), summaries[0].BranchID)
	})

	t.Run("Pagination", func(t *testing.T) {
		summaries, total, err := svc.ListBranchSummaries(ctx, BranchFilter{Page: 1, PageSize: 1})
		require.NoError(t, err)
		assert.Equal(t, int32(2), total)
		assert.Len(t, summaries, 1)

		beyond, total, err := svc.ListBranchSummaries(ctx, BranchFilter{Page: 5, PageSize: 1})
		require.NoError(t, err)
		assert.Equal(t, int32(2), total)
		assert.Empty(t, beyond)
	})
}
