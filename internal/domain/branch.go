package domain

import "time"

type ShelfStatus string

const (
	ShelfStatusActive   ShelfStatus = "ACTIVE"
	ShelfStatusRented   ShelfStatus = "RENTED"
	ShelfStatusInactive ShelfStatus = "INACTIVE"
)

type Shelf struct {
	ID                int32       `json:"id"`
	BranchID          int32       `json:"branch_id"`
	Name              string      `json:"name"`
	Status            ShelfStatus `json:"status"`
	MonthlyPriceCents int64       `json:"monthly_price_cents"`
	ProductTypes      []string    `json:"product_types"`
	AvailableFrom     time.Time   `json:"available_from"`
	CreatedOn         time.Time   `json:"created_on"`
}

type Branch struct {
	ID             int32     `json:"id"`
	StoreProfileID int32     `json:"store_profile_id"`
	Name           string    `json:"name"`
	City           string    `json:"city"`
	IsActive       bool      `json:"is_active"`
	CreatedOn      time.Time `json:"created_on"`
}

// BranchSummary is the read-only aggregation of a branch's shelves used by
// marketplace discovery. Recomputed per query; collections are assumed
// small (hundreds of shelves at most).
type BranchSummary struct {
	BranchID          int32     `json:"branch_id"`
	StoreProfileID    int32     `json:"store_profile_id"`
	Name              string    `json:"name"`
	City              string    `json:"city"`
	ShelfCount        int32     `json:"shelf_count"`
	MinPriceCents     int64     `json:"min_price_cents"`
	MaxPriceCents     int64     `json:"max_price_cents"`
	ProductTypes      []string  `json:"product_types"`
	EarliestAvailable time.Time `json:"earliest_available"`
}
