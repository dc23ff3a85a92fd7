package http

import (
	"net/http"
	"strconv"

	"shelfspace-backend/internal/service"
)

type MarketplaceHandler struct {
	marketSvc service.MarketplaceService
}

func NewMarketplaceHandler(marketSvc service.MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{marketSvc: marketSvc}
}

func (h *MarketplaceHandler) ListBranches(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	minPrice, _ := strconv.ParseInt(query.Get("min_price_cents"), 10, 64)
	maxPrice, _ := strconv.ParseInt(query.Get("max_price_cents"), 10, 64)

	summaries, total, err := h.marketSvc.ListBranchSummaries(r.Context(), service.BranchFilter{
		Search:        query.Get("search"),
		MinPriceCents: minPrice,
		MaxPriceCents: maxPrice,
		ProductType:   query.Get("product_type"),
		Page:          int32(page),
		PageSize:      int32(pageSize),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: summaries, Total: total})
}
