package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"shelfspace-backend/internal/domain"
	"shelfspace-backend/internal/service"
)

type RentalHandler struct {
	rentalSvc service.RentalService
}

func NewRentalHandler(rentalSvc service.RentalService) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc}
}

type createRentalRequest struct {
	ShelfID          int32                     `json:"shelf_id"`
	StartDate        string                    `json:"start_date"`
	EndDate          string                    `json:"end_date"`
	SelectedProducts []domain.ProductSelection `json:"selected_products"`
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerIdentity(r)

	var body createRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("body", "malformed JSON"))
		return
	}

	start, err := time.Parse("2006-01-02", body.StartDate)
	if err != nil {
		writeError(w, domain.NewValidationError("start_date", "expected yyyy-mm-dd"))
		return
	}
	end, err := time.Parse("2006-01-02", body.EndDate)
	if err != nil {
		writeError(w, domain.NewValidationError("end_date", "expected yyyy-mm-dd"))
		return
	}

	req, err := h.rentalSvc.CreateRentalRequest(r.Context(), caller, service.CreateRentalInput{
		ShelfID:          body.ShelfID,
		StartDate:        start,
		EndDate:          end,
		SelectedProducts: body.SelectedProducts,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (h *RentalHandler) Accept(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerIdentity(r)
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, err := h.rentalSvc.AcceptRentalRequest(r.Context(), caller, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

type rejectRentalRequest struct {
	Reason string `json:"reason"`
}

func (h *RentalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerIdentity(r)
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body rejectRentalRequest
	// Reason is optional; an empty body is fine.
	_ = json.NewDecoder(r.Body).Decode(&body)

	req, err := h.rentalSvc.RejectRentalRequest(r.Context(), caller, id, body.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *RentalHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerIdentity(r)
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, err := h.rentalSvc.CancelRentalRequest(r.Context(), caller, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerIdentity(r)
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, err := h.rentalSvc.GetRentalRequest(r.Context(), caller, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

type listResponse struct {
	Items any   `json:"items"`
	Total int32 `json:"total"`
}

func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerIdentity(r)
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))

	items, total, err := h.rentalSvc.ListRentalRequests(r.Context(), caller, query.Get("status"), int32(page), int32(pageSize))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: total})
}

func pathID(w http.ResponseWriter, r *http.Request) (int32, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		writeError(w, domain.NewValidationError("id", "must be a positive integer"))
		return 0, false
	}
	return int32(id), true
}
