package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"shelfspace-backend/internal/domain"
	"shelfspace-backend/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

type registerRequest struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type authResponse struct {
	Profile     *domain.Profile `json:"profile"`
	AccessToken string          `json:"access_token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("body", "malformed JSON"))
		return
	}

	profile, token, err := h.authSvc.Register(r.Context(), domain.ProfileType(body.Type), body.Name, body.Email, body.Phone, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Profile: profile, AccessToken: token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("body", "malformed JSON"))
		return
	}

	profile, token, err := h.authSvc.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		// Login failures surface as 401 rather than 403.
		var authz *domain.AuthorizationError
		if errors.As(err, &authz) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: authz.Error()})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Profile: profile, AccessToken: token})
}
