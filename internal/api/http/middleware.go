package http

import (
	"context"
	"net/http"
	"strings"

	"shelfspace-backend/internal/security"
	"shelfspace-backend/internal/service"
)

type contextKey string

const identityKey contextKey = "identity"

// AuthMiddleware resolves the bearer token into a caller identity. The
// identity is carried on the request context only as transport between
// middleware and handler; handlers pass it explicitly into services.
type AuthMiddleware struct {
	tokens security.TokenManager
}

func NewAuthMiddleware(tokens security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Require rejects requests without a valid token.
func (m *AuthMiddleware) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := m.resolve(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
	}
}

// Optional attaches an identity when a valid token is present but lets
// anonymous requests through; used by the guest checkout flow.
func (m *AuthMiddleware) Optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if identity, ok := m.resolve(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), identityKey, identity))
		}
		next(w, r)
	}
}

func (m *AuthMiddleware) resolve(r *http.Request) (service.Identity, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return service.Identity{}, false
	}
	claims, err := m.tokens.ValidateToken(token)
	if err != nil {
		return service.Identity{}, false
	}
	return service.Identity{ProfileID: claims.ProfileID, Type: claims.ProfileType}, true
}

// callerIdentity returns the identity attached by the middleware.
func callerIdentity(r *http.Request) (service.Identity, bool) {
	identity, ok := r.Context().Value(identityKey).(service.Identity)
	return identity, ok
}
