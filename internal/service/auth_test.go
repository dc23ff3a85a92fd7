package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelfspace-backend/internal/domain"
	"shelfspace-backend/internal/security"
)

func newAuthFixture(t *testing.T) (AuthService, *fakeProfileRepo, security.TokenManager) {
	t.Helper()
	repo := newFakeProfileRepo()
	tokens := security.NewTokenManager("test-secret", 60)
	return NewAuthService(repo, tokens), repo, tokens
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Brand_Registration", func(t *testing.T) {
		svc, _, tokens := newAuthFixture(t)
		profile, token, err := svc.Register(ctx, domain.ProfileTypeBrand, "Dates Co", "Brand@Example.com ", "0512345678", "supersecret")
		require.NoError(t, err)
		assert.Equal(t, domain.ProfileTypeBrand, profile.Type)
		// Email is normalized on the way in.
		assert.Equal(t, "brand@example.com", profile.Email)
		assert.NotEmpty(t, profile.PasswordHash)
		assert.NotEqual(t, "supersecret", profile.PasswordHash)

		claims, err := tokens.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, profile.ID, claims.ProfileID)
		assert.Equal(t, domain.ProfileTypeBrand, claims.ProfileType)
	})

	t.Run("Unknown_Type_Rejected", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)
		_, _, err := svc.Register(ctx, "ADMIN", "X", "x@example.com", "", "supersecret")
		var validation *domain.ValidationError
		assert.True(t, errors.As(err, &validation))
	})

	t.Run("Short_Password_Rejected", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)
		_, _, err := svc.Register(ctx, domain.ProfileTypeStore, "X", "x@example.com", "", "short")
		var validation *domain.ValidationError
		assert.True(t, errors.As(err, &validation))
	})

	t.Run("Duplicate_Email_Rejected", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)
		_, _, err := svc.Register(ctx, domain.ProfileTypeBrand, "A", "dup@example.com", "", "supersecret")
		require.NoError(t, err)
		_, _, err = svc.Register(ctx, domain.ProfileTypeStore, "B", "dup@example.com", "", "supersecret")
		var conflict *domain.ConflictError
		assert.True(t, errors.As(err, &conflict))
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(t)
	_, _, err := svc.Register(ctx, domain.ProfileTypeStore, "Gallery", "store@example.com", "0598765432", "supersecret")
	require.NoError(t, err)

	t.Run("Valid_Credentials", func(t *testing.T) {
		profile, token, err := svc.Login(ctx, "Store@Example.com", "supersecret")
		require.NoError(t, err)
		assert.Equal(t, "store@example.com", profile.Email)
		assert.NotEmpty(t, token)
	})

	t.Run("Wrong_Password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "store@example.com", "wrongpass")
		var authz *domain.AuthorizationError
		assert.True(t, errors.As(err, &authz))
	})

	t.Run("Unknown_Email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "ghost@example.com", "supersecret")
		var authz *domain.AuthorizationError
		assert.True(t, errors.As(err, &authz))
	})
}
