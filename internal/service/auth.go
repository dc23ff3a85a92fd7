package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"shelfspace-backend/internal/domain"
	"shelfspace-backend/internal/repository"
	"shelfspace-backend/internal/security"
)

type authService struct {
	profRepo repository.ProfileRepository
	tokens   security.TokenManager
}

func NewAuthService(profRepo repository.ProfileRepository, tokens security.TokenManager) AuthService {
	return &authService{profRepo: profRepo, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, profileType domain.ProfileType, name, email, phone, password string) (*domain.Profile, string, error) {
	if profileType != domain.ProfileTypeBrand && profileType != domain.ProfileTypeStore {
		return nil, "", domain.NewValidationError("type", "must be BRAND or STORE")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, "", domain.NewValidationError("email", "is required")
	}
	if len(password) < 8 {
		return nil, "", domain.NewValidationError("password", "must be at least 8 characters")
	}

	if existing, err := s.profRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, "", domain.NewConflictError("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	profile := &domain.Profile{
		Type:         profileType,
		Name:         name,
		Email:        email,
		PhoneNumber:  phone,
		PasswordHash: string(hash),
	}
	if err := s.profRepo.Create(ctx, profile); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateAccessToken(profile.ID, profile.Type, profile.Email)
	if err != nil {
		return nil, "", err
	}
	return profile, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.Profile, string, error) {
	profile, err := s.profRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return nil, "", domain.NewAuthorizationError("invalid credentials")
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.NewAuthorizationError("invalid credentials")
	}

	token, err := s.tokens.GenerateAccessToken(profile.ID, profile.Type, profile.Email)
	if err != nil {
		return nil, "", err
	}
	return profile, token, nil
}
