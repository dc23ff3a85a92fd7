package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"shelfspace-backend/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// ProfileClaims carries the authenticated profile identity. Handlers pass
// the resolved identity explicitly into services; nothing reads it from
// ambient state.
type ProfileClaims struct {
	ProfileID   int32              `json:"profile_id"`
	ProfileType domain.ProfileType `json:"profile_type"`
	Email       string             `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type TokenManager interface {
	GenerateAccessToken(profileID int32, profileType domain.ProfileType, email string) (string, error)
	ValidateToken(tokenString string) (*ProfileClaims, error)
}

type tokenManager struct {
	secret []byte
	expiry time.Duration
}

func NewTokenManager(secret string, expiryMinutes int) TokenManager {
	if expiryMinutes <= 0 {
		expiryMinutes = 60
	}
	return &tokenManager{
		secret: []byte(secret),
		expiry: time.Duration(expiryMinutes) * time.Minute,
	}
}

func (m *tokenManager) GenerateAccessToken(profileID int32, profileType domain.ProfileType, email string) (string, error) {
	claims := ProfileClaims{
		ProfileID:   profileID,
		ProfileType: profileType,
		Email:       email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(profileID)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "shelfspace",
			Audience:  jwt.ClaimStrings{"api-access"},
			ID:        strconv.FormatInt(time.Now().UnixNano(), 16),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*ProfileClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ProfileClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*ProfileClaims); ok && token.Valid {
		if claims.ProfileID == 0 && claims.Subject != "" {
			pid, _ := strconv.Atoi(claims.Subject)
			claims.ProfileID = int32(pid)
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}
