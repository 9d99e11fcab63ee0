package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

// TokenClaims carries the user identity inside every signed token. Reset
// tokens also bind the email they were requested for.
type TokenClaims struct {
	UserID   string `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies the three token kinds. Access and
// refresh tokens use distinct secrets so one class can never be replayed
// as the other; reset tokens share the access secret, matching the
// original issuing scheme.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	resetTTL      time.Duration
}

func NewTokenManager(accessSecret, refreshSecret string, accessMinutes, refreshDays, resetMinutes int) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     time.Duration(accessMinutes) * time.Minute,
		refreshTTL:    time.Duration(refreshDays) * 24 * time.Hour,
		resetTTL:      time.Duration(resetMinutes) * time.Minute,
	}
}

func (m *TokenManager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *TokenManager) RefreshTTL() time.Duration { return m.refreshTTL }

// GenerateAccessToken signs a short-lived access token for the user.
func (m *TokenManager) GenerateAccessToken(userID, username string) (string, error) {
	return m.sign(userID, username, "", "access", m.accessSecret, m.accessTTL)
}

// GenerateRefreshToken signs a long-lived refresh token for the user.
func (m *TokenManager) GenerateRefreshToken(userID, username string) (string, error) {
	return m.sign(userID, username, "", "refresh", m.refreshSecret, m.refreshTTL)
}

// GenerateResetToken signs a short-lived password-reset token bound to
// the user's id and email.
func (m *TokenManager) GenerateResetToken(userID, email string) (string, error) {
	return m.sign(userID, "", email, "reset", m.accessSecret, m.resetTTL)
}

func (m *TokenManager) sign(userID, username, email, kind string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		UserID:   userID,
		Username: username,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Audience:  jwt.ClaimStrings{kind},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseAccess verifies an access token and returns its claims.
func (m *TokenManager) ParseAccess(tokenStr string) (*TokenClaims, error) {
	return m.parse(tokenStr, "access", m.accessSecret)
}

// ParseRefresh verifies a refresh token and returns its claims.
func (m *TokenManager) ParseRefresh(tokenStr string) (*TokenClaims, error) {
	return m.parse(tokenStr, "refresh", m.refreshSecret)
}

// ParseReset verifies a password-reset token and returns its claims.
func (m *TokenManager) ParseReset(tokenStr string) (*TokenClaims, error) {
	return m.parse(tokenStr, "reset", m.accessSecret)
}

func (m *TokenManager) parse(tokenStr, kind string, secret []byte) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if !containsAudience(claims.Audience, kind) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func containsAudience(aud jwt.ClaimStrings, target string) bool {
	for _, a := range aud {
		if a == target {
			return true
		}
	}
	return false
}
