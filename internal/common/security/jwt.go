package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Claim names carried by session tokens.
const (
	ClaimSubject = "sub"
	ClaimEmail   = "email"
	ClaimRole    = "role"
)

// TokenManager signs and verifies HS256 session tokens with a shared secret.
type TokenManager struct {
	auth *jwtauth.JWTAuth
	ttl  time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		auth: jwtauth.New("HS256", []byte(secret), nil),
		ttl:  ttl,
	}
}

// JWTAuth exposes the verifier for the router's jwtauth.Verifier middleware.
func (m *TokenManager) JWTAuth() *jwtauth.JWTAuth {
	return m.auth
}

func (m *TokenManager) GenerateToken(userID, email, role string) (string, error) {
	claims := jwt.MapClaims{
		ClaimSubject: userID,
		ClaimEmail:   email,
		ClaimRole:    role,
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, m.ttl)

	_, tokenString, err := m.auth.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return tokenString, nil
}

// Subject decodes tokenString and returns its subject claim. It verifies the
// signature and expiry.
func (m *TokenManager) Subject(tokenString string) (string, error) {
	token, err := jwtauth.VerifyToken(m.auth, tokenString)
	if err != nil {
		return "", err
	}
	if token.Subject() == "" {
		return "", errors.New("sub claim is missing")
	}
	return token.Subject(), nil
}

// Helper functions to extract claims, used by the auth middleware.
func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims[ClaimSubject].(string)
	if !ok || id == "" {
		return "", errors.New("sub claim is missing or not a string")
	}
	return id, nil
}

func GetUserRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims[ClaimRole].(string)
	if !ok || role == "" {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}

func GetEmailFromClaims(claims jwt.MapClaims) string {
	email, _ := claims[ClaimEmail].(string)
	return email
}
