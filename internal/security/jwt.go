package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is stamped on and required from every token
const Issuer = "taleforge"

// Claims are the identity claims carried by a bearer token
type Claims struct {
	UserID   string `json:"sub"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HMAC bearer tokens
type JWTManager struct {
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, tokenTTL time.Duration) (*JWTManager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret cannot be empty")
	}

	return &JWTManager{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		now:      time.Now,
	}, nil
}

// GenerateToken issues a token for a user. Identity is owned elsewhere; this is
// used by tests and local tooling.
func (m *JWTManager) GenerateToken(userID, username string) (string, error) {
	if userID == "" {
		return "", errors.New("user ID cannot be empty")
	}

	now := m.now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken verifies a token and returns its claims
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(Issuer), jwt.WithTimeFunc(m.now))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.UserID == "" {
		return nil, errors.New("token has no subject")
	}

	return claims, nil
}

// TokenTTL returns the lifetime of issued tokens
func (m *JWTManager) TokenTTL() time.Duration {
	return m.tokenTTL
}
