package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gatepass-server/internal/models"
)

// Claims represents the JWT claims carried by an access token.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenIssuer mints access and refresh credentials. Access tokens are
// self-contained HS256 JWTs; refresh tokens are opaque random strings whose
// validity lives entirely in the refresh_tokens table.
type TokenIssuer struct {
	secret          []byte
	accessLifetime  time.Duration
	refreshLifetime time.Duration
	now             func() time.Time
}

// NewTokenIssuer creates a TokenIssuer. The clock is injectable for tests;
// pass nil to use time.Now.
func NewTokenIssuer(secret string, accessLifetime, refreshLifetime time.Duration, now func() time.Time) *TokenIssuer {
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{
		secret:          []byte(secret),
		accessLifetime:  accessLifetime,
		refreshLifetime: refreshLifetime,
		now:             now,
	}
}

// IssueAccessToken signs a short-lived access token for the user.
// Signing fails only on misconfiguration (empty secret).
func (t *TokenIssuer) IssueAccessToken(user *models.User) (string, error) {
	if len(t.secret) == 0 {
		return "", fmt.Errorf("jwt secret is not configured")
	}

	issuedAt := t.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(t.accessLifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// NewRefreshToken generates an opaque high-entropy refresh token string and
// its expiry. The token is not signed and carries no information itself.
func (t *TokenIssuer) NewRefreshToken() (string, time.Time) {
	return uuid.New().String(), t.now().Add(t.refreshLifetime)
}

// VerifyAccessToken validates the signature and expiry of an access token.
func (t *TokenIssuer) VerifyAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// DecodeExpiry extracts the exp claim without verifying the signature. Used
// only at logout, where a token is blacklisted until its natural expiry.
// Returns false when the token or its exp claim cannot be decoded.
func (t *TokenIssuer) DecodeExpiry(tokenString string) (time.Time, bool) {
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
