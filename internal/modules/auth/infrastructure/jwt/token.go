// Package jwt issues and verifies the HS256 tokens that carry a session.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/maeumssi/maeumssi/internal/modules/session"
)

const Issuer = "maeumssi"

var ErrInvalidToken = errors.New("invalid token")

// Claims is the token body. Subject mirrors UserID.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	Guest  bool      `json:"guest,omitempty"`
	jwt.RegisteredClaims
}

// Session returns the identity the claims describe.
func (c *Claims) Session() session.Session {
	return session.Session{UserID: c.UserID, Role: c.Role, Guest: c.Guest}
}

// GenerateToken signs a token for s that expires after ttl.
func GenerateToken(secret string, ttl time.Duration, s session.Session) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: s.UserID,
		Role:   s.Role,
		Guest:  s.Guest,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   s.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks signature, algorithm, issuer and expiry. Parser errors
// such as jwt.ErrTokenExpired stay matchable with errors.Is.
func ValidateToken(tokenStr, secret string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if claims.UserID == uuid.Nil || claims.Subject != claims.UserID.String() {
		return nil, fmt.Errorf("%w: subject does not match user", ErrInvalidToken)
	}
	return claims, nil
}
