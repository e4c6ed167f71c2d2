package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/maeumssi/maeumssi/internal/modules/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	member := session.Session{UserID: uuid.New(), Role: "member"}
	guest := session.Session{UserID: uuid.New(), Role: "guest", Guest: true}

	for _, s := range []session.Session{member, guest} {
		tok, err := GenerateToken("secret", time.Hour, s)
		require.NoError(t, err)

		claims, err := ValidateToken(tok, "secret")
		require.NoError(t, err)
		assert.Equal(t, s, claims.Session())
		assert.Equal(t, Issuer, claims.Issuer)
		assert.Equal(t, s.UserID.String(), claims.Subject)
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	valid, err := GenerateToken("secret", time.Hour, session.Session{UserID: uuid.New(), Role: "member"})
	require.NoError(t, err)
	expired, err := GenerateToken("secret", -time.Minute, session.Session{UserID: uuid.New(), Role: "member"})
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: uuid.New()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	id := uuid.New()
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   id.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	mismatched, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:           id,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer, Subject: id.String()},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]struct {
		token  string
		secret string
	}{
		"wrong secret":     {valid, "other"},
		"garbage":          {"not-a-token", "secret"},
		"expired":          {expired, "secret"},
		"alg none":         {none, "secret"},
		"foreign issuer":   {foreign, "secret"},
		"subject mismatch": {mismatched, "secret"},
		"no expiry":        {noExpiry, "secret"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err = ValidateToken(expired, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
