package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/domain"
	"folio/internal/domain/models"
)

func testVerifier(t *testing.T) (*JWKSVerifier, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	keys := func(*jwt.Token) (any, error) { return &key.PublicKey, nil }
	return newVerifier(keys, nil, slog.New(slog.NewTextHandler(io.Discard, nil))), key
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims *models.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() *models.Claims {
	return &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "authenticated",
	}
}

func TestVerifyToken_Valid(t *testing.T) {
	v, key := testVerifier(t)

	claims, err := v.VerifyToken(sign(t, jwt.SigningMethodES256, key, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.GetUserID())
}

func TestVerifyToken_Rejections(t *testing.T) {
	v, key := testVerifier(t)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	noSubject := validClaims()
	noSubject.Subject = ""

	anon := validClaims()
	anon.Role = "anon"

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"expired", sign(t, jwt.SigningMethodES256, key, expired)},
		{"no expiry", sign(t, jwt.SigningMethodES256, key, noExpiry)},
		{"no subject", sign(t, jwt.SigningMethodES256, key, noSubject)},
		{"anonymous", sign(t, jwt.SigningMethodES256, key, anon)},
		{"hmac", sign(t, jwt.SigningMethodHS256, []byte("secret"), validClaims())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.VerifyToken(tt.token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestNewJWTVerifier_RequiresURL(t *testing.T) {
	_, err := NewJWTVerifier("", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
