package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"folio/internal/domain"
	"folio/internal/domain/models"
)

// allowedAlgorithms blocks algorithm confusion (e.g. HS256 signed with a public key).
var allowedAlgorithms = []string{"RS256", "ES256"}

// JWKSVerifier implements JWTVerifier with keys fetched from a JWKS endpoint.
type JWKSVerifier struct {
	keys   jwt.Keyfunc
	cancel context.CancelFunc
	logger *slog.Logger
}

// NewJWTVerifier creates a verifier for jwksURL. Keys are cached and refreshed
// in the background until Close is called.
func NewJWTVerifier(jwksURL string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	ctx, cancel := context.WithCancel(context.Background())
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create JWKS client: %w", err)
	}

	logger.Info("jwt verifier initialized", "jwks_url", jwksURL)

	return newVerifier(jwks.Keyfunc, cancel, logger), nil
}

func newVerifier(keys jwt.Keyfunc, cancel context.CancelFunc, logger *slog.Logger) *JWKSVerifier {
	return &JWKSVerifier{keys: keys, cancel: cancel, logger: logger}
}

// VerifyToken validates signature, expiry and algorithm, then requires a
// subject and a non-anonymous role.
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keys,
		jwt.WithValidMethods(allowedAlgorithms),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		v.logger.Debug("token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	if claims.Role == "anon" {
		v.logger.Debug("anonymous token rejected", "user_id", claims.Subject)
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close stops the background key refresh.
func (v *JWKSVerifier) Close() error {
	if v.cancel != nil {
		v.cancel()
	}
	return nil
}
