package auth

import "folio/internal/domain/models"

// JWTVerifier verifies bearer tokens for the auth middleware.
type JWTVerifier interface {
	// VerifyToken validates a token string and returns its claims.
	// Any failure is reported as domain.ErrUnauthorized.
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases resources held by the verifier.
	Close() error
}
