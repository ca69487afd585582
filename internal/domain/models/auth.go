package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the subset of access-token claims the service relies on.
type Claims struct {
	jwt.RegisteredClaims        // sub, iss, aud, exp, iat
	Email                string `json:"email"`
	Role                 string `json:"role"` // "authenticated" or "anon"
	SessionID            string `json:"session_id"`
}

// GetUserID returns the user ID from the subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}
