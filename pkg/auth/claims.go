package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenClaims represents the typed JWT minted by the auth service.
// This service only verifies tokens; it never issues them to clients.
type AccessTokenClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	FullName string    `json:"full_name,omitempty"`
	Role     string    `json:"role,omitempty"`
	jwt.RegisteredClaims
}
