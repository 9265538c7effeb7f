package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID       uuid.UUID
	TenantID     uuid.UUID
	Capabilities []string
	JTI          string
}

// AccessTokenClaims is the typed identity this service consumes. Upstream
// auth issues the token; the core only reads user, tenant and capabilities.
type AccessTokenClaims struct {
	UserID       uuid.UUID `json:"user_id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	Capabilities []string  `json:"capabilities,omitempty"`
	jwt.RegisteredClaims
}
