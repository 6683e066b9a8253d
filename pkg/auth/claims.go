package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/angelmondragon/leadfunnel-backend/pkg/enums"
)

// AccessTokenPayload captures the actor data available when minting a JWT.
type AccessTokenPayload struct {
	UserID    string
	Name      string
	Role      enums.UserRole
	PromoCode *string
	JTI       string
}

// AccessTokenClaims represents the typed JWT presented by funnel users.
type AccessTokenClaims struct {
	UserID    string         `json:"user_id"`
	Name      string         `json:"name"`
	Role      enums.UserRole `json:"role"`
	PromoCode *string        `json:"promo_code,omitempty"`
	jwt.RegisteredClaims
}
