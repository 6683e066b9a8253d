package types

import (
	"strings"

	"github.com/angelmondragon/leadfunnel-backend/pkg/enums"
)

// Actor is the authenticated user on whose behalf a core operation runs.
type Actor struct {
	ID        string
	Name      string
	Role      enums.UserRole
	PromoCode *string
}

// Present reports whether the actor carries a usable identity.
func (a Actor) Present() bool {
	return strings.TrimSpace(a.ID) != "" && a.Role.IsValid()
}

// DisplayName is what gets stamped into atendido_por / pago_por columns.
func (a Actor) DisplayName() string {
	if name := strings.TrimSpace(a.Name); name != "" {
		return name
	}
	return a.ID
}

// OwnsPromoCode reports whether code belongs to the actor.
func (a Actor) OwnsPromoCode(code *string) bool {
	if a.PromoCode == nil || code == nil {
		return false
	}
	mine := strings.TrimSpace(*a.PromoCode)
	return mine != "" && mine == strings.TrimSpace(*code)
}
