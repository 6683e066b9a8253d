package types

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/angelmondragon/leadfunnel-backend/pkg/enums"
)

func TestActorHelpers(t *testing.T) {
	code := "ABC123"
	padded := "ABC123 "
	other := "abc123"
	actor := Actor{ID: "u1", Role: enums.UserRoleVendedorExterno, PromoCode: &code}

	assert.True(t, actor.Present())
	assert.False(t, Actor{ID: "u1"}.Present())
	assert.Equal(t, "u1", actor.DisplayName())
	assert.Equal(t, "Rita", Actor{ID: "u1", Name: " Rita "}.DisplayName())
	assert.True(t, actor.OwnsPromoCode(&padded))
	assert.False(t, actor.OwnsPromoCode(&other))
	assert.False(t, actor.OwnsPromoCode(nil))
	assert.False(t, Actor{}.OwnsPromoCode(&code))
}
