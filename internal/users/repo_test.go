package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/leadfunnel-backend/pkg/db/dbtest"
	"github.com/angelmondragon/leadfunnel-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/leadfunnel-backend/pkg/errors"
)

func strPtr(v string) *string { return &v }

func TestRepositoryBonusCounters(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))

	user, err := repo.Create(ctx, CreateUserDTO{Name: "Ana", Email: "ana@example.com", PromoCode: strPtr("ANA10"), Bonus: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, enums.UserRoleVendedorExterno, user.Job)

	require.NoError(t, repo.IncrementBonus(ctx, user.ID))
	require.NoError(t, repo.DecrementBonus(ctx, user.ID))
	require.NoError(t, repo.DecrementBonus(ctx, user.ID))
	require.NoError(t, repo.DecrementBonus(ctx, user.ID))

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.BonusIndicacao)

	assert.ErrorIs(t, repo.IncrementBonus(ctx, "missing"), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.DecrementBonus(ctx, "missing"), gorm.ErrRecordNotFound)
}

func TestRepositoryFindByPromoCode(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))

	created, err := repo.Create(ctx, CreateUserDTO{Name: "Bia", Email: "bia@example.com", PromoCode: strPtr("BIA5")})
	require.NoError(t, err)

	found, err := repo.FindByPromoCode(ctx, " BIA5 ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.FindByPromoCode(ctx, "NOPE")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.FindByPromoCode(ctx, "")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	list, err := repo.FindByIDs(ctx, []string{created.ID, "ghost"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRepositoryApplyRedemptionChecksSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))

	user, err := repo.Create(ctx, CreateUserDTO{Name: "Caio", Email: "caio@example.com", Bonus: 12})
	require.NoError(t, err)

	changed, err := repo.ApplyRedemption(ctx, user.ID, 5, 5, 20)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = repo.ApplyRedemption(ctx, user.ID, 12, 10, 45)
	require.NoError(t, err)
	assert.True(t, changed)

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.BonusIndicacao)
	assert.Equal(t, 45, reloaded.BonusIndicacaoResgatado)
}

func TestRepositoryCreateDuplicatePromoCode(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))

	_, err := repo.Create(ctx, CreateUserDTO{Name: "Caio", Email: "caio@example.com", PromoCode: strPtr("CAIO1")})
	require.NoError(t, err)

	_, err = repo.Create(ctx, CreateUserDTO{Name: "Caio 2", Email: "caio2@example.com", PromoCode: strPtr("CAIO1")})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUniqueViolation(err))
	assert.True(t, pkgerrors.Is(pkgerrors.FromStore(err, "user not found", "create user"), pkgerrors.CodeConflict))
}
