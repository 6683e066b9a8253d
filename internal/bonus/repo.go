package bonus

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/leadfunnel-backend/pkg/db/models"
)

// Repository manages persistence for redemption history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateRedemption(ctx context.Context, redemption *models.BonusRedemption) error
	ListRedemptions(ctx context.Context, userID string) ([]models.BonusRedemption, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a bonus repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateRedemption(ctx context.Context, redemption *models.BonusRedemption) error {
	return r.db.WithContext(ctx).Create(redemption).Error
}

func (r *repository) ListRedemptions(ctx context.Context, userID string) ([]models.BonusRedemption, error) {
	var out []models.BonusRedemption
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("redeemed_at DESC").
		Order("id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
