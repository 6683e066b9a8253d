package paymentgroups

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/leadfunnel-backend/pkg/db/models"
)

// Repository persists payment group audit rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, group *models.PaymentGroup) error
	LatestByPromoCode(ctx context.Context, promoCode string) (*models.PaymentGroup, error)
	ListByPromoCode(ctx context.Context, promoCode string) ([]models.PaymentGroup, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, group *models.PaymentGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *repository) LatestByPromoCode(ctx context.Context, promoCode string) (*models.PaymentGroup, error) {
	var group models.PaymentGroup
	err := r.db.WithContext(ctx).
		Where("promo_code = ?", promoCode).
		Order("processado_em DESC").
		Order("id DESC").
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// ListByPromoCode returns the groups processed for promoCode, newest first.
func (r *repository) ListByPromoCode(ctx context.Context, promoCode string) ([]models.PaymentGroup, error) {
	var out []models.PaymentGroup
	if err := r.db.WithContext(ctx).
		Where("promo_code = ?", promoCode).
		Order("processado_em DESC").
		Order("id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
