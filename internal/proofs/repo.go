package proofs

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/leadfunnel-backend/pkg/db/models"
)

// Repository persists lead payment proofs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	LeadExists(ctx context.Context, leadID string) (bool, error)
	Replace(ctx context.Context, leadID, dataURI string, at time.Time) (*models.PaymentProof, error)
	Find(ctx context.Context, leadID string) (*models.PaymentProof, error)
	Delete(ctx context.Context, leadID string) error
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

func (r *repository) LeadExists(ctx context.Context, leadID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Lead{}).Where("id = ?", leadID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Replace drops any proof stored for the lead and writes the new one.
func (r *repository) Replace(ctx context.Context, leadID, dataURI string, at time.Time) (*models.PaymentProof, error) {
	if err := r.db.WithContext(ctx).Where("lead_id = ?", leadID).Delete(&models.PaymentProof{}).Error; err != nil {
		return nil, err
	}
	proof := &models.PaymentProof{LeadID: leadID, Comprovante: dataURI, CreatedAt: at}
	if err := r.db.WithContext(ctx).Create(proof).Error; err != nil {
		return nil, err
	}
	return proof, nil
}

func (r *repository) Find(ctx context.Context, leadID string) (*models.PaymentProof, error) {
	var proof models.PaymentProof
	err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("created_at DESC").
		First(&proof).Error
	if err != nil {
		return nil, err
	}
	return &proof, nil
}

func (r *repository) Delete(ctx context.Context, leadID string) error {
	res := r.db.WithContext(ctx).Where("lead_id = ?", leadID).Delete(&models.PaymentProof{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
