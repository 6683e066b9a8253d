package leads

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/leadfunnel-backend/pkg/db/models"
	"github.com/angelmondragon/leadfunnel-backend/pkg/enums"
	"github.com/angelmondragon/leadfunnel-backend/pkg/pagination"
)

// Repository manages persistence for leads and their cancellation reasons.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, lead *models.Lead) error
	FindByID(ctx context.Context, id string) (*models.Lead, error)
	FindByPromoCode(ctx context.Context, promoCode string) ([]models.Lead, error)
	FindByStatus(ctx context.Context, status enums.LeadStatus) ([]models.Lead, error)
	List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.Lead, error)
	UpdateStatus(ctx context.Context, id string, updates map[string]any) error
	UpsertCancellationReason(ctx context.Context, leadID, reason string, at time.Time) error
	FindCancellationReason(ctx context.Context, leadID string) (*models.CancellationReason, error)
	CountByStatus(ctx context.Context, promoCode string) (map[enums.LeadStatus]int64, error)
	LatestCreatedAt(ctx context.Context, promoCode string) (*time.Time, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a leads repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.Lead, error) {
	var lead models.Lead
	if err := r.db.WithContext(ctx).First(&lead, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *repository) FindByPromoCode(ctx context.Context, promoCode string) ([]models.Lead, error) {
	var out []models.Lead
	if err := r.db.WithContext(ctx).
		Where("promo_code = ?", promoCode).
		Order("created_at ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) FindByStatus(ctx context.Context, status enums.LeadStatus) ([]models.Lead, error) {
	var out []models.Lead
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// List returns up to limit+1 rows, newest first, so callers can detect a next page.
func (r *repository) List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.Lead, error) {
	q := r.db.WithContext(ctx).Model(&models.Lead{})
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.PromoCode != nil {
		q = q.Where("promo_code = ?", *filter.PromoCode)
	}
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var out []models.Lead
	if err := q.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus writes the column set produced by ApplyStatus.
func (r *repository) UpdateStatus(ctx context.Context, id string, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Lead{}).
		Where("id = ?", id).
		UpdateColumns(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) UpsertCancellationReason(ctx context.Context, leadID, reason string, at time.Time) error {
	row := &models.CancellationReason{
		LeadID:    leadID,
		Motivo:    reason,
		CreatedAt: at,
		UpdatedAt: at,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "lead_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"motivo", "updated_at"}),
		}).
		Create(row).Error
}

func (r *repository) FindCancellationReason(ctx context.Context, leadID string) (*models.CancellationReason, error) {
	var reason models.CancellationReason
	if err := r.db.WithContext(ctx).Where("lead_id = ?", leadID).First(&reason).Error; err != nil {
		return nil, err
	}
	return &reason, nil
}

func (r *repository) CountByStatus(ctx context.Context, promoCode string) (map[enums.LeadStatus]int64, error) {
	var rows []struct {
		Status enums.LeadStatus
		Total  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Lead{}).
		Select("status, COUNT(*) AS total").
		Where("promo_code = ?", promoCode).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[enums.LeadStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}

func (r *repository) LatestCreatedAt(ctx context.Context, promoCode string) (*time.Time, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).
		Select("id", "created_at").
		Where("promo_code = ?", promoCode).
		Order("created_at DESC").
		Limit(1).
		Take(&lead).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	at := lead.CreatedAt
	return &at, nil
}
