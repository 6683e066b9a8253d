package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CancellationReason holds the single free-text reason of a cancelled lead.
type CancellationReason struct {
	ID        string    `gorm:"column:id;primaryKey"`
	LeadID    string    `gorm:"column:lead_id;not null;uniqueIndex"`
	Motivo    string    `gorm:"column:motivo;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (CancellationReason) TableName() string { return "cancellation_reasons" }

func (r *CancellationReason) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
