package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentProof stores a lead's payout receipt as a data URI.
type PaymentProof struct {
	ID          string    `gorm:"column:id;primaryKey"`
	LeadID      string    `gorm:"column:lead_id;not null"`
	Comprovante string    `gorm:"column:comprovante;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (PaymentProof) TableName() string { return "leads_comprovantes" }

func (p *PaymentProof) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
