package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BonusRedemption is an append-only record of one redeemed milestone.
type BonusRedemption struct {
	ID             string    `gorm:"column:id;primaryKey"`
	UserID         string    `gorm:"column:user_id;not null"`
	Amount         int       `gorm:"column:amount;not null"`
	ReferralsSpent int       `gorm:"column:referrals_spent;not null"`
	RedeemedAt     time.Time `gorm:"column:redeemed_at;not null"`
}

func (BonusRedemption) TableName() string { return "bonus_redemptions" }

func (r *BonusRedemption) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
