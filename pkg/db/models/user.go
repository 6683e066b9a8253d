package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/leadfunnel-backend/pkg/enums"
)

// User is a seller or staff account. BonusIndicacao counts referrals not yet
// redeemed and never drops below zero.
type User struct {
	ID                      string         `gorm:"column:id;primaryKey"`
	Name                    string         `gorm:"column:name;not null"`
	Email                   string         `gorm:"column:email;not null"`
	Job                     enums.UserRole `gorm:"column:job;not null"`
	PromoCode               *string        `gorm:"column:promo_code"`
	PixType                 *enums.PixType `gorm:"column:pix_type"`
	PixCode                 *string        `gorm:"column:pix_code"`
	Telefone                *string        `gorm:"column:telefone"`
	BonusIndicacao          int            `gorm:"column:bonus_indicacao;not null;default:0"`
	BonusIndicacaoResgatado int            `gorm:"column:bonus_indicacao_resgatado;not null;default:0"`
	CreatedAt               time.Time      `gorm:"column:created_at"`
	UpdatedAt               time.Time      `gorm:"column:updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
