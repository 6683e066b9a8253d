package users

import (
	"github.com/angelmondragon/leadfunnel-backend/pkg/db/models"
	"github.com/angelmondragon/leadfunnel-backend/pkg/enums"
)

// SellerDTO is the payout-facing view of a referring user.
type SellerDTO struct {
	ID                      string         `json:"id"`
	Name                    string         `json:"name"`
	Job                     enums.UserRole `json:"job"`
	PromoCode               *string        `json:"promo_code,omitempty"`
	Telefone                *string        `json:"telefone,omitempty"`
	PixType                 *enums.PixType `json:"pix_type,omitempty"`
	PixCode                 *string        `json:"pix_code,omitempty"`
	BonusIndicacao          int            `json:"bonus_indicacao"`
	BonusIndicacaoResgatado int            `json:"bonus_indicacao_resgatado"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Name      string
	Email     string
	Job       enums.UserRole
	PromoCode *string
	PixType   *enums.PixType
	PixCode   *string
	Telefone  *string
	Bonus     int
}

func FromModel(u *models.User) *SellerDTO {
	if u == nil {
		return nil
	}
	return &SellerDTO{
		ID:                      u.ID,
		Name:                    u.Name,
		Job:                     u.Job,
		PromoCode:               u.PromoCode,
		Telefone:                u.Telefone,
		PixType:                 u.PixType,
		PixCode:                 u.PixCode,
		BonusIndicacao:          u.BonusIndicacao,
		BonusIndicacaoResgatado: u.BonusIndicacaoResgatado,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	job := c.Job
	if job == "" {
		job = enums.UserRoleVendedorExterno
	}
	return &models.User{
		Name:           c.Name,
		Email:          c.Email,
		Job:            job,
		PromoCode:      c.PromoCode,
		PixType:        c.PixType,
		PixCode:        c.PixCode,
		Telefone:       c.Telefone,
		BonusIndicacao: c.Bonus,
	}
}
