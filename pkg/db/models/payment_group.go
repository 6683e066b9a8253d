package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/angelmondragon/leadfunnel-backend/pkg/enums"
)

// PaymentGroup is the immutable audit row written once per group payment or
// group cancellation.
type PaymentGroup struct {
	ID               string           `gorm:"column:id;primaryKey"`
	PromoCode        string           `gorm:"column:promo_code;not null"`
	ValorIndicacao   decimal.Decimal  `gorm:"column:valor_indicacao;type:numeric(12,2);not null"`
	ValorBonus       decimal.Decimal  `gorm:"column:valor_bonus;type:numeric(12,2);not null"`
	ValorTotal       decimal.Decimal  `gorm:"column:valor_total;type:numeric(12,2);not null"`
	Status           enums.LeadStatus `gorm:"column:status;not null"`
	Motivo           *string          `gorm:"column:motivo"`
	VendedorID       *string          `gorm:"column:vendedor_id"`
	VendedorNome     *string          `gorm:"column:vendedor_nome"`
	VendedorTelefone *string          `gorm:"column:vendedor_telefone"`
	VendedorPixCode  *string          `gorm:"column:vendedor_pix_code"`
	VendedorPixType  *string          `gorm:"column:vendedor_pix_type"`
	LeadIDs          datatypes.JSON   `gorm:"column:leads_ids;not null"`
	ClientesData     datatypes.JSON   `gorm:"column:clientes_data"`
	QuantidadeLeads  int              `gorm:"column:quantidade_leads;not null"`
	ProcessadoEm     time.Time        `gorm:"column:processado_em;not null"`
	ProcessadoPor    string           `gorm:"column:processado_por;not null"`
	Comprovante      *string          `gorm:"column:comprovante"`
}

func (PaymentGroup) TableName() string { return "payment_groups" }

func (g *PaymentGroup) BeforeCreate(*gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
