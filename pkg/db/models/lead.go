package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/leadfunnel-backend/pkg/enums"
)

// Lead is a prospective customer referred through a seller promo code.
// Each status timestamp is written the first time the lead enters that status
// and is never cleared afterwards.
type Lead struct {
	ID                    string           `gorm:"column:id;primaryKey"`
	FullName              string           `gorm:"column:full_name;not null"`
	CPF                   *string          `gorm:"column:cpf"`
	CNPJ                  *string          `gorm:"column:cnpj"`
	Telefone              string           `gorm:"column:telefone;not null"`
	PlanoNome             string           `gorm:"column:plano_nome"`
	PlanoModelo           enums.PlanModel  `gorm:"column:plano_modelo"`
	PlanoMegas            string           `gorm:"column:plano_megas"`
	PromoCode             *string          `gorm:"column:promo_code"`
	UserIDPromoCode       *string          `gorm:"column:user_id_promo_code"`
	Status                enums.LeadStatus `gorm:"column:status;not null"`
	CreatedAt             time.Time        `gorm:"column:created_at"`
	AtendidoEm            *time.Time       `gorm:"column:atendido_em"`
	AguardandoPagamentoEm *time.Time       `gorm:"column:aguardando_pagamento_em"`
	PagoEm                *time.Time       `gorm:"column:pago_em"`
	FinalizadoEm          *time.Time       `gorm:"column:finalizado_em"`
	CanceladoEm           *time.Time       `gorm:"column:cancelado_em"`
	AtendidoPor           *string          `gorm:"column:atendido_por"`
	PagoPor               *string          `gorm:"column:pago_por"`
	UpdatedAt             time.Time        `gorm:"column:updated_at"`
}

func (Lead) TableName() string { return "leads" }

func (l *Lead) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// StatusTimestamp returns the timestamp recorded for the given status.
func (l *Lead) StatusTimestamp(status enums.LeadStatus) *time.Time {
	switch status {
	case enums.LeadStatusPendente:
		created := l.CreatedAt
		return &created
	case enums.LeadStatusSendoAtendido:
		return l.AtendidoEm
	case enums.LeadStatusAguardandoPagamento:
		return l.AguardandoPagamentoEm
	case enums.LeadStatusPago:
		return l.PagoEm
	case enums.LeadStatusFinalizado:
		return l.FinalizadoEm
	case enums.LeadStatusCancelado:
		return l.CanceladoEm
	}
	return nil
}
