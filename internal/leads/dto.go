package leads

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/leadfunnel-backend/pkg/db/models"
	"github.com/angelmondragon/leadfunnel-backend/pkg/enums"
	"github.com/angelmondragon/leadfunnel-backend/pkg/types"
)

// ValuePerLead is the nominal referral value shown on seller dashboards.
var ValuePerLead = decimal.NewFromInt(50)

// LeadDTO is the transport shape of a lead.
type LeadDTO struct {
	ID                    string           `json:"id"`
	FullName              string           `json:"full_name"`
	CPF                   *string          `json:"cpf,omitempty"`
	CNPJ                  *string          `json:"cnpj,omitempty"`
	Telefone              string           `json:"telefone"`
	PlanoNome             string           `json:"plano_nome,omitempty"`
	PlanoModelo           enums.PlanModel  `json:"plano_modelo,omitempty"`
	PlanoMegas            string           `json:"plano_megas,omitempty"`
	PromoCode             *string          `json:"promo_code,omitempty"`
	UserIDPromoCode       *string          `json:"user_id_promo_code,omitempty"`
	Status                enums.LeadStatus `json:"status"`
	CreatedAt             time.Time        `json:"created_at"`
	AtendidoEm            *time.Time       `json:"atendido_em,omitempty"`
	AguardandoPagamentoEm *time.Time       `json:"aguardando_pagamento_em,omitempty"`
	PagoEm                *time.Time       `json:"pago_em,omitempty"`
	FinalizadoEm          *time.Time       `json:"finalizado_em,omitempty"`
	CanceladoEm           *time.Time       `json:"cancelado_em,omitempty"`
	AtendidoPor           *string          `json:"atendido_por,omitempty"`
	PagoPor               *string          `json:"pago_por,omitempty"`
}

// FromModel converts a lead row into its transport shape.
func FromModel(m *models.Lead) *LeadDTO {
	if m == nil {
		return nil
	}
	return &LeadDTO{
		ID:                    m.ID,
		FullName:              m.FullName,
		CPF:                   m.CPF,
		CNPJ:                  m.CNPJ,
		Telefone:              m.Telefone,
		PlanoNome:             m.PlanoNome,
		PlanoModelo:           m.PlanoModelo,
		PlanoMegas:            m.PlanoMegas,
		PromoCode:             m.PromoCode,
		UserIDPromoCode:       m.UserIDPromoCode,
		Status:                m.Status,
		CreatedAt:             m.CreatedAt,
		AtendidoEm:            m.AtendidoEm,
		AguardandoPagamentoEm: m.AguardandoPagamentoEm,
		PagoEm:                m.PagoEm,
		FinalizadoEm:          m.FinalizadoEm,
		CanceladoEm:           m.CanceladoEm,
		AtendidoPor:           m.AtendidoPor,
		PagoPor:               m.PagoPor,
	}
}

// CreateLeadInput is the payload received from the referral site.
type CreateLeadInput struct {
	FullName    string
	CPF         string
	CNPJ        string
	Telefone    string
	PlanoNome   string
	PlanoModelo string
	PlanoMegas  string
	PromoCode   string
}

// TransitionInput requests a single lead status change.
type TransitionInput struct {
	LeadID string
	Target enums.LeadStatus
	Actor  types.Actor
	Reason string
}

// ListFilter narrows lead listings.
type ListFilter struct {
	Status    *enums.LeadStatus
	PromoCode *string
}

// LeadList is one page of leads.
type LeadList struct {
	Leads      []LeadDTO `json:"leads"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// CancellationReasonDTO exposes a cancelled lead's reason.
type CancellationReasonDTO struct {
	LeadID    string    `json:"lead_id"`
	Motivo    string    `json:"motivo"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DashboardStats aggregates a seller's leads by status.
type DashboardStats struct {
	PromoCode           string          `json:"promo_code"`
	Pendentes           int64           `json:"pendentes"`
	EmAtendimento       int64           `json:"em_atendimento"`
	AguardandoPagamento int64           `json:"aguardando_pagamento"`
	Pagos               int64           `json:"pagos"`
	Finalizados         int64           `json:"finalizados"`
	Cancelados          int64           `json:"cancelados"`
	Total               int64           `json:"total"`
	ValorTotal          decimal.Decimal `json:"valor_total"`
	UltimaAtualizacao   *time.Time      `json:"ultima_atualizacao,omitempty"`
}
