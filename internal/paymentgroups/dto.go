package paymentgroups

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/leadfunnel-backend/internal/leads"
	"github.com/angelmondragon/leadfunnel-backend/internal/proofs"
	"github.com/angelmondragon/leadfunnel-backend/internal/users"
	"github.com/angelmondragon/leadfunnel-backend/pkg/db/models"
	"github.com/angelmondragon/leadfunnel-backend/pkg/enums"
	"github.com/angelmondragon/leadfunnel-backend/pkg/types"
)

// SellerSnapshot is the payout data shown to finance when the group was processed.
type SellerSnapshot struct {
	Name     string
	Telefone string
	PixCode  string
	PixType  string
}

// ProcessInput pays or cancels every lead that shares PromoCode.
type ProcessInput struct {
	PromoCode string
	Target    enums.LeadStatus
	Actor     types.Actor
	Reason    string
	Proof     *proofs.File

	ValorIndicacao decimal.Decimal
	ValorBonus     decimal.Decimal
	ValorTotal     decimal.Decimal

	Seller             SellerSnapshot
	ClientesData       string
	QuantidadeClientes int
}

// GroupDTO is the transport shape of a payment group audit row.
type GroupDTO struct {
	ID               string           `json:"id"`
	PromoCode        string           `json:"promo_code"`
	Status           enums.LeadStatus `json:"status"`
	Motivo           *string          `json:"motivo,omitempty"`
	ValorIndicacao   decimal.Decimal  `json:"valor_indicacao"`
	ValorBonus       decimal.Decimal  `json:"valor_bonus"`
	ValorTotal       decimal.Decimal  `json:"valor_total"`
	VendedorID       *string          `json:"vendedor_id,omitempty"`
	VendedorNome     *string          `json:"vendedor_nome,omitempty"`
	VendedorTelefone *string          `json:"vendedor_telefone,omitempty"`
	VendedorPixCode  *string          `json:"vendedor_pix_code,omitempty"`
	VendedorPixType  *string          `json:"vendedor_pix_type,omitempty"`
	LeadIDs          []string         `json:"lead_ids"`
	ClientesData     json.RawMessage  `json:"clientes_data,omitempty"`
	QuantidadeLeads  int              `json:"quantidade_leads"`
	ProcessadoEm     time.Time        `json:"processado_em"`
	ProcessadoPor    string           `json:"processado_por"`
	HasProof         bool             `json:"has_proof"`
}

// FromModel converts a group row into its transport shape.
func FromModel(m *models.PaymentGroup) *GroupDTO {
	if m == nil {
		return nil
	}
	out := &GroupDTO{
		ID:               m.ID,
		PromoCode:        m.PromoCode,
		Status:           m.Status,
		Motivo:           m.Motivo,
		ValorIndicacao:   m.ValorIndicacao,
		ValorBonus:       m.ValorBonus,
		ValorTotal:       m.ValorTotal,
		VendedorID:       m.VendedorID,
		VendedorNome:     m.VendedorNome,
		VendedorTelefone: m.VendedorTelefone,
		VendedorPixCode:  m.VendedorPixCode,
		VendedorPixType:  m.VendedorPixType,
		QuantidadeLeads:  m.QuantidadeLeads,
		ProcessadoEm:     m.ProcessadoEm,
		ProcessadoPor:    m.ProcessadoPor,
		HasProof:         m.Comprovante != nil && *m.Comprovante != "",
	}
	_ = json.Unmarshal(m.LeadIDs, &out.LeadIDs)
	if len(m.ClientesData) > 0 {
		out.ClientesData = json.RawMessage(m.ClientesData)
	}
	return out
}

// PendingGroup is the finance view of leads awaiting payment for one promo code.
type PendingGroup struct {
	PromoCode      string           `json:"promo_code"`
	Seller         *users.SellerDTO `json:"seller,omitempty"`
	Leads          []leads.LeadDTO  `json:"leads"`
	Quantidade     int              `json:"quantidade"`
	ValorIndicacao decimal.Decimal  `json:"valor_indicacao"`
}
