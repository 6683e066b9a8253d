package leads

import (
	"time"

	"github.com/angelmondragon/leadfunnel-backend/pkg/db/models"
	"github.com/angelmondragon/leadfunnel-backend/pkg/enums"
)

// ApplyStatus moves lead into target and returns the column updates that must
// be persisted together. The target's timestamp is only written the first time
// the lead enters it. Entering Pago records the actor as pago_por; every other
// status records it as atendido_por.
func ApplyStatus(lead *models.Lead, target enums.LeadStatus, actorName string, now time.Time) map[string]any {
	updates := map[string]any{
		"status":     target,
		"updated_at": now,
	}
	lead.Status = target
	lead.UpdatedAt = now

	stamp := func(field **time.Time, column string) {
		if *field != nil {
			return
		}
		at := now
		*field = &at
		updates[column] = at
	}

	switch target {
	case enums.LeadStatusPendente:
	case enums.LeadStatusSendoAtendido:
		stamp(&lead.AtendidoEm, "atendido_em")
	case enums.LeadStatusAguardandoPagamento:
		stamp(&lead.AguardandoPagamentoEm, "aguardando_pagamento_em")
	case enums.LeadStatusPago:
		stamp(&lead.PagoEm, "pago_em")
	case enums.LeadStatusFinalizado:
		stamp(&lead.FinalizadoEm, "finalizado_em")
	case enums.LeadStatusCancelado:
		stamp(&lead.CanceladoEm, "cancelado_em")
	}

	if actorName != "" {
		name := actorName
		if target == enums.LeadStatusPago {
			lead.PagoPor = &name
			updates["pago_por"] = name
		} else {
			lead.AtendidoPor = &name
			updates["atendido_por"] = name
		}
	}
	return updates
}
