package enums

import "fmt"

// LeadStatus tracks where a lead sits in the sales funnel. Values are the
// labels persisted in the leads table.
type LeadStatus string

const (
	LeadStatusPendente            LeadStatus = "Pendente"
	LeadStatusSendoAtendido       LeadStatus = "Sendo Atendido"
	LeadStatusAguardandoPagamento LeadStatus = "Aguardando Pagamento"
	LeadStatusPago                LeadStatus = "Pago"
	LeadStatusFinalizado          LeadStatus = "Finalizado"
	LeadStatusCancelado           LeadStatus = "Cancelado"
)

var validLeadStatuses = []LeadStatus{
	LeadStatusPendente,
	LeadStatusSendoAtendido,
	LeadStatusAguardandoPagamento,
	LeadStatusPago,
	LeadStatusFinalizado,
	LeadStatusCancelado,
}

// String implements fmt.Stringer.
func (s LeadStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known LeadStatus.
func (s LeadStatus) IsValid() bool {
	for _, candidate := range validLeadStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLeadStatus converts raw input into a LeadStatus.
func ParseLeadStatus(value string) (LeadStatus, error) {
	for _, candidate := range validLeadStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lead status %q", value)
}

// LeadStatuses returns every status in funnel order.
func LeadStatuses() []LeadStatus {
	out := make([]LeadStatus, len(validLeadStatuses))
	copy(out, validLeadStatuses)
	return out
}

// AllowedTransitions lists the statuses a lead may move to from s.
func (s LeadStatus) AllowedTransitions() []LeadStatus {
	switch s {
	case LeadStatusPendente:
		return []LeadStatus{LeadStatusSendoAtendido, LeadStatusAguardandoPagamento, LeadStatusFinalizado, LeadStatusCancelado}
	case LeadStatusSendoAtendido:
		return []LeadStatus{LeadStatusPendente, LeadStatusAguardandoPagamento, LeadStatusFinalizado, LeadStatusCancelado}
	case LeadStatusAguardandoPagamento:
		return []LeadStatus{LeadStatusPago, LeadStatusFinalizado, LeadStatusCancelado}
	case LeadStatusPago, LeadStatusFinalizado:
		return []LeadStatus{LeadStatusCancelado}
	case LeadStatusCancelado:
		return nil
	}
	return nil
}

// CanTransitionTo reports whether moving from s to target is permitted.
// Staying in the same status is always allowed.
func (s LeadStatus) CanTransitionTo(target LeadStatus) bool {
	if !s.IsValid() || !target.IsValid() {
		return false
	}
	if s == target {
		return true
	}
	for _, next := range s.AllowedTransitions() {
		if next == target {
			return true
		}
	}
	return false
}

// IsGroupTarget reports whether the status can close a whole payment group.
func (s LeadStatus) IsGroupTarget() bool {
	return s == LeadStatusPago || s == LeadStatusCancelado
}

var leadStatusSlugs = map[string]LeadStatus{
	"pendentes":            LeadStatusPendente,
	"em-atendimento":       LeadStatusSendoAtendido,
	"aguardando-pagamento": LeadStatusAguardandoPagamento,
	"pagos":                LeadStatusPago,
	"finalizados":          LeadStatusFinalizado,
	"cancelados":           LeadStatusCancelado,
}

// ParseLeadStatusSlug resolves the URL-friendly list filter into a LeadStatus.
func ParseLeadStatusSlug(slug string) (LeadStatus, error) {
	if status, ok := leadStatusSlugs[slug]; ok {
		return status, nil
	}
	return "", fmt.Errorf("invalid lead status filter %q", slug)
}
