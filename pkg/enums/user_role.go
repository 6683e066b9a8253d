package enums

import "fmt"

// UserRole is the job a funnel account holds.
type UserRole string

const (
	UserRoleVendedorExterno UserRole = "Vendedor Externo"
	UserRoleVendedorInterno UserRole = "Vendedor Interno"
	UserRoleFinanceiro      UserRole = "Financeiro"
	UserRoleAdmin           UserRole = "Admin"
)

var validUserRoles = []UserRole{
	UserRoleVendedorExterno,
	UserRoleVendedorInterno,
	UserRoleFinanceiro,
	UserRoleAdmin,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

// SettableLeadStatuses lists the statuses the role may assign to a lead.
func (r UserRole) SettableLeadStatuses() []LeadStatus {
	switch r {
	case UserRoleVendedorInterno:
		return []LeadStatus{
			LeadStatusPendente,
			LeadStatusSendoAtendido,
			LeadStatusFinalizado,
			LeadStatusAguardandoPagamento,
			LeadStatusCancelado,
		}
	case UserRoleFinanceiro:
		return []LeadStatus{LeadStatusAguardandoPagamento, LeadStatusPago, LeadStatusCancelado}
	case UserRoleAdmin:
		return LeadStatuses()
	case UserRoleVendedorExterno:
		return nil
	}
	return nil
}

// CanProcessPaymentGroups reports whether the role may pay or cancel a whole promo-code group.
func (r UserRole) CanProcessPaymentGroups() bool {
	return r == UserRoleFinanceiro
}

// CanSetLeadStatus reports whether the role may move a lead into status.
func (r UserRole) CanSetLeadStatus(status LeadStatus) bool {
	for _, allowed := range r.SettableLeadStatuses() {
		if allowed == status {
			return true
		}
	}
	return false
}
