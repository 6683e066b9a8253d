package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/leadfunnel-backend/api/responses"
	"github.com/angelmondragon/leadfunnel-backend/api/validators"
	"github.com/angelmondragon/leadfunnel-backend/internal/leads"
	"github.com/angelmondragon/leadfunnel-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/leadfunnel-backend/pkg/errors"
	"github.com/angelmondragon/leadfunnel-backend/pkg/logger"
	"github.com/angelmondragon/leadfunnel-backend/pkg/pagination"
)

const maxReasonLength = 1000

type captureLeadRequest struct {
	FullName    string `json:"full_name" validate:"required,max=200"`
	CPF         string `json:"cpf,omitempty" validate:"max=20"`
	CNPJ        string `json:"cnpj,omitempty" validate:"max=24"`
	Telefone    string `json:"telefone" validate:"required,max=20"`
	PlanoNome   string `json:"plano_nome,omitempty" validate:"max=120"`
	PlanoModelo string `json:"plano_modelo,omitempty" validate:"max=20"`
	PlanoMegas  string `json:"plano_megas,omitempty" validate:"max=20"`
	PromoCode   string `json:"promo_code,omitempty" validate:"max=64"`
}

func (r captureLeadRequest) toInput() leads.CreateLeadInput {
	return leads.CreateLeadInput{
		FullName:    r.FullName,
		CPF:         r.CPF,
		CNPJ:        r.CNPJ,
		Telefone:    r.Telefone,
		PlanoNome:   r.PlanoNome,
		PlanoModelo: r.PlanoModelo,
		PlanoMegas:  r.PlanoMegas,
		PromoCode:   r.PromoCode,
	}
}

// CaptureLead stores a lead submitted by the referral site.
func CaptureLead(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lead service unavailable"))
			return
		}

		var payload captureLeadRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lead, err := svc.CreateLead(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, lead)
	}
}

// ListLeads pages through leads, optionally filtered by a status slug such as
// "aguardando-pagamento".
func ListLeads(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lead service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		var filter leads.ListFilter
		if slug := strings.TrimSpace(query.Get("status")); slug != "" {
			status, err := enums.ParseLeadStatusSlug(slug)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter").
					WithDetails(map[string]any{"field": "status"}))
				return
			}
			filter.Status = &status
		}
		if code := strings.TrimSpace(query.Get("promo_code")); code != "" {
			filter.PromoCode = &code
		}

		list, err := svc.ListLeads(r.Context(), actor, filter, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(query.Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

func GetLead(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lead service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		leadID, err := pathParam(r, "leadId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lead, err := svc.GetLead(r.Context(), actor, leadID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, lead)
	}
}

type leadStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Motivo string `json:"motivo,omitempty"`
}

// UpdateLeadStatus moves a single lead through the funnel.
func UpdateLeadStatus(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lead service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		leadID, err := pathParam(r, "leadId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload leadStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseLeadStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
				WithDetails(map[string]any{"field": "status"}))
			return
		}

		lead, err := svc.Transition(r.Context(), leads.TransitionInput{
			LeadID: leadID,
			Target: target,
			Actor:  actor,
			Reason: validators.SanitizeString(payload.Motivo, maxReasonLength),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, lead)
	}
}

func GetCancellationReason(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lead service unavailable"))
			return
		}

		leadID, err := pathParam(r, "leadId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reason, err := svc.CancellationReason(r.Context(), leadID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, reason)
	}
}

type cancellationReasonRequest struct {
	Motivo string `json:"motivo" validate:"required,max=1000"`
}

func PutCancellationReason(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lead service unavailable"))
			return
		}

		leadID, err := pathParam(r, "leadId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cancellationReasonRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reason, err := svc.SaveCancellationReason(r.Context(), leadID, validators.SanitizeString(payload.Motivo, maxReasonLength))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, reason)
	}
}

// SellerDashboard summarises the caller's leads. Staff may inspect another
// seller through the promo_code query parameter.
func SellerDashboard(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lead service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promoCode := ""
		if actor.PromoCode != nil {
			promoCode = *actor.PromoCode
		}
		if override := strings.TrimSpace(r.URL.Query().Get("promo_code")); override != "" && actor.Role != enums.UserRoleVendedorExterno {
			promoCode = override
		}

		stats, err := svc.DashboardStats(r.Context(), promoCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}
