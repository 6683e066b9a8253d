package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/leadfunnel-backend/api/responses"
	"github.com/angelmondragon/leadfunnel-backend/api/validators"
	"github.com/angelmondragon/leadfunnel-backend/internal/paymentgroups"
	"github.com/angelmondragon/leadfunnel-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/leadfunnel-backend/pkg/errors"
	"github.com/angelmondragon/leadfunnel-backend/pkg/logger"
)

// PendingGroups lists leads awaiting payment grouped by seller promo code.
func PendingGroups(svc paymentgroups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment group service unavailable"))
			return
		}

		groups, err := svc.PendingGroups(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, groups)
	}
}

// ProcessGroup pays or cancels every lead of a promo code from a multipart
// form. Pago requires the comprovante file; Cancelado requires motivo.
func ProcessGroup(svc paymentgroups.Service, maxProofBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment group service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		promoCode, err := pathParam(r, "promoCode")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := validators.ParseMultipart(w, r, maxProofBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := processInputFromForm(r, maxProofBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.PromoCode = promoCode
		input.Actor = actor

		group, err := svc.ProcessGroup(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, group)
	}
}

func processInputFromForm(r *http.Request, maxProofBytes int64) (paymentgroups.ProcessInput, error) {
	var input paymentgroups.ProcessInput

	target, err := enums.ParseLeadStatus(formValue(r, "status"))
	if err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
			WithDetails(map[string]any{"field": "status"})
	}
	input.Target = target

	if input.ValorIndicacao, err = formDecimal(r, "valorTotal"); err != nil {
		return input, err
	}
	if input.ValorBonus, err = formDecimal(r, "bonusIndicacaoResgatado"); err != nil {
		return input, err
	}
	if input.ValorTotal, err = formDecimal(r, "valorTotalFinal"); err != nil {
		return input, err
	}
	if raw := formValue(r, "quantidadeClientes"); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil || qty < 0 {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "quantidadeClientes must be a non-negative integer").
				WithDetails(map[string]any{"field": "quantidadeClientes"})
		}
		input.QuantidadeClientes = qty
	}

	input.Seller = paymentgroups.SellerSnapshot{
		Name:     validators.SanitizeString(r.FormValue("vendedorNome"), 200),
		Telefone: validators.SanitizeString(r.FormValue("vendedorTelefone"), 20),
		PixCode:  validators.SanitizeString(r.FormValue("vendedorPixCode"), 200),
		PixType:  validators.SanitizeString(r.FormValue("vendedorPixType"), 40),
	}
	input.ClientesData = formValue(r, "clientesData")
	input.Reason = validators.SanitizeString(r.FormValue("motivo"), maxReasonLength)

	upload, ok, err := validators.ReadFormFile(r, proofField, maxProofBytes)
	if err != nil {
		return input, err
	}
	if ok {
		file := toProofFile(upload)
		input.Proof = &file
	}
	return input, nil
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

func formDecimal(r *http.Request, key string) (decimal.Decimal, error) {
	raw := formValue(r, key)
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(strings.Replace(raw, ",", ".", 1))
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, key+" must be numeric").
			WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

func GroupProof(svc paymentgroups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment group service unavailable"))
			return
		}

		promoCode, err := pathParam(r, "promoCode")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		proof, err := svc.GroupProof(r.Context(), promoCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeProof(w, r, proof, logg)
	}
}

func GroupHistory(svc paymentgroups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment group service unavailable"))
			return
		}

		promoCode, err := pathParam(r, "promoCode")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.History(r.Context(), promoCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, history)
	}
}
