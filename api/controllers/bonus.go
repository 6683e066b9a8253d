package controllers

import (
	"net/http"

	"github.com/angelmondragon/leadfunnel-backend/api/responses"
	"github.com/angelmondragon/leadfunnel-backend/api/validators"
	"github.com/angelmondragon/leadfunnel-backend/internal/bonus"
	pkgerrors "github.com/angelmondragon/leadfunnel-backend/pkg/errors"
	"github.com/angelmondragon/leadfunnel-backend/pkg/logger"
)

func BonusBalance(svc bonus.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bonus service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Balance(r.Context(), actor.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, balance)
	}
}

func BonusHistory(svc bonus.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bonus service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.History(r.Context(), actor.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, history)
	}
}

type redeemRequest struct {
	Amount        int `json:"amount" validate:"required,gt=0"`
	ReferralCount int `json:"referral_count" validate:"gte=0"`
}

// RedeemBonus exchanges accumulated referrals for the milestone reward. The
// referral_count the client displayed must still match the stored balance.
func RedeemBonus(svc bonus.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bonus service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload redeemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Redeem(r.Context(), bonus.RedeemInput{
			UserID:                     actor.ID,
			Amount:                     payload.Amount,
			ReferralCountAtRequestTime: payload.ReferralCount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
