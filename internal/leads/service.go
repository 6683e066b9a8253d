package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/leadfunnel-backend/pkg/db/models"
	"github.com/angelmondragon/leadfunnel-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/leadfunnel-backend/pkg/errors"
	"github.com/angelmondragon/leadfunnel-backend/pkg/logger"
	"github.com/angelmondragon/leadfunnel-backend/pkg/metrics"
	"github.com/angelmondragon/leadfunnel-backend/pkg/pagination"
	"github.com/angelmondragon/leadfunnel-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// BonusLedger moves a referring user's bonus counter inside the caller's transaction.
type BonusLedger interface {
	Increment(ctx context.Context, tx *gorm.DB, userID string) error
	Decrement(ctx context.Context, tx *gorm.DB, userID string) error
}

// ReferrerResolver maps a promo code to the seller that owns it.
type ReferrerResolver interface {
	FindByPromoCode(ctx context.Context, code string) (*models.User, error)
}

// Service is the lead state machine plus the lead read models.
type Service interface {
	CreateLead(ctx context.Context, input CreateLeadInput) (*LeadDTO, error)
	GetLead(ctx context.Context, actor types.Actor, id string) (*LeadDTO, error)
	ListLeads(ctx context.Context, actor types.Actor, filter ListFilter, params pagination.Params) (*LeadList, error)
	Transition(ctx context.Context, input TransitionInput) (*LeadDTO, error)
	CancellationReason(ctx context.Context, leadID string) (*CancellationReasonDTO, error)
	SaveCancellationReason(ctx context.Context, leadID, reason string) (*CancellationReasonDTO, error)
	DashboardStats(ctx context.Context, promoCode string) (*DashboardStats, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	ledger    BonusLedger
	referrers ReferrerResolver
	logg      *logger.Logger
	metrics   *metrics.FunnelMetrics
	now       func() time.Time
}

// NewService builds the lead service with the required dependencies.
func NewService(repo Repository, tx txRunner, ledger BonusLedger, referrers ReferrerResolver, logg *logger.Logger, m *metrics.FunnelMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("leads repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("bonus ledger required")
	}
	if referrers == nil {
		return nil, fmt.Errorf("referrer resolver required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		ledger:    ledger,
		referrers: referrers,
		logg:      logg,
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) CreateLead(ctx context.Context, input CreateLeadInput) (*LeadDTO, error) {
	lead, err := s.buildLead(input)
	if err != nil {
		return nil, err
	}

	if lead.PromoCode != nil {
		referrer, err := s.referrers.FindByPromoCode(ctx, *lead.PromoCode)
		switch {
		case err == nil:
			lead.UserIDPromoCode = &referrer.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			s.logg.Warn(s.logg.WithPromoCode(ctx, *lead.PromoCode), "lead promo code matches no seller")
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve promo code")
		}
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create lead")
	}
	return FromModel(lead), nil
}

func (s *service) buildLead(input CreateLeadInput) (*models.Lead, error) {
	name := strings.TrimSpace(input.FullName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name required")
	}
	cpf := digitsOnly(input.CPF)
	cnpj := digitsOnly(input.CNPJ)
	if cpf == "" && cnpj == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cpf or cnpj required")
	}
	if cpf != "" && len(cpf) != 11 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cpf must have 11 digits")
	}
	if cnpj != "" && len(cnpj) != 14 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cnpj must have 14 digits")
	}
	phone := digitsOnly(input.Telefone)
	if len(phone) < 10 || len(phone) > 11 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "telefone must have 10 or 11 digits")
	}

	var model enums.PlanModel
	if raw := strings.TrimSpace(input.PlanoModelo); raw != "" {
		parsed, err := enums.ParsePlanModel(strings.ToUpper(raw))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid plan model")
		}
		model = parsed
	}

	now := s.now()
	lead := &models.Lead{
		FullName:    name,
		CPF:         optional(cpf),
		CNPJ:        optional(cnpj),
		Telefone:    phone,
		PlanoNome:   strings.TrimSpace(input.PlanoNome),
		PlanoModelo: model,
		PlanoMegas:  strings.TrimSpace(input.PlanoMegas),
		PromoCode:   optional(strings.TrimSpace(input.PromoCode)),
		Status:      enums.LeadStatusPendente,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return lead, nil
}

func (s *service) GetLead(ctx context.Context, actor types.Actor, id string) (*LeadDTO, error) {
	if !actor.Present() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lead id required")
	}
	lead, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.FromStore(err, "lead not found", "load lead")
	}
	if actor.Role == enums.UserRoleVendedorExterno && !actor.OwnsPromoCode(lead.PromoCode) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "lead not found")
	}
	return FromModel(lead), nil
}

func (s *service) ListLeads(ctx context.Context, actor types.Actor, filter ListFilter, params pagination.Params) (*LeadList, error) {
	if !actor.Present() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if actor.Role == enums.UserRoleVendedorExterno {
		if actor.PromoCode == nil || strings.TrimSpace(*actor.PromoCode) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller has no promo code")
		}
		filter.PromoCode = actor.PromoCode
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.List(ctx, filter, cursor, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list leads")
	}

	list := &LeadList{Leads: make([]LeadDTO, 0, limit)}
	if len(rows) > limit {
		last := rows[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}
	for i := range rows {
		list.Leads = append(list.Leads, *FromModel(&rows[i]))
	}
	return list, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*LeadDTO, error) {
	if !input.Actor.Present() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(input.LeadID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lead id required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid lead status %q", input.Target))
	}
	reason := strings.TrimSpace(input.Reason)
	if input.Target == enums.LeadStatusCancelado && reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason required")
	}
	if !input.Actor.Role.CanSetLeadStatus(input.Target) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not set this status")
	}

	ctx = s.logg.WithLeadID(ctx, input.LeadID)

	var (
		result  *models.Lead
		from    enums.LeadStatus
		changed bool
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		lead, err := repo.FindByID(ctx, input.LeadID)
		if err != nil {
			return pkgerrors.FromStore(err, "lead not found", "load lead")
		}
		from = lead.Status
		now := s.now()

		if lead.Status == input.Target {
			result = lead
			if input.Target == enums.LeadStatusCancelado {
				if err := repo.UpsertCancellationReason(ctx, lead.ID, reason, now); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cancellation reason")
				}
			}
			return nil
		}
		if !lead.Status.CanTransitionTo(input.Target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "lead status transition not allowed").
				WithDetails(map[string]any{"from": lead.Status, "to": input.Target})
		}

		updates := ApplyStatus(lead, input.Target, input.Actor.DisplayName(), now)
		if err := repo.UpdateStatus(ctx, lead.ID, updates); err != nil {
			return pkgerrors.FromStore(err, "lead not found", "update lead status")
		}
		if input.Target == enums.LeadStatusCancelado {
			if err := repo.UpsertCancellationReason(ctx, lead.ID, reason, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cancellation reason")
			}
		}
		if err := s.moveBonus(ctx, tx, lead, input.Target); err != nil {
			return err
		}

		result = lead
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.metrics.IncTransition(from.String(), input.Target.String())
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"from":       from,
			"to":         input.Target,
			"actor_id":   input.Actor.ID,
			"actor_role": input.Actor.Role,
		})
		s.logg.Info(logCtx, "lead status changed")
	}
	return FromModel(result), nil
}

// moveBonus applies the ledger side effect tied to entering target. A referrer
// that no longer exists is logged and skipped.
func (s *service) moveBonus(ctx context.Context, tx *gorm.DB, lead *models.Lead, target enums.LeadStatus) error {
	if lead.UserIDPromoCode == nil || *lead.UserIDPromoCode == "" {
		return nil
	}
	var err error
	switch target {
	case enums.LeadStatusAguardandoPagamento:
		err = s.ledger.Increment(ctx, tx, *lead.UserIDPromoCode)
	case enums.LeadStatusCancelado:
		err = s.ledger.Decrement(ctx, tx, *lead.UserIDPromoCode)
	default:
		return nil
	}
	if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		s.logg.Warn(s.logg.WithUserID(ctx, *lead.UserIDPromoCode), "referring user missing; bonus untouched")
		return nil
	}
	return err
}

func (s *service) CancellationReason(ctx context.Context, leadID string) (*CancellationReasonDTO, error) {
	if strings.TrimSpace(leadID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lead id required")
	}
	reason, err := s.repo.FindCancellationReason(ctx, leadID)
	if err != nil {
		return nil, pkgerrors.FromStore(err, "cancellation reason not found", "load cancellation reason")
	}
	return &CancellationReasonDTO{LeadID: reason.LeadID, Motivo: reason.Motivo, UpdatedAt: reason.UpdatedAt}, nil
}

func (s *service) SaveCancellationReason(ctx context.Context, leadID, reason string) (*CancellationReasonDTO, error) {
	if strings.TrimSpace(leadID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lead id required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason required")
	}

	var out *CancellationReasonDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		lead, err := repo.FindByID(ctx, leadID)
		if err != nil {
			return pkgerrors.FromStore(err, "lead not found", "load lead")
		}
		if lead.Status != enums.LeadStatusCancelado {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only cancelled leads carry a reason")
		}
		now := s.now()
		if err := repo.UpsertCancellationReason(ctx, lead.ID, reason, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cancellation reason")
		}
		out = &CancellationReasonDTO{LeadID: lead.ID, Motivo: reason, UpdatedAt: now}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) DashboardStats(ctx context.Context, promoCode string) (*DashboardStats, error) {
	promoCode = strings.TrimSpace(promoCode)
	if promoCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller has no promo code")
	}
	counts, err := s.repo.CountByStatus(ctx, promoCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count leads")
	}
	latest, err := s.repo.LatestCreatedAt(ctx, promoCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest lead")
	}

	stats := &DashboardStats{
		PromoCode:           promoCode,
		Pendentes:           counts[enums.LeadStatusPendente],
		EmAtendimento:       counts[enums.LeadStatusSendoAtendido],
		AguardandoPagamento: counts[enums.LeadStatusAguardandoPagamento],
		Pagos:               counts[enums.LeadStatusPago],
		Finalizados:         counts[enums.LeadStatusFinalizado],
		Cancelados:          counts[enums.LeadStatusCancelado],
		UltimaAtualizacao:   latest,
	}
	for _, n := range counts {
		stats.Total += n
	}
	stats.ValorTotal = ValuePerLead.Mul(decimal.NewFromInt(stats.Total))
	return stats, nil
}

func digitsOnly(value string) string {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
