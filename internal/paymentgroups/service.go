package paymentgroups

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/angelmondragon/leadfunnel-backend/internal/leads"
	"github.com/angelmondragon/leadfunnel-backend/internal/proofs"
	"github.com/angelmondragon/leadfunnel-backend/internal/users"
	"github.com/angelmondragon/leadfunnel-backend/pkg/db/models"
	"github.com/angelmondragon/leadfunnel-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/leadfunnel-backend/pkg/errors"
	"github.com/angelmondragon/leadfunnel-backend/pkg/logger"
	"github.com/angelmondragon/leadfunnel-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service settles or cancels every lead of a seller in one step.
type Service interface {
	ProcessGroup(ctx context.Context, input ProcessInput) (*GroupDTO, error)
	PendingGroups(ctx context.Context) ([]PendingGroup, error)
	GroupProof(ctx context.Context, promoCode string) (*proofs.Proof, error)
	History(ctx context.Context, promoCode string) ([]GroupDTO, error)
}

type service struct {
	repo          Repository
	leadRepo      leads.Repository
	proofRepo     proofs.Repository
	userRepo      *users.Repository
	ledger        leads.BonusLedger
	tx            txRunner
	logg          *logger.Logger
	metrics       *metrics.FunnelMetrics
	maxProofBytes int64
	now           func() time.Time
}

// Deps groups the collaborators of the payment group service.
type Deps struct {
	Repo          Repository
	Leads         leads.Repository
	Proofs        proofs.Repository
	Users         *users.Repository
	Ledger        leads.BonusLedger
	Tx            txRunner
	Logger        *logger.Logger
	Metrics       *metrics.FunnelMetrics
	MaxProofBytes int64
}

func NewService(deps Deps) (Service, error) {
	if deps.Repo == nil {
		return nil, fmt.Errorf("payment group repository required")
	}
	if deps.Leads == nil {
		return nil, fmt.Errorf("leads repository required")
	}
	if deps.Proofs == nil {
		return nil, fmt.Errorf("proofs repository required")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if deps.Ledger == nil {
		return nil, fmt.Errorf("bonus ledger required")
	}
	if deps.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:          deps.Repo,
		leadRepo:      deps.Leads,
		proofRepo:     deps.Proofs,
		userRepo:      deps.Users,
		ledger:        deps.Ledger,
		tx:            deps.Tx,
		logg:          deps.Logger,
		metrics:       deps.Metrics,
		maxProofBytes: deps.MaxProofBytes,
		now:           func() time.Time { return time.Now().UTC() },
	}, nil
}

type validatedInput struct {
	ProcessInput
	promoCode string
	reason    string
	dataURI   string
}

func (s *service) validate(input ProcessInput) (*validatedInput, error) {
	if !input.Actor.Present() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	out := &validatedInput{ProcessInput: input}
	out.promoCode = strings.TrimSpace(input.PromoCode)
	if out.promoCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code required")
	}
	if !input.Target.IsGroupTarget() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group status must be Pago or Cancelado").
			WithDetails(map[string]any{"status": input.Target})
	}
	if !input.Actor.Role.CanProcessPaymentGroups() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not process payment groups")
	}
	for field, value := range map[string]decimal.Decimal{
		"valor_indicacao": input.ValorIndicacao,
		"valor_bonus":     input.ValorBonus,
		"valor_total":     input.ValorTotal,
	} {
		if value.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "group totals must not be negative").
				WithDetails(map[string]any{"field": field})
		}
	}
	if data := strings.TrimSpace(input.ClientesData); data != "" && !json.Valid([]byte(data)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "clientes data must be valid JSON")
	}

	switch input.Target {
	case enums.LeadStatusCancelado:
		out.reason = strings.TrimSpace(input.Reason)
		if out.reason == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason required")
		}
	case enums.LeadStatusPago:
		if input.Proof == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment proof is required")
		}
		contentType, err := proofs.Validate(*input.Proof, s.maxProofBytes)
		if err != nil {
			return nil, err
		}
		out.dataURI = proofs.EncodeDataURI(contentType, input.Proof.Data)
	}
	return out, nil
}

func (s *service) ProcessGroup(ctx context.Context, input ProcessInput) (*GroupDTO, error) {
	in, err := s.validate(input)
	if err != nil {
		s.metrics.ObserveGroup(input.Target.String(), 0, err)
		return nil, err
	}

	ctx = s.logg.WithPromoCode(ctx, in.promoCode)
	var group *models.PaymentGroup
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		leadRepo := s.leadRepo.WithTx(tx)
		groupLeads, err := leadRepo.FindByPromoCode(ctx, in.promoCode)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group leads")
		}
		if len(groupLeads) == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no leads found for promo code")
		}
		if in.QuantidadeClientes > 0 && in.QuantidadeClientes != len(groupLeads) {
			return pkgerrors.New(pkgerrors.CodeConflict, "group changed since it was listed; refresh and retry").
				WithDetails(map[string]any{"expected": in.QuantidadeClientes, "actual": len(groupLeads)})
		}

		now := s.now()
		actorName := in.Actor.DisplayName()
		ids := make([]string, 0, len(groupLeads))
		for i := range groupLeads {
			lead := &groupLeads[i]
			if err := s.applyToLead(ctx, tx, leadRepo, lead, in, actorName, now); err != nil {
				return err
			}
			ids = append(ids, lead.ID)
		}

		group, err = s.buildGroup(ctx, tx, in, groupLeads, ids, actorName, now)
		if err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).Create(ctx, group); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment group")
		}
		return nil
	})
	if err != nil {
		s.metrics.ObserveGroup(in.Target.String(), 0, err)
		if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			s.logg.Error(ctx, "payment group processing failed", err)
		}
		return nil, err
	}

	s.metrics.ObserveGroup(in.Target.String(), group.QuantidadeLeads, nil)
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"group_id":   group.ID,
		"status":     group.Status,
		"lead_count": group.QuantidadeLeads,
		"actor_id":   in.Actor.ID,
	})
	s.logg.Info(logCtx, "payment group processed")
	return FromModel(group), nil
}

func (s *service) applyToLead(ctx context.Context, tx *gorm.DB, leadRepo leads.Repository, lead *models.Lead, in *validatedInput, actorName string, now time.Time) error {
	alreadyThere := lead.Status == in.Target
	updates := leads.ApplyStatus(lead, in.Target, actorName, now)
	if err := leadRepo.UpdateStatus(ctx, lead.ID, updates); err != nil {
		return pkgerrors.FromStore(err, "lead not found", "update lead status")
	}

	switch in.Target {
	case enums.LeadStatusCancelado:
		if err := leadRepo.UpsertCancellationReason(ctx, lead.ID, in.reason, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cancellation reason")
		}
		// Leads already cancelled keep their bonus untouched: the ledger has no
		// per-event guard, so decrementing again would double-count a replayed cancel.
		if alreadyThere || lead.UserIDPromoCode == nil || *lead.UserIDPromoCode == "" {
			return nil
		}
		err := s.ledger.Decrement(ctx, tx, *lead.UserIDPromoCode)
		if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			s.logg.Warn(s.logg.WithUserID(ctx, *lead.UserIDPromoCode), "referring user missing; bonus untouched")
			return nil
		}
		return err
	case enums.LeadStatusPago:
		if _, err := s.proofRepo.WithTx(tx).Replace(ctx, lead.ID, in.dataURI, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store payment proof")
		}
	}
	return nil
}

func (s *service) buildGroup(ctx context.Context, tx *gorm.DB, in *validatedInput, groupLeads []models.Lead, ids []string, actorName string, now time.Time) (*models.PaymentGroup, error) {
	leadIDs, err := json.Marshal(ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode lead ids")
	}

	group := &models.PaymentGroup{
		PromoCode:        in.promoCode,
		ValorIndicacao:   in.ValorIndicacao,
		ValorBonus:       in.ValorBonus,
		ValorTotal:       in.ValorTotal,
		Status:           in.Target,
		VendedorNome:     optional(in.Seller.Name),
		VendedorTelefone: optional(in.Seller.Telefone),
		VendedorPixCode:  optional(in.Seller.PixCode),
		VendedorPixType:  optional(in.Seller.PixType),
		LeadIDs:          datatypes.JSON(leadIDs),
		QuantidadeLeads:  len(groupLeads),
		ProcessadoEm:     now,
		ProcessadoPor:    actorName,
	}
	if data := strings.TrimSpace(in.ClientesData); data != "" {
		group.ClientesData = datatypes.JSON(data)
	}
	switch in.Target {
	case enums.LeadStatusCancelado:
		group.Motivo = &in.reason
	case enums.LeadStatusPago:
		group.Comprovante = &in.dataURI
	}

	sellerID := groupLeads[0].UserIDPromoCode
	if sellerID == nil || *sellerID == "" {
		return group, nil
	}
	group.VendedorID = sellerID

	seller, err := s.userRepo.WithTx(tx).FindByID(ctx, *sellerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return group, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	if group.VendedorNome == nil {
		group.VendedorNome = optional(seller.Name)
	}
	if group.VendedorTelefone == nil {
		group.VendedorTelefone = seller.Telefone
	}
	if group.VendedorPixCode == nil {
		group.VendedorPixCode = seller.PixCode
	}
	if group.VendedorPixType == nil && seller.PixType != nil {
		group.VendedorPixType = optional(seller.PixType.String())
	}
	return group, nil
}

func (s *service) PendingGroups(ctx context.Context) ([]PendingGroup, error) {
	rows, err := s.leadRepo.FindByStatus(ctx, enums.LeadStatusAguardandoPagamento)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load awaiting leads")
	}

	byCode := make(map[string]*PendingGroup)
	sellerOf := make(map[string]string)
	var sellerIDs []string
	for i := range rows {
		lead := &rows[i]
		if lead.PromoCode == nil || strings.TrimSpace(*lead.PromoCode) == "" {
			continue
		}
		code := *lead.PromoCode
		group, ok := byCode[code]
		if !ok {
			group = &PendingGroup{PromoCode: code}
			byCode[code] = group
		}
		group.Leads = append(group.Leads, *leads.FromModel(lead))
		if _, seen := sellerOf[code]; !seen && lead.UserIDPromoCode != nil {
			sellerOf[code] = *lead.UserIDPromoCode
			sellerIDs = append(sellerIDs, *lead.UserIDPromoCode)
		}
	}

	sellers, err := s.userRepo.FindByIDs(ctx, sellerIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sellers")
	}
	sellerByID := make(map[string]*models.User, len(sellers))
	for i := range sellers {
		sellerByID[sellers[i].ID] = &sellers[i]
	}

	out := make([]PendingGroup, 0, len(byCode))
	for code, group := range byCode {
		group.Quantidade = len(group.Leads)
		group.ValorIndicacao = leads.ValuePerLead.Mul(decimal.NewFromInt(int64(group.Quantidade)))
		if id, ok := sellerOf[code]; ok {
			group.Seller = users.FromModel(sellerByID[id])
		}
		out = append(out, *group)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PromoCode < out[j].PromoCode })
	return out, nil
}

func (s *service) GroupProof(ctx context.Context, promoCode string) (*proofs.Proof, error) {
	promoCode = strings.TrimSpace(promoCode)
	if promoCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code required")
	}
	group, err := s.repo.LatestByPromoCode(ctx, promoCode)
	if err != nil {
		return nil, pkgerrors.FromStore(err, "payment group not found", "load payment group")
	}
	if group.Status != enums.LeadStatusPago {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "latest group was not paid").
			WithDetails(map[string]any{"status": group.Status})
	}
	if group.Comprovante == nil || *group.Comprovante == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment group has no proof")
	}
	file, err := proofs.DecodeDataURI(*group.Comprovante)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode payment proof")
	}
	return &proofs.Proof{
		ContentType: file.ContentType,
		Size:        len(file.Data),
		DataURI:     *group.Comprovante,
		CreatedAt:   group.ProcessadoEm,
		Data:        file.Data,
	}, nil
}

func (s *service) History(ctx context.Context, promoCode string) ([]GroupDTO, error) {
	promoCode = strings.TrimSpace(promoCode)
	if promoCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code required")
	}
	rows, err := s.repo.ListByPromoCode(ctx, promoCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment groups")
	}
	out := make([]GroupDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
