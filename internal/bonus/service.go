package bonus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/leadfunnel-backend/internal/users"
	"github.com/angelmondragon/leadfunnel-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/leadfunnel-backend/pkg/errors"
	"github.com/angelmondragon/leadfunnel-backend/pkg/logger"
	"github.com/angelmondragon/leadfunnel-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the referral bonus ledger. Increment and Decrement are not
// idempotent: each call moves the counter.
type Service interface {
	Increment(ctx context.Context, tx *gorm.DB, userID string) error
	Decrement(ctx context.Context, tx *gorm.DB, userID string) error
	Redeem(ctx context.Context, input RedeemInput) (*RedeemResult, error)
	Balance(ctx context.Context, userID string) (*BalanceDTO, error)
	History(ctx context.Context, userID string) ([]RedemptionDTO, error)
}

type service struct {
	repo    Repository
	users   *users.Repository
	tx      txRunner
	logg    *logger.Logger
	metrics *metrics.FunnelMetrics
	now     func() time.Time
}

// NewService wires the bonus ledger.
func NewService(repo Repository, userRepo *users.Repository, tx txRunner, logg *logger.Logger, m *metrics.FunnelMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bonus repository required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		users:   userRepo,
		tx:      tx,
		logg:    logg,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Increment(ctx context.Context, tx *gorm.DB, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	err := s.users.WithTx(tx).IncrementBonus(ctx, userID)
	return pkgerrors.FromStore(err, "referring user not found", "increment referral bonus")
}

func (s *service) Decrement(ctx context.Context, tx *gorm.DB, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	err := s.users.WithTx(tx).DecrementBonus(ctx, userID)
	return pkgerrors.FromStore(err, "referring user not found", "decrement referral bonus")
}

func (s *service) Redeem(ctx context.Context, input RedeemInput) (*RedeemResult, error) {
	result, err := s.redeem(ctx, input)
	s.metrics.ObserveRedemption(err)
	return result, err
}

func (s *service) redeem(ctx context.Context, input RedeemInput) (*RedeemResult, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.ReferralCountAtRequestTime < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "referral count must not be negative")
	}

	var result *RedeemResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.users.WithTx(tx)
		user, err := userRepo.FindByID(ctx, input.UserID)
		if err != nil {
			return pkgerrors.FromStore(err, "user not found", "load user")
		}

		if user.BonusIndicacao != input.ReferralCountAtRequestTime {
			return pkgerrors.New(pkgerrors.CodeConflict, "referral balance changed; refresh and retry").
				WithDetails(map[string]any{"current": user.BonusIndicacao})
		}

		tier := MilestoneFor(user.BonusIndicacao)
		if tier.Reward == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "no milestone reached yet")
		}
		if input.Amount != tier.Reward {
			return pkgerrors.New(pkgerrors.CodeValidation, "amount does not match the reachable milestone").
				WithDetails(map[string]any{"expected": tier.Reward})
		}
		if user.BonusIndicacao-tier.Referrals < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "insufficient referral balance")
		}

		changed, err := userRepo.ApplyRedemption(ctx, user.ID, input.ReferralCountAtRequestTime, tier.Referrals, tier.Reward)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply redemption")
		}
		if !changed {
			return pkgerrors.New(pkgerrors.CodeConflict, "referral balance changed; refresh and retry")
		}

		now := s.now()
		entry := &models.BonusRedemption{
			UserID:         user.ID,
			Amount:         tier.Reward,
			ReferralsSpent: tier.Referrals,
			RedeemedAt:     now,
		}
		if err := s.repo.WithTx(tx).CreateRedemption(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record redemption")
		}

		result = &RedeemResult{
			Amount:         tier.Reward,
			ReferralsSpent: tier.Referrals,
			BonusIndicacao: user.BonusIndicacao - tier.Referrals,
			Resgatado:      user.BonusIndicacaoResgatado + tier.Reward,
			RedeemedAt:     now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"user_id":         input.UserID,
		"amount":          result.Amount,
		"referrals_spent": result.ReferralsSpent,
	})
	s.logg.Info(logCtx, "bonus redeemed")
	return result, nil
}

func (s *service) Balance(ctx context.Context, userID string) (*BalanceDTO, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.FromStore(err, "user not found", "load user")
	}
	return &BalanceDTO{
		BonusIndicacao: user.BonusIndicacao,
		Resgatado:      user.BonusIndicacaoResgatado,
		Reachable:      MilestoneFor(user.BonusIndicacao),
		Next:           NextMilestone(user.BonusIndicacao),
		Milestones:     Milestones(),
	}, nil
}

func (s *service) History(ctx context.Context, userID string) ([]RedemptionDTO, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.ListRedemptions(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list redemptions")
	}
	out := make([]RedemptionDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, redemptionFromModel(row))
	}
	return out, nil
}
