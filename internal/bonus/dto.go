package bonus

import (
	"time"

	"github.com/angelmondragon/leadfunnel-backend/pkg/db/models"
)

// RedeemInput carries a redemption request together with the balance the
// client saw when it asked.
type RedeemInput struct {
	UserID                     string
	Amount                     int
	ReferralCountAtRequestTime int
}

// RedeemResult reports the balances after a successful redemption.
type RedeemResult struct {
	Amount         int       `json:"amount"`
	ReferralsSpent int       `json:"referrals_spent"`
	BonusIndicacao int       `json:"bonus_indicacao"`
	Resgatado      int       `json:"bonus_indicacao_resgatado"`
	RedeemedAt     time.Time `json:"redeemed_at"`
}

// BalanceDTO summarises a seller's referral balance.
type BalanceDTO struct {
	BonusIndicacao int         `json:"bonus_indicacao"`
	Resgatado      int         `json:"bonus_indicacao_resgatado"`
	Reachable      Milestone   `json:"reachable"`
	Next           *Milestone  `json:"next,omitempty"`
	Milestones     []Milestone `json:"milestones"`
}

// RedemptionDTO is one history entry.
type RedemptionDTO struct {
	ID             string    `json:"id"`
	Amount         int       `json:"amount"`
	ReferralsSpent int       `json:"referrals_spent"`
	RedeemedAt     time.Time `json:"redeemed_at"`
}

func redemptionFromModel(m models.BonusRedemption) RedemptionDTO {
	return RedemptionDTO{
		ID:             m.ID,
		Amount:         m.Amount,
		ReferralsSpent: m.ReferralsSpent,
		RedeemedAt:     m.RedeemedAt,
	}
}
