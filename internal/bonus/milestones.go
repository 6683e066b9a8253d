package bonus

// Milestone is a redemption tier: reaching Referrals unlocks Reward.
type Milestone struct {
	Referrals int `json:"referrals"`
	Reward    int `json:"reward"`
}

// milestones is ordered by Referrals ascending.
var milestones = []Milestone{
	{Referrals: 0, Reward: 0},
	{Referrals: 5, Reward: 20},
	{Referrals: 10, Reward: 45},
	{Referrals: 15, Reward: 75},
	{Referrals: 20, Reward: 150},
}

// Milestones returns a copy of the redemption table.
func Milestones() []Milestone {
	out := make([]Milestone, len(milestones))
	copy(out, milestones)
	return out
}

// MilestoneFor returns the highest tier reachable with count referrals.
func MilestoneFor(count int) Milestone {
	best := milestones[0]
	for _, m := range milestones {
		if m.Referrals <= count {
			best = m
		}
	}
	return best
}

// NextMilestone returns the first tier above count, or nil past the top tier.
func NextMilestone(count int) *Milestone {
	for _, m := range milestones {
		if m.Referrals > count {
			next := m
			return &next
		}
	}
	return nil
}
