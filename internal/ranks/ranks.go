// Package ranks holds the static rank milestone catalog. A milestone pairs a
// personal-deposit threshold with a team-deposit threshold and pays a
// one-time bonus when both are met.
package ranks

// Milestone describes a single rank reward tier. Amounts are cents.
type Milestone struct {
	ID              int   `json:"id"`
	PersonalDeposit int64 `json:"personal_deposit"`
	TeamDeposit     int64 `json:"team_deposit"`
	Reward          int64 `json:"reward"`
}

// Milestones is the immutable milestone table. IDs are stable identifiers
// recorded on rank awards; never renumber existing entries.
var Milestones = []Milestone{
	{ID: 1, PersonalDeposit: 20_000, TeamDeposit: 100_000, Reward: 2_000},
	{ID: 2, PersonalDeposit: 50_000, TeamDeposit: 500_000, Reward: 10_000},
	{ID: 3, PersonalDeposit: 200_000, TeamDeposit: 1_500_000, Reward: 20_000},
	{ID: 4, PersonalDeposit: 400_000, TeamDeposit: 3_000_000, Reward: 50_000},
	{ID: 5, PersonalDeposit: 100_000, TeamDeposit: 10_000_000, Reward: 100_000},
}

// Achieved reports whether both thresholds are met simultaneously.
func (m Milestone) Achieved(personal, team int64) bool {
	return personal >= m.PersonalDeposit && team >= m.TeamDeposit
}

// Progress returns the average of the personal and team completion
// fractions, clamped to [0, 1].
func (m Milestone) Progress(personal, team int64) float64 {
	return (fraction(personal, m.PersonalDeposit) + fraction(team, m.TeamDeposit)) / 2
}

func fraction(have, need int64) float64 {
	if need <= 0 {
		return 1
	}
	f := float64(have) / float64(need)
	if f > 1 {
		return 1
	}
	return f
}
