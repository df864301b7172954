// Package plans holds the static investment plan catalog. Plans map a
// deposit range (in cents) to a daily profit rate range. The catalog is
// contiguous and covers every amount from the global minimum upward.
package plans

// Plan describes a single investment tier.
type Plan struct {
	Name         string  `json:"name"`
	MinAmount    int64   `json:"min_amount"`
	MaxAmount    int64   `json:"max_amount"` // 0 means unbounded
	DailyRateMin float64 `json:"daily_rate_min"`
	DailyRateMax float64 `json:"daily_rate_max"`
}

// Catalog is the immutable plan table, ordered by MinAmount.
var Catalog = []Plan{
	{Name: "Starter Plan", MinAmount: 2_000, MaxAmount: 19_999, DailyRateMin: 1.50, DailyRateMax: 1.75},
	{Name: "Growth Plan", MinAmount: 20_000, MaxAmount: 79_999, DailyRateMin: 2.00, DailyRateMax: 2.50},
	{Name: "Pro Plan", MinAmount: 80_000, MaxAmount: 299_999, DailyRateMin: 2.50, DailyRateMax: 3.50},
	{Name: "Elite Plan", MinAmount: 300_000, MaxAmount: 0, DailyRateMin: 3.50, DailyRateMax: 4.00},
}

// Unbounded reports whether the plan has no upper deposit limit.
func (p Plan) Unbounded() bool {
	return p.MaxAmount == 0
}

// MidpointRate returns the midpoint of the plan's daily rate range,
// used for the display-only profit estimate shown at deposit time.
func (p Plan) MidpointRate() float64 {
	return (p.DailyRateMin + p.DailyRateMax) / 2
}

// Contains reports whether amount falls within the plan's deposit range.
func (p Plan) Contains(amount int64) bool {
	if amount < p.MinAmount {
		return false
	}
	return p.Unbounded() || amount <= p.MaxAmount
}

// Resolve returns the plan whose range contains amount. The second return
// value is false when amount is below the lowest plan minimum; amounts at or
// above the minimum always resolve because the catalog has no gaps.
func Resolve(amount int64) (Plan, bool) {
	for _, p := range Catalog {
		if p.Contains(amount) {
			return p, true
		}
	}
	return Plan{}, false
}

// MinDeposit is the lowest amount the catalog accepts.
func MinDeposit() int64 {
	return Catalog[0].MinAmount
}
