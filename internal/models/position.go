package models

import "time"

// Position represents a single deposit earning daily profit. The plan name
// and rate bounds are frozen at creation from the plan catalog; DailyProfit
// is the midpoint-rate display estimate, not the amount applied at accrual
// time (the accrual engine redraws the rate each eligible day).
//
// Invariant: TotalEarned never exceeds 3x Principal. The accrual that would
// cross the cap clamps to exactly 3x and deactivates the position for good.
type Position struct {
	Base
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	OrderID string `gorm:"size:36;not null;uniqueIndex" json:"order_id"`

	Principal    int64   `gorm:"not null" json:"principal"`
	PlanName     string  `gorm:"not null" json:"plan_name"`
	DailyRateMin float64 `gorm:"not null" json:"daily_rate_min"`
	DailyRateMax float64 `gorm:"not null" json:"daily_rate_max"`
	DailyProfit  int64   `gorm:"not null" json:"daily_profit"`

	TotalEarned int64 `gorm:"not null;default:0" json:"total_earned"`
	IsActive    bool  `gorm:"not null;default:true" json:"is_active"`

	OpenedAt time.Time `gorm:"not null" json:"opened_at"`
	// LastAccruedOn is the UTC date of the last applied accrual. The daily
	// sweep skips positions already paid for the sweep date.
	LastAccruedOn *time.Time `json:"last_accrued_on,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// PayoutCap returns the lifetime payout limit for the position.
func (p *Position) PayoutCap() int64 {
	return p.Principal * 3
}

// Capped reports whether the position has paid out its lifetime limit.
func (p *Position) Capped() bool {
	return p.TotalEarned >= p.PayoutCap()
}
