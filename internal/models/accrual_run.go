package models

import "time"

// AccrualRun summarizes one daily profit sweep. RunDate is the UTC date the
// sweep paid out for; its unique index rejects a second run for the same day
// so the scheduler cannot double-pay.
type AccrualRun struct {
	Base
	RunDate          time.Time `gorm:"not null;uniqueIndex" json:"run_date"`
	PositionsAccrued int       `gorm:"not null;default:0" json:"positions_accrued"`
	PositionsCapped  int       `gorm:"not null;default:0" json:"positions_capped"`
	TotalProfit      int64     `gorm:"not null;default:0" json:"total_profit"`
}
