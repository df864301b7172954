package services

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"gorm.io/gorm"

	"sigmafx/internal/calendar"
	apperrors "sigmafx/internal/errors"
	"sigmafx/internal/logger"
	"sigmafx/internal/models"
)

// accrualService applies daily profit to open positions. The daily rate is
// redrawn uniformly from the position's frozen plan range on every accrual;
// randFloat is a field so tests can pin the draw.
type accrualService struct {
	db        *gorm.DB
	randFloat func() float64
}

// NewAccrualService creates a new AccrualServicer.
func NewAccrualService(db *gorm.DB) AccrualServicer {
	return &accrualService{db: db, randFloat: rand.Float64}
}

// dailyRate draws the day's rate from the position's plan range.
func (s *accrualService) dailyRate(p *models.Position) float64 {
	return p.DailyRateMin + s.randFloat()*(p.DailyRateMax-p.DailyRateMin)
}

// AccrueOneDay applies one day's profit to the position inside tx, credits
// the owner's balance and records a profit ledger entry. The accrual that
// would push TotalEarned past 3x principal is clamped to land exactly on the
// cap, and the position is deactivated permanently. Positions already paid
// for the given day are skipped, making a repeated call for the same day a
// no-op rather than a double payment.
func (s *accrualService) AccrueOneDay(tx *gorm.DB, position *models.Position, day time.Time) error {
	if !position.IsActive {
		return nil
	}
	if position.LastAccruedOn != nil && !position.LastAccruedOn.Before(day) {
		return nil
	}

	profit := profitAmount(position.Principal, s.dailyRate(position))

	payoutCap := position.PayoutCap()
	newTotal := position.TotalEarned + profit
	stillActive := true
	if newTotal >= payoutCap {
		profit = payoutCap - position.TotalEarned
		newTotal = payoutCap
		stillActive = false
	}

	if err := tx.Model(position).Updates(map[string]interface{}{
		"total_earned":    newTotal,
		"is_active":       stillActive,
		"last_accrued_on": day,
	}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if profit > 0 {
		if err := tx.Model(&models.User{}).Where("id = ?", position.UserID).
			UpdateColumn("balance", gorm.Expr("balance + ?", profit)).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		entry := &models.Transaction{
			UserID:      position.UserID,
			Type:        models.TransactionProfit,
			Amount:      profit,
			Description: fmt.Sprintf("Daily profit %s", day.Format("2006-01-02")),
			PositionID:  &position.ID,
		}
		if err := tx.Create(entry).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	position.TotalEarned = newTotal
	position.IsActive = stillActive
	position.LastAccruedOn = &day

	return nil
}

// RunDaily sweeps all open positions for the date of at. It refuses
// non-working days and refuses to run twice for the same date: the run row
// is claimed up front and its unique run_date index is the backstop against
// concurrent schedulers. Each position accrues in its own transaction, so a
// failing position is logged and skipped without rolling back profit already
// paid to the rest of the sweep.
func (s *accrualService) RunDaily(at time.Time) (*models.AccrualRun, error) {
	if !calendar.IsWorkingDay(at) {
		return nil, apperrors.ErrMarketClosed
	}
	day := calendar.DayOf(at)

	var existing models.AccrualRun
	err := s.db.Where("run_date = ?", day).First(&existing).Error
	if err == nil {
		return nil, apperrors.ErrDuplicateAccrual
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	run := &models.AccrualRun{RunDate: day}
	if err := s.db.Create(run).Error; err != nil {
		// Unique run_date: a concurrent scheduler claimed this date first.
		return nil, apperrors.Wrap(apperrors.ErrDuplicateAccrual, err)
	}

	var positions []models.Position
	if err := s.db.Where("is_active = ? AND (last_accrued_on IS NULL OR last_accrued_on < ?)", true, day).
		Find(&positions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	log := logger.Get()
	for i := range positions {
		p := &positions[i]
		before := p.TotalEarned

		err := s.db.Transaction(func(tx *gorm.DB) error {
			return s.AccrueOneDay(tx, p, day)
		})
		if err != nil {
			log.Errorw("accrual failed for position",
				"position_id", p.ID,
				"user_id", p.UserID,
				"error", err,
			)
			continue
		}

		run.PositionsAccrued++
		run.TotalProfit += p.TotalEarned - before
		if !p.IsActive {
			run.PositionsCapped++
		}
	}

	if err := s.db.Model(run).Updates(map[string]interface{}{
		"positions_accrued": run.PositionsAccrued,
		"positions_capped":  run.PositionsCapped,
		"total_profit":      run.TotalProfit,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	log.Infow("daily accrual completed",
		"run_date", day.Format("2006-01-02"),
		"positions_accrued", run.PositionsAccrued,
		"positions_capped", run.PositionsCapped,
		"total_profit", run.TotalProfit,
	)

	return run, nil
}
