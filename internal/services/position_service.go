package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"sigmafx/internal/calendar"
	apperrors "sigmafx/internal/errors"
	"sigmafx/internal/models"
	"sigmafx/internal/pagination"
	"sigmafx/internal/plans"
	"sigmafx/internal/uuid"
)

// profitAmount converts a daily percentage rate into a cent amount,
// rounding half away from zero.
func profitAmount(principal int64, rate float64) int64 {
	return int64(math.Round(float64(principal) * rate / 100))
}

// positionService owns the position ledger: deposits in, aggregates out.
type positionService struct {
	db              *gorm.DB
	referralService ReferralServicer
}

// NewPositionService creates a new PositionServicer.
func NewPositionService(db *gorm.DB, referralService ReferralServicer) PositionServicer {
	return &positionService{db: db, referralService: referralService}
}

// Deposit validates and opens a new position for the user. The plan is
// resolved once here and its name and rate bounds are frozen on the row;
// DailyProfit is the midpoint-rate display estimate. Referral commissions
// for the depositor's upline fire inside the same transaction, so either the
// position, its ledger entries and all commissions commit together or
// nothing does.
func (s *positionService) Deposit(userID uint, amount int64, at time.Time) (*models.Position, error) {
	if amount < MinDepositAmount {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidAmount,
			fmt.Sprintf("Minimum deposit is %d", MinDepositAmount))
	}
	if !calendar.IsWorkingDay(at) {
		return nil, apperrors.ErrMarketClosed
	}

	plan, ok := plans.Resolve(amount)
	if !ok {
		// Unreachable with a well-formed catalog; the minimum-deposit check
		// above already excluded amounts below the lowest plan.
		return nil, apperrors.Wrap(apperrors.ErrPlanNotFound,
			fmt.Errorf("no plan covers amount %d", amount))
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	position := &models.Position{
		UserID:       userID,
		OrderID:      uuid.New(),
		Principal:    amount,
		PlanName:     plan.Name,
		DailyRateMin: plan.DailyRateMin,
		DailyRateMax: plan.DailyRateMax,
		DailyProfit:  profitAmount(amount, plan.MidpointRate()),
		IsActive:     true,
		OpenedAt:     at,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := s.referralService.EnsureReferralCode(tx, &user); txErr != nil {
			return txErr
		}

		if txErr := tx.Create(position).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		entries := []models.Transaction{
			{UserID: userID, Type: models.TransactionDeposit, Amount: amount,
				Description: plan.Name, PositionID: &position.ID},
			{UserID: userID, Type: models.TransactionFee, Amount: ProcessingFee,
				Description: "Deposit processing fee", PositionID: &position.ID},
		}
		if txErr := tx.Create(&entries).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		if _, txErr := s.referralService.OnDeposit(tx, &user, position.ID, amount); txErr != nil {
			return txErr
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return position, nil
}

// GetUserPositions returns a paginated list of the user's positions,
// newest first.
func (s *positionService) GetUserPositions(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Position], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Position{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var positions []models.Position
	if err := s.db.Where("user_id = ?", userID).Order("opened_at DESC").
		Scopes(pagination.Paginate(page)).Find(&positions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(positions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPositionByID returns a position if it belongs to the user.
func (s *positionService) GetPositionByID(userID, positionID uint) (*models.Position, error) {
	var position models.Position
	if err := s.db.First(&position, positionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPositionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if position.UserID != userID {
		return nil, apperrors.ErrPositionNotFound
	}

	return &position, nil
}

// Aggregate folds the user's positions into display stats. The fold reads
// the rows directly every time so the numbers can never drift from the
// underlying positions.
func (s *positionService) Aggregate(userID uint) (*Stats, error) {
	var positions []models.Position
	if err := s.db.Where("user_id = ?", userID).Find(&positions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	stats := &Stats{}
	for i := range positions {
		p := &positions[i]
		stats.TotalDeposit += p.Principal
		stats.TotalEarnings += p.TotalEarned
		if p.IsActive {
			stats.DailyProfit += p.DailyProfit
			stats.ActivePositions++
		} else if p.Capped() {
			stats.CanReinvest = true
		}
	}

	if stats.TotalDeposit > 0 {
		stats.ProfitMultiplier = float64(stats.TotalEarnings) / float64(stats.TotalDeposit)
	}

	return stats, nil
}
