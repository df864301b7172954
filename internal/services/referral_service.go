package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"sigmafx/internal/config"
	apperrors "sigmafx/internal/errors"
	"sigmafx/internal/models"
	"sigmafx/internal/pagination"
)

// referralService implements the multi-level commission engine over the
// referral tree. The tree is stored as parent pointers (User.ReferredByID);
// the upline chain is a bounded walk along them, nearest ancestor first.
type referralService struct {
	db *gorm.DB
}

// NewReferralService creates a new ReferralServicer.
func NewReferralService(db *gorm.DB) ReferralServicer {
	return &referralService{db: db}
}

// EnsureReferralCode assigns the user's referral code if not yet set.
// Codes are handed out on first deposit, not at registration, so only
// invested users can recruit.
func (s *referralService) EnsureReferralCode(tx *gorm.DB, user *models.User) error {
	if user.ReferralCode != nil {
		return nil
	}

	code := fmt.Sprintf("SIGMA%06d", user.ID)
	if err := tx.Model(user).Update("referral_code", code).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.ReferralCode = &code
	return nil
}

// UplineChain returns up to MaxUplineDepth ancestor IDs for the user,
// nearest first. A shorter chain simply means fewer ancestors exist.
func (s *referralService) UplineChain(userID uint) ([]uint, error) {
	return s.uplineChain(s.db, userID)
}

// uplineChain runs the bounded ancestor walk on the given handle so callers
// inside a transaction stay on the transaction's connection.
func (s *referralService) uplineChain(db *gorm.DB, userID uint) ([]uint, error) {
	chain := make([]uint, 0, MaxUplineDepth)
	seen := map[uint]bool{userID: true}

	current := userID
	for level := 1; level <= MaxUplineDepth; level++ {
		var parent struct{ ReferredByID *uint }
		if err := db.Model(&models.User{}).Select("referred_by_id").
			Where("id = ?", current).Take(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if parent.ReferredByID == nil || seen[*parent.ReferredByID] {
			break
		}
		chain = append(chain, *parent.ReferredByID)
		seen[*parent.ReferredByID] = true
		current = *parent.ReferredByID
	}

	return chain, nil
}

// OnDeposit walks the depositor's upline chain and pays each ancestor its
// level commission (8/4/2/1 percent of the deposit). One immutable
// CommissionEvent per level present; the beneficiary's referral earnings and
// withdrawable balance are credited in the same transaction as the deposit.
// Commissions are not calendar-gated and fire exactly once, at deposit time.
func (s *referralService) OnDeposit(tx *gorm.DB, depositor *models.User, positionID uint, amount int64) ([]models.CommissionEvent, error) {
	chain, err := s.uplineChain(tx, depositor.ID)
	if err != nil {
		return nil, err
	}

	events := make([]models.CommissionEvent, 0, len(chain))
	for i, beneficiaryID := range chain {
		level := i + 1
		// Same cent rounding as daily profit.
		commission := profitAmount(amount, float64(commissionRates[level]))

		event := models.CommissionEvent{
			BeneficiaryID: beneficiaryID,
			DepositorID:   depositor.ID,
			PositionID:    positionID,
			Level:         level,
			SourceAmount:  amount,
			Amount:        commission,
		}
		if err := tx.Create(&event).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Model(&models.User{}).Where("id = ?", beneficiaryID).
			UpdateColumns(map[string]interface{}{
				"referral_earnings": gorm.Expr("referral_earnings + ?", commission),
				"balance":           gorm.Expr("balance + ?", commission),
			}).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		entry := models.Transaction{
			UserID:      beneficiaryID,
			Type:        models.TransactionCommission,
			Amount:      commission,
			Description: fmt.Sprintf("Level %d referral commission", level),
			PositionID:  &positionID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		events = append(events, event)
	}

	return events, nil
}

// TeamDeposit sums the principal deposited by the user's entire downline.
// The walk is breadth-first over the parent pointers, one query per level,
// with a visited set guarding against pathological cycles.
func (s *referralService) TeamDeposit(userID uint) (int64, error) {
	visited := map[uint]bool{userID: true}
	frontier := []uint{userID}
	var team []uint

	for len(frontier) > 0 {
		var children []uint
		if err := s.db.Model(&models.User{}).Where("referred_by_id IN ?", frontier).
			Pluck("id", &children).Error; err != nil {
			return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		frontier = frontier[:0]
		for _, id := range children {
			if visited[id] {
				continue
			}
			visited[id] = true
			frontier = append(frontier, id)
			team = append(team, id)
		}
	}

	if len(team) == 0 {
		return 0, nil
	}

	var total int64
	if err := s.db.Model(&models.Position{}).Where("user_id IN ?", team).
		Select("COALESCE(SUM(principal), 0)").Scan(&total).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return total, nil
}

// Summary bundles the data for the referral dashboard.
func (s *referralService) Summary(userID uint) (*ReferralSummary, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &ReferralSummary{ReferralEarnings: user.ReferralEarnings}
	if user.ReferralCode != nil {
		summary.ReferralCode = *user.ReferralCode
		summary.ReferralLink = fmt.Sprintf("%s?ref=%s", config.Get().ReferralBaseURL, *user.ReferralCode)
	}

	if err := s.db.Model(&models.User{}).Where("referred_by_id = ?", userID).
		Count(&summary.DirectReferrals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	teamDeposit, err := s.TeamDeposit(userID)
	if err != nil {
		return nil, err
	}
	summary.TeamDeposit = teamDeposit

	return summary, nil
}

// GetUserCommissions returns the user's commission events, newest first.
func (s *referralService) GetUserCommissions(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.CommissionEvent], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.CommissionEvent{}).Where("beneficiary_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var events []models.CommissionEvent
	if err := s.db.Where("beneficiary_id = ?", userID).Order("created_at DESC").
		Scopes(pagination.Paginate(page)).Find(&events).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(events, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetDirectReferrals lists the users directly referred by userID.
func (s *referralService) GetDirectReferrals(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.User], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.User{}).Where("referred_by_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var referrals []models.User
	if err := s.db.Where("referred_by_id = ?", userID).Order("created_at DESC").
		Scopes(pagination.Paginate(page)).Find(&referrals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(referrals, page.Page, page.PageSize, totalItems)
	return &result, nil
}
