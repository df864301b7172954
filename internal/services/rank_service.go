package services

import (
	"fmt"

	"gorm.io/gorm"

	apperrors "sigmafx/internal/errors"
	"sigmafx/internal/models"
	"sigmafx/internal/ranks"
)

// rankService evaluates rank milestones against personal and team deposit
// totals and credits rewards at most once per milestone. Evaluation is a
// pure recomputation; the credited set lives in rank_awards rows whose
// unique user+milestone index is the double-credit guard.
type rankService struct {
	db              *gorm.DB
	referralService ReferralServicer
}

// NewRankService creates a new RankServicer.
func NewRankService(db *gorm.DB, referralService ReferralServicer) RankServicer {
	return &rankService{db: db, referralService: referralService}
}

// totals returns the user's lifetime personal deposit and team deposit.
func (s *rankService) totals(userID uint) (personal, team int64, err error) {
	if err := s.db.Model(&models.Position{}).Where("user_id = ?", userID).
		Select("COALESCE(SUM(principal), 0)").Scan(&personal).Error; err != nil {
		return 0, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	team, err = s.referralService.TeamDeposit(userID)
	if err != nil {
		return 0, 0, err
	}

	return personal, team, nil
}

// creditedSet returns the milestone IDs already credited to the user.
func (s *rankService) creditedSet(userID uint) (map[int]bool, error) {
	var ids []int
	if err := s.db.Model(&models.RankAward{}).Where("user_id = ?", userID).
		Pluck("milestone_id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	credited := make(map[int]bool, len(ids))
	for _, id := range ids {
		credited[id] = true
	}
	return credited, nil
}

// Evaluate reports every milestone's standing for the user. A milestone is
// achieved iff both the personal and team thresholds are met simultaneously.
func (s *rankService) Evaluate(userID uint) ([]RankStatus, error) {
	personal, team, err := s.totals(userID)
	if err != nil {
		return nil, err
	}

	credited, err := s.creditedSet(userID)
	if err != nil {
		return nil, err
	}

	statuses := make([]RankStatus, 0, len(ranks.Milestones))
	for _, m := range ranks.Milestones {
		statuses = append(statuses, RankStatus{
			Milestone: m,
			Achieved:  m.Achieved(personal, team),
			Credited:  credited[m.ID],
			Progress:  m.Progress(personal, team),
		})
	}

	return statuses, nil
}

// CreditAchieved credits the reward for every achieved milestone not yet
// credited. Each credit runs in its own transaction: the award row insert,
// the balance credit and the ledger entry commit together, and the unique
// award index turns a concurrent duplicate into a rolled-back no-op.
func (s *rankService) CreditAchieved(userID uint) ([]models.RankAward, error) {
	personal, team, err := s.totals(userID)
	if err != nil {
		return nil, err
	}

	credited, err := s.creditedSet(userID)
	if err != nil {
		return nil, err
	}

	var awards []models.RankAward
	for _, m := range ranks.Milestones {
		if !m.Achieved(personal, team) || credited[m.ID] {
			continue
		}

		award := models.RankAward{
			UserID:      userID,
			MilestoneID: m.ID,
			Reward:      m.Reward,
		}

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if txErr := tx.Create(&award).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrDuplicateCredit, txErr)
			}

			if txErr := tx.Model(&models.User{}).Where("id = ?", userID).
				UpdateColumn("balance", gorm.Expr("balance + ?", m.Reward)).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}

			entry := &models.Transaction{
				UserID:      userID,
				Type:        models.TransactionRankReward,
				Amount:      m.Reward,
				Description: fmt.Sprintf("Rank reward milestone %d", m.ID),
			}
			if txErr := tx.Create(entry).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}

			return nil
		})
		if err != nil {
			return nil, err
		}

		awards = append(awards, award)
	}

	return awards, nil
}
