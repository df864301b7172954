package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"sigmafx/internal/calendar"
	apperrors "sigmafx/internal/errors"
	"sigmafx/internal/models"
	"sigmafx/internal/pagination"
	"sigmafx/internal/uuid"
)

// withdrawalService handles payout requests. Only the withdrawable balance
// (profit, commissions, rank rewards) can be withdrawn; principal stays
// locked in positions. Requests are debited immediately and reviewed
// manually, matching the platform's processing flow.
type withdrawalService struct {
	db *gorm.DB
}

// NewWithdrawalService creates a new WithdrawalServicer.
func NewWithdrawalService(db *gorm.DB) WithdrawalServicer {
	return &withdrawalService{db: db}
}

// Request validates and files a withdrawal. The requested amount plus the
// flat processing fee is debited from the balance up front; rejection
// refunds both.
func (s *withdrawalService) Request(userID uint, amount int64, method string, at time.Time) (*models.Withdrawal, error) {
	if amount < MinWithdrawalAmount {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidAmount,
			fmt.Sprintf("Minimum withdrawal is %d", MinWithdrawalAmount))
	}
	if !calendar.IsWorkingDay(at) {
		return nil, apperrors.ErrMarketClosed
	}

	withdrawal := &models.Withdrawal{
		UserID:    userID,
		Reference: uuid.New(),
		Amount:    amount,
		Fee:       ProcessingFee,
		Method:    method,
		Status:    models.WithdrawalPending,
	}

	total := amount + ProcessingFee

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if txErr := tx.First(&user, userID).Error; txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return apperrors.ErrUserNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		if user.Balance < total {
			return apperrors.ErrInsufficientBalance
		}

		if txErr := tx.Model(&user).
			UpdateColumn("balance", gorm.Expr("balance - ?", total)).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		if txErr := tx.Create(withdrawal).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		entries := []models.Transaction{
			{UserID: userID, Type: models.TransactionWithdrawal, Amount: amount,
				Description: fmt.Sprintf("Withdrawal %s", withdrawal.Reference)},
			{UserID: userID, Type: models.TransactionFee, Amount: ProcessingFee,
				Description: "Withdrawal processing fee"},
		}
		if txErr := tx.Create(&entries).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return withdrawal, nil
}

// Process approves or rejects a pending withdrawal. Rejection refunds the
// amount and fee to the user's balance.
func (s *withdrawalService) Process(withdrawalID uint, approve bool) (*models.Withdrawal, error) {
	var withdrawal models.Withdrawal

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := tx.First(&withdrawal, withdrawalID).Error; txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return apperrors.ErrWithdrawalNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		if withdrawal.Status != models.WithdrawalPending {
			return apperrors.ErrWithdrawalProcessed
		}

		now := time.Now()
		status := models.WithdrawalApproved
		if !approve {
			status = models.WithdrawalRejected
		}

		if txErr := tx.Model(&withdrawal).Updates(map[string]interface{}{
			"status":       status,
			"processed_at": now,
		}).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		withdrawal.Status = status
		withdrawal.ProcessedAt = &now

		if !approve {
			refund := withdrawal.Amount + withdrawal.Fee
			if txErr := tx.Model(&models.User{}).Where("id = ?", withdrawal.UserID).
				UpdateColumn("balance", gorm.Expr("balance + ?", refund)).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &withdrawal, nil
}

// GetUserWithdrawals lists the user's withdrawal requests, newest first.
func (s *withdrawalService) GetUserWithdrawals(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Withdrawal], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Withdrawal{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var withdrawals []models.Withdrawal
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").
		Scopes(pagination.Paginate(page)).Find(&withdrawals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(withdrawals, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPending lists pending withdrawals for the processing pipeline,
// oldest first.
func (s *withdrawalService) GetPending(page pagination.PageRequest) (*pagination.PageResponse[models.Withdrawal], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Withdrawal{}).Where("status = ?", models.WithdrawalPending)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var withdrawals []models.Withdrawal
	if err := s.db.Where("status = ?", models.WithdrawalPending).Order("created_at ASC").
		Scopes(pagination.Paginate(page)).Find(&withdrawals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(withdrawals, page.Page, page.PageSize, totalItems)
	return &result, nil
}
