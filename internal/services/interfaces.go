package services

import (
	"time"

	"gorm.io/gorm"

	"sigmafx/internal/models"
	"sigmafx/internal/pagination"
	"sigmafx/internal/ranks"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName, referralCode string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
}

// Stats is the read-only aggregate over a user's positions. All values are
// recomputed from the position rows on every call; nothing here is cached.
type Stats struct {
	TotalDeposit  int64 `json:"total_deposit"`
	TotalEarnings int64 `json:"total_earnings"`
	// DailyProfit sums the display estimates of active positions only.
	DailyProfit int64 `json:"daily_profit"`
	// ProfitMultiplier is TotalEarnings/TotalDeposit, 0 with no deposits.
	ProfitMultiplier float64 `json:"profit_multiplier"`
	// CanReinvest is set once any position has paid out its 3x cap.
	CanReinvest bool `json:"can_reinvest"`
	// ActivePositions counts positions still accruing.
	ActivePositions int `json:"active_positions"`
}

// PositionServicer defines the contract for the position ledger.
type PositionServicer interface {
	Deposit(userID uint, amount int64, at time.Time) (*models.Position, error)
	GetUserPositions(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Position], error)
	GetPositionByID(userID, positionID uint) (*models.Position, error)
	Aggregate(userID uint) (*Stats, error)
}

// AccrualServicer drives daily profit accrual.
type AccrualServicer interface {
	// AccrueOneDay applies one day's profit to a position inside tx.
	// Callers are responsible for at-most-once-per-day invocation.
	AccrueOneDay(tx *gorm.DB, position *models.Position, day time.Time) error
	// RunDaily sweeps every eligible position for the given date.
	RunDaily(at time.Time) (*models.AccrualRun, error)
}

// ReferralSummary bundles the referral data shown on the referral page.
type ReferralSummary struct {
	ReferralCode     string `json:"referral_code,omitempty"`
	ReferralLink     string `json:"referral_link,omitempty"`
	DirectReferrals  int64  `json:"direct_referrals"`
	ReferralEarnings int64  `json:"referral_earnings"`
	TeamDeposit      int64  `json:"team_deposit"`
}

// ReferralServicer defines the contract for the multi-level commission engine.
type ReferralServicer interface {
	// OnDeposit emits commission events for the depositor's upline chain and
	// credits each beneficiary. Runs inside the deposit transaction.
	OnDeposit(tx *gorm.DB, depositor *models.User, positionID uint, amount int64) ([]models.CommissionEvent, error)
	UplineChain(userID uint) ([]uint, error)
	TeamDeposit(userID uint) (int64, error)
	EnsureReferralCode(tx *gorm.DB, user *models.User) error
	Summary(userID uint) (*ReferralSummary, error)
	GetUserCommissions(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.CommissionEvent], error)
	GetDirectReferrals(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
}

// RankStatus reports one milestone's standing for a user.
type RankStatus struct {
	Milestone ranks.Milestone `json:"milestone"`
	Achieved  bool            `json:"achieved"`
	Credited  bool            `json:"credited"`
	Progress  float64         `json:"progress"`
}

// RankServicer defines the contract for rank reward evaluation and crediting.
type RankServicer interface {
	Evaluate(userID uint) ([]RankStatus, error)
	// CreditAchieved credits every achieved-but-uncredited milestone exactly
	// once and returns the newly created awards.
	CreditAchieved(userID uint) ([]models.RankAward, error)
}

// WithdrawalServicer defines the contract for payout requests.
type WithdrawalServicer interface {
	Request(userID uint, amount int64, method string, at time.Time) (*models.Withdrawal, error)
	Process(withdrawalID uint, approve bool) (*models.Withdrawal, error)
	GetUserWithdrawals(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Withdrawal], error)
	GetPending(page pagination.PageRequest) (*pagination.PageResponse[models.Withdrawal], error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]any)
}
