package models

// TransactionType classifies a balance or principal movement.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionProfit     TransactionType = "profit"
	TransactionCommission TransactionType = "commission"
	TransactionRankReward TransactionType = "rank_reward"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionFee        TransactionType = "fee"
)

// Transaction is the append-only money-movement ledger. Deposits record
// principal entering a position; the remaining types record movements of the
// withdrawable balance. Amounts are cents and always positive; the type
// carries the direction.
type Transaction struct {
	Base
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	Type        TransactionType `gorm:"not null;index" json:"type"`
	Amount      int64           `gorm:"not null" json:"amount"`
	Description string          `json:"description"`
	PositionID  *uint           `gorm:"index" json:"position_id,omitempty"`

	User     User      `gorm:"foreignKey:UserID" json:"-"`
	Position *Position `gorm:"foreignKey:PositionID" json:"-"`
}
