package models

import "time"

// WithdrawalStatus represents the lifecycle state of a withdrawal request.
type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

// Withdrawal is a payout request. The requested amount is debited from the
// balance immediately; rejection refunds it. Requests are processed manually
// (pipeline endpoint), matching the platform's review flow.
type Withdrawal struct {
	Base
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	Reference string           `gorm:"size:36;not null;uniqueIndex" json:"reference"`
	Amount    int64            `gorm:"not null" json:"amount"`
	Fee       int64            `gorm:"not null" json:"fee"`
	Method    string           `gorm:"not null" json:"method"`
	Status    WithdrawalStatus `gorm:"not null;default:'pending';index" json:"status"`

	ProcessedAt *time.Time `json:"processed_at,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
