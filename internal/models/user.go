package models

import "time"

// User represents an investor account. ReferredByID is the parent pointer of
// the referral tree; the upline chain is the bounded walk along it. Monetary
// fields are cents.
type User struct {
	Base
	Email               string     `gorm:"uniqueIndex;not null" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	IsActive            bool       `gorm:"default:true" json:"is_active"`
	RefreshTokenHash    string     `gorm:"size:64" json:"-"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`

	// ReferralCode is assigned lazily on the user's first deposit.
	ReferralCode *string `gorm:"uniqueIndex" json:"referral_code,omitempty"`
	ReferredByID *uint   `gorm:"index" json:"referred_by_id,omitempty"`
	ReferredBy   *User   `gorm:"foreignKey:ReferredByID" json:"-"`

	// Balance is the withdrawable balance: accrued profit, referral
	// commissions and rank rewards, minus withdrawals and fees.
	Balance          int64 `gorm:"not null;default:0" json:"balance"`
	ReferralEarnings int64 `gorm:"not null;default:0" json:"referral_earnings"`

	Positions []Position `gorm:"foreignKey:UserID" json:"positions,omitempty"`
}
