package models

// CommissionEvent is an append-only record of referral commission earned on
// a downline deposit. Rows are never updated or deleted; CreatedAt is the
// occurrence time.
type CommissionEvent struct {
	Base
	BeneficiaryID uint  `gorm:"not null;index" json:"beneficiary_id"`
	DepositorID   uint  `gorm:"not null;index" json:"depositor_id"`
	PositionID    uint  `gorm:"not null;index" json:"position_id"`
	Level         int   `gorm:"not null" json:"level"`
	SourceAmount  int64 `gorm:"not null" json:"source_amount"`
	Amount        int64 `gorm:"not null" json:"amount"`

	Beneficiary User     `gorm:"foreignKey:BeneficiaryID" json:"-"`
	Depositor   User     `gorm:"foreignKey:DepositorID" json:"-"`
	Position    Position `gorm:"foreignKey:PositionID" json:"-"`
}
