package models

// RankAward records a rank milestone reward credited to a user. The unique
// user+milestone index is what makes crediting at-most-once: a second credit
// attempt fails on insert before any balance change is committed.
type RankAward struct {
	Base
	UserID      uint  `gorm:"not null;uniqueIndex:idx_rank_awards_user_milestone" json:"user_id"`
	MilestoneID int   `gorm:"not null;uniqueIndex:idx_rank_awards_user_milestone" json:"milestone_id"`
	Reward      int64 `gorm:"not null" json:"reward"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
