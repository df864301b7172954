package services

// Platform constants. Amounts are cents.
const (
	// MinDepositAmount is the global minimum deposit ($20).
	MinDepositAmount int64 = 2_000
	// MinWithdrawalAmount is the global minimum withdrawal ($5).
	MinWithdrawalAmount int64 = 500
	// ProcessingFee is the flat fee charged on deposits and withdrawals ($1).
	ProcessingFee int64 = 100

	// PayoutCapMultiplier caps lifetime earnings per position at 3x principal.
	PayoutCapMultiplier = 3

	// MaxUplineDepth bounds the referral commission walk.
	MaxUplineDepth = 4
)

// commissionRates maps upline level (1-based) to its commission percentage.
var commissionRates = [MaxUplineDepth + 1]int64{0, 8, 4, 2, 1}
