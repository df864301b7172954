// Package errors provides custom error types for the SigmaFX API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound     = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail   = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrReferrerNotFound = &AppError{Code: "REFERRER_NOT_FOUND", Message: "Referral code does not match any account", StatusCode: http.StatusBadRequest}
)

// Deposit & position errors.
var (
	ErrInvalidAmount    = &AppError{Code: "INVALID_AMOUNT", Message: "Amount is below the allowed minimum", StatusCode: http.StatusBadRequest}
	ErrMarketClosed     = &AppError{Code: "MARKET_CLOSED", Message: "This operation is only available Monday to Friday", StatusCode: http.StatusUnprocessableEntity}
	ErrPositionNotFound = &AppError{Code: "POSITION_NOT_FOUND", Message: "Position not found", StatusCode: http.StatusNotFound}

	// ErrPlanNotFound is a configuration fault: the catalog failed to cover an
	// amount that already passed minimum-deposit validation. Surfaced as a 500
	// so it is never mistaken for a user error.
	ErrPlanNotFound = &AppError{Code: "PLAN_NOT_FOUND", Message: "No investment plan covers this amount", StatusCode: http.StatusInternalServerError}
)

// Accrual errors.
var (
	ErrDuplicateAccrual = &AppError{Code: "DUPLICATE_ACCRUAL", Message: "Daily accrual has already run for this date", StatusCode: http.StatusConflict}
)

// Balance & withdrawal errors.
var (
	ErrInsufficientBalance = &AppError{Code: "INSUFFICIENT_BALANCE", Message: "Insufficient available balance", StatusCode: http.StatusBadRequest}
	ErrWithdrawalNotFound  = &AppError{Code: "WITHDRAWAL_NOT_FOUND", Message: "Withdrawal request not found", StatusCode: http.StatusNotFound}
	ErrWithdrawalProcessed = &AppError{Code: "WITHDRAWAL_PROCESSED", Message: "Withdrawal request has already been processed", StatusCode: http.StatusConflict}
)

// Rank reward errors.
var (
	ErrDuplicateCredit = &AppError{Code: "DUPLICATE_CREDIT", Message: "Rank reward has already been credited", StatusCode: http.StatusConflict}
)
