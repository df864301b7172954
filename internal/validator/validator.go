// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("withdrawal_method", validateWithdrawalMethod)
		_ = v.RegisterValidation("withdrawal_decision", validateWithdrawalDecision)
		_ = v.RegisterValidation("sweep_date", validateSweepDate)
	}
}

// validateWithdrawalMethod accepts the payout channels the platform supports.
func validateWithdrawalMethod(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "bank_transfer", "credit_card", "bitcoin", "usdt":
		return true
	}
	return false
}

func validateWithdrawalDecision(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "approve", "reject":
		return true
	}
	return false
}

// validateSweepDate accepts an ISO date (YYYY-MM-DD) or empty (today).
func validateSweepDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, c := range s {
		if i == 4 || i == 7 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
