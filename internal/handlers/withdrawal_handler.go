package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "sigmafx/internal/errors"
	"sigmafx/internal/pagination"
	"sigmafx/internal/services"
)

// WithdrawalHandler handles payout requests and the processing pipeline.
type WithdrawalHandler struct {
	withdrawalService services.WithdrawalServicer
	auditService      services.AuditServicer

	// Now supplies the request timestamp checked against the market calendar.
	// Overridable in tests.
	Now func() time.Time
}

// NewWithdrawalHandler creates a new WithdrawalHandler.
func NewWithdrawalHandler(withdrawalService services.WithdrawalServicer, auditService services.AuditServicer) *WithdrawalHandler {
	return &WithdrawalHandler{
		withdrawalService: withdrawalService,
		auditService:      auditService,
		Now:               func() time.Time { return time.Now().UTC() },
	}
}

// WithdrawalRequest represents the request payload for filing a withdrawal.
type WithdrawalRequest struct {
	// Amount is the payout amount in cents, excluding the processing fee.
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Method string `json:"method" binding:"required,withdrawal_method"`
}

// ProcessWithdrawalRequest represents the pipeline decision payload.
type ProcessWithdrawalRequest struct {
	Decision string `json:"decision" binding:"required,withdrawal_decision"`
}

// RequestWithdrawal files a withdrawal request
// @Summary     Request a withdrawal
// @Description Debit the withdrawable balance and file a pending payout request
// @Tags        withdrawals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body WithdrawalRequest true "Withdrawal amount and method"
// @Success     201 {object} map[string]interface{} "Withdrawal filed"
// @Failure     400 {object} ErrorResponse "Amount below minimum or insufficient balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     422 {object} ErrorResponse "Market closed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /withdrawals [post]
func (h *WithdrawalHandler) RequestWithdrawal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	withdrawal, err := h.withdrawalService.Request(userID, req.Amount, req.Method, h.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REQUEST_WITHDRAWAL", "withdrawal", withdrawal.ID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount, "method": req.Method})

	c.JSON(http.StatusCreated, gin.H{"withdrawal": withdrawal})
}

// GetUserWithdrawals lists the caller's withdrawal requests
// @Summary     List withdrawals
// @Description Get the authenticated user's withdrawal requests, newest first
// @Tags        withdrawals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} map[string]interface{} "Paginated withdrawals"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /withdrawals [get]
func (h *WithdrawalHandler) GetUserWithdrawals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.withdrawalService.GetUserWithdrawals(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPendingWithdrawals lists pending withdrawals for the processing pipeline
// @Summary     List pending withdrawals
// @Description Pipeline endpoint listing pending payout requests, oldest first
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} map[string]interface{} "Paginated pending withdrawals"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipeline/withdrawals [get]
func (h *WithdrawalHandler) GetPendingWithdrawals(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.withdrawalService.GetPending(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ProcessWithdrawal approves or rejects a pending withdrawal
// @Summary     Process a withdrawal
// @Description Pipeline endpoint approving or rejecting a pending payout request
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       id      path int                      true "Withdrawal ID"
// @Param       request body ProcessWithdrawalRequest true "Decision"
// @Success     200 {object} map[string]interface{} "Processed withdrawal"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "Withdrawal not found"
// @Failure     409 {object} ErrorResponse "Already processed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipeline/withdrawals/{id} [post]
func (h *WithdrawalHandler) ProcessWithdrawal(c *gin.Context) {
	withdrawalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ProcessWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	withdrawal, err := h.withdrawalService.Process(withdrawalID, req.Decision == "approve")
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(withdrawal.UserID, "PROCESS_WITHDRAWAL", "withdrawal", withdrawal.ID, c.ClientIP(),
		map[string]interface{}{"decision": req.Decision})

	c.JSON(http.StatusOK, gin.H{"withdrawal": withdrawal})
}
