package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "sigmafx/internal/errors"
	"sigmafx/internal/pagination"
	"sigmafx/internal/services"
)

// PositionHandler handles deposit and position ledger requests.
type PositionHandler struct {
	positionService services.PositionServicer
	auditService    services.AuditServicer

	// Now supplies the deposit timestamp checked against the market calendar.
	// Overridable in tests.
	Now func() time.Time
}

// NewPositionHandler creates a new PositionHandler.
func NewPositionHandler(positionService services.PositionServicer, auditService services.AuditServicer) *PositionHandler {
	return &PositionHandler{
		positionService: positionService,
		auditService:    auditService,
		Now:             func() time.Time { return time.Now().UTC() },
	}
}

// DepositRequest represents the request payload for opening a position.
type DepositRequest struct {
	// Amount is the deposit principal in cents.
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// Deposit opens a new position
// @Summary     Open a position
// @Description Deposit an amount and open a position under the matching plan
// @Tags        positions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body DepositRequest true "Deposit amount in cents"
// @Success     201 {object} map[string]interface{} "Position opened"
// @Failure     400 {object} ErrorResponse "Amount below minimum"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     422 {object} ErrorResponse "Market closed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /positions [post]
func (h *PositionHandler) Deposit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	position, err := h.positionService.Deposit(userID, req.Amount, h.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "OPEN_POSITION", "position", position.ID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount, "plan": position.PlanName})

	c.JSON(http.StatusCreated, gin.H{"position": position})
}

// GetUserPositions lists the user's positions
// @Summary     List positions
// @Description Get the authenticated user's positions, newest first
// @Tags        positions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} map[string]interface{} "Paginated positions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /positions [get]
func (h *PositionHandler) GetUserPositions(c *gin.Context) {
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

	result, err := h.positionService.GetUserPositions(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPositionByID returns a single position
// @Summary     Get a position
// @Description Get one of the authenticated user's positions by ID
// @Tags        positions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Position ID"
// @Success     200 {object} map[string]interface{} "Position"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Position not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /positions/{id} [get]
func (h *PositionHandler) GetPositionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	positionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	position, err := h.positionService.GetPositionByID(userID, positionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"position": position})
}

// GetStats returns the user's aggregate position statistics
// @Summary     Get position statistics
// @Description Aggregate deposit, earnings and reinvest eligibility for the user
// @Tags        positions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.Stats "Aggregate statistics"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /positions/stats [get]
func (h *PositionHandler) GetStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.positionService.Aggregate(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
