package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "sigmafx/internal/errors"
	"sigmafx/internal/services"
)

// AccrualHandler exposes the daily accrual sweep to the scheduler pipeline.
type AccrualHandler struct {
	accrualService services.AccrualServicer
}

// NewAccrualHandler creates a new AccrualHandler.
func NewAccrualHandler(accrualService services.AccrualServicer) *AccrualHandler {
	return &AccrualHandler{accrualService: accrualService}
}

// RunAccrualsRequest represents the sweep trigger payload.
type RunAccrualsRequest struct {
	// Date is an optional ISO date (YYYY-MM-DD) to sweep; empty means today.
	Date string `json:"date" binding:"omitempty,sweep_date"`
}

// RunAccruals triggers the daily accrual sweep
// @Summary     Run daily accrual
// @Description Pipeline endpoint sweeping every eligible position for the date
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       request body RunAccrualsRequest false "Optional sweep date"
// @Success     200 {object} map[string]interface{} "Accrual run summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     409 {object} ErrorResponse "Already run for this date"
// @Failure     422 {object} ErrorResponse "Market closed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipeline/accruals/run [post]
func (h *AccrualHandler) RunAccruals(c *gin.Context) {
	var req RunAccrualsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}

	at := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid date"))
			return
		}
		at = parsed
	}

	run, err := h.accrualService.RunDaily(at)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"run": run})
}
