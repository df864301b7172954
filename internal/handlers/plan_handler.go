package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sigmafx/internal/calendar"
	"sigmafx/internal/plans"
)

// PlanHandler serves the static plan catalog.
type PlanHandler struct{}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler() *PlanHandler {
	return &PlanHandler{}
}

// ListPlans returns the plan catalog
// @Summary     List investment plans
// @Description Get the plan catalog and whether deposits are open today
// @Tags        plans
// @Accept      json
// @Produce     json
// @Success     200 {object} map[string]interface{} "Plan catalog"
// @Router      /plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"plans":          plans.Catalog,
		"min_deposit":    plans.MinDeposit(),
		"is_working_day": calendar.IsWorkingDay(time.Now().UTC()),
	})
}
