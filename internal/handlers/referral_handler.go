package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "sigmafx/internal/errors"
	"sigmafx/internal/pagination"
	"sigmafx/internal/services"
)

// ReferralHandler handles referral dashboard requests.
type ReferralHandler struct {
	referralService services.ReferralServicer
}

// NewReferralHandler creates a new ReferralHandler.
func NewReferralHandler(referralService services.ReferralServicer) *ReferralHandler {
	return &ReferralHandler{referralService: referralService}
}

// GetSummary returns the referral dashboard data
// @Summary     Get referral summary
// @Description Referral code, link, direct referral count, earnings and team deposit
// @Tags        referrals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.ReferralSummary "Referral summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /referrals [get]
func (h *ReferralHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.referralService.Summary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"referrals": summary})
}

// GetCommissions lists the user's commission events
// @Summary     List commissions
// @Description Get the authenticated user's commission events, newest first
// @Tags        referrals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} map[string]interface{} "Paginated commission events"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /referrals/commissions [get]
func (h *ReferralHandler) GetCommissions(c *gin.Context) {
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

	result, err := h.referralService.GetUserCommissions(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDirectReferrals lists users directly referred by the caller
// @Summary     List direct referrals
// @Description Get the users the caller directly referred, newest first
// @Tags        referrals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} map[string]interface{} "Paginated users"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /referrals/direct [get]
func (h *ReferralHandler) GetDirectReferrals(c *gin.Context) {
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

	result, err := h.referralService.GetDirectReferrals(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
