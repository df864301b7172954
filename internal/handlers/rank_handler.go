package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sigmafx/internal/services"
)

// RankHandler handles rank milestone requests.
type RankHandler struct {
	rankService  services.RankServicer
	auditService services.AuditServicer
}

// NewRankHandler creates a new RankHandler.
func NewRankHandler(rankService services.RankServicer, auditService services.AuditServicer) *RankHandler {
	return &RankHandler{rankService: rankService, auditService: auditService}
}

// GetRanks reports every milestone's standing for the caller
// @Summary     Get rank standings
// @Description Per-milestone achievement, credit status and progress
// @Tags        ranks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Milestone standings"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ranks [get]
func (h *RankHandler) GetRanks(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	statuses, err := h.rankService.Evaluate(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ranks": statuses})
}

// ClaimRewards credits every achieved-but-uncredited milestone
// @Summary     Claim rank rewards
// @Description Credit the reward for every achieved milestone not yet credited
// @Tags        ranks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Newly credited awards"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Reward already credited"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ranks/claim [post]
func (h *RankHandler) ClaimRewards(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	awards, err := h.rankService.CreditAchieved(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	for _, award := range awards {
		h.auditService.Log(userID, "CREDIT_RANK_REWARD", "rank_award", award.ID, c.ClientIP(),
			map[string]interface{}{"milestone_id": award.MilestoneID, "reward": award.Reward})
	}

	c.JSON(http.StatusOK, gin.H{"awards": awards})
}
