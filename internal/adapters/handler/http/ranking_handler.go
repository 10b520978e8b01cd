package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/services"
)

type RankingHandler struct {
	svc *services.RankingService
}

func NewRankingHandler(svc *services.RankingService) *RankingHandler {
	return &RankingHandler{svc: svc}
}

func (h *RankingHandler) RegisterRoutes(router *gin.RouterGroup) {
	ranking := router.Group("/ranking")
	{
		ranking.GET("", h.List)
		ranking.GET("/me", h.Me)
	}
}

// List godoc
// @Summary  Leaderboard with each user's challenge day
// @Tags     ranking
// @Produce  json
// @Param    limit query int false "page size (max 200)"
// @Success  200 {array} domain.RankingEntry
// @Security BearerAuth
// @Router   /ranking [get]
func (h *RankingHandler) List(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	entries, err := h.svc.List(c.Request.Context(), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *RankingHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	entry, err := h.svc.Position(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
