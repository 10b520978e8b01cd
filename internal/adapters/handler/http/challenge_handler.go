package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
	"github.com/comitanigiacomo/kanso-challenge/internal/core/services"
)

type ChallengeHandler struct {
	challenges *services.ChallengeService
	tasks      *services.TaskService
}

func NewChallengeHandler(challenges *services.ChallengeService, tasks *services.TaskService) *ChallengeHandler {
	return &ChallengeHandler{
		challenges: challenges,
		tasks:      tasks,
	}
}

type recordProgressRequest struct {
	Hydration *bool `json:"hidratacao" binding:"required"`
	Sleep     *bool `json:"sono" binding:"required"`
	Diet      *bool `json:"alimentacao" binding:"required"`
	Exercise  *bool `json:"exercicio" binding:"required"`
	PhotoLog  *bool `json:"registro_foto" binding:"required"`
	Version   int   `json:"version" binding:"min=0"`
}

type canCompleteResponse struct {
	CanComplete bool              `json:"can_complete"`
	Reason      domain.GateReason `json:"reason"`
}

func (h *ChallengeHandler) RegisterRoutes(router *gin.RouterGroup) {
	challenge := router.Group("/challenge")
	{
		challenge.GET("/status", h.Status)
		challenge.GET("/can-complete", h.CanComplete)
		challenge.POST("/start", h.Start)
		challenge.POST("/complete", h.Complete)
		challenge.GET("/progress", h.Progress)
		challenge.POST("/progress", h.RecordProgress)
	}
}

// Status godoc
// @Summary  Challenge status of the caller
// @Tags     challenge
// @Produce  json
// @Success  200 {object} domain.ChallengeStatus
// @Security BearerAuth
// @Router   /challenge/status [get]
func (h *ChallengeHandler) Status(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	status, err := h.challenges.GetStatus(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *ChallengeHandler) CanComplete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	can, reason, err := h.challenges.CanCompleteTasks(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, canCompleteResponse{CanComplete: can, Reason: reason})
}

// Start godoc
// @Summary  Opt in to the seven-day challenge; day one is tomorrow
// @Tags     challenge
// @Produce  json
// @Success  200 {object} domain.ChallengeStatus
// @Failure  409 {object} map[string]string
// @Security BearerAuth
// @Router   /challenge/start [post]
func (h *ChallengeHandler) Start(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	status, err := h.challenges.Start(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *ChallengeHandler) Complete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	status, err := h.challenges.Complete(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *ChallengeHandler) Progress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	progress, err := h.challenges.GetProgress(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// RecordProgress godoc
// @Summary  Save today's task flags
// @Tags     challenge
// @Accept   json
// @Produce  json
// @Param    body body recordProgressRequest true "task flags"
// @Success  200 {object} domain.DailyTaskRecord
// @Failure  409,422 {object} map[string]string
// @Security BearerAuth
// @Router   /challenge/progress [post]
func (h *ChallengeHandler) RecordProgress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req recordProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	record, err := h.tasks.RecordDailyProgress(c.Request.Context(), services.RecordProgressInput{
		UserID: userID,
		Tasks: domain.Tasks{
			Hydration: *req.Hydration,
			Sleep:     *req.Sleep,
			Diet:      *req.Diet,
			Exercise:  *req.Exercise,
			PhotoLog:  *req.PhotoLog,
		},
		Version: req.Version,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}
