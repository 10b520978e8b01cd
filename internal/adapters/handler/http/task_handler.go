package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
	"github.com/comitanigiacomo/kanso-challenge/internal/core/services"
)

type TaskHandler struct {
	svc *services.TaskService
	now func() time.Time
}

func NewTaskHandler(svc *services.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc, now: time.Now}
}

func (h *TaskHandler) RegisterRoutes(router *gin.RouterGroup) {
	tasks := router.Group("/tasks")
	{
		tasks.GET("/today", h.Today)
		tasks.GET("", h.History)
	}
}

func (h *TaskHandler) Today(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	record, err := h.svc.GetToday(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// History lists records between the from and to query dates (YYYY-MM-DD),
// defaulting to the last seven days.
func (h *TaskHandler) History(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	to := domain.CalendarDay(h.now())
	from := to.AddDate(0, 0, -(domain.ChallengeLength - 1))

	if v := c.Query("from"); v != "" {
		parsed, err := domain.ParseDateKey(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date (use YYYY-MM-DD)"})
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := domain.ParseDateKey(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date (use YYYY-MM-DD)"})
			return
		}
		to = parsed
	}

	records, err := h.svc.ListHistory(c.Request.Context(), userID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
