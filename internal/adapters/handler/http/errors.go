package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-challenge/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
)

func handleError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized access"})

	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})

	case errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrTaskRecordNotFound),
		errors.Is(err, domain.ErrScoreNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})

	case errors.Is(err, domain.ErrTaskRecordConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "version conflict",
			"message": "today's tasks were modified elsewhere, reload and try again",
		})

	case errors.Is(err, domain.ErrEmailAlreadyExists),
		errors.Is(err, domain.ErrChallengeAlreadyStarted),
		errors.Is(err, domain.ErrChallengeAlreadyCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrTasksLocked),
		errors.Is(err, domain.ErrTaskRecordLocked),
		errors.Is(err, domain.ErrChallengeNotStarted),
		errors.Is(err, domain.ErrChallengeNotFinished):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrInvalidWeight),
		errors.Is(err, domain.ErrDisplayNameEmpty),
		errors.Is(err, domain.ErrDisplayNameTooLong),
		errors.Is(err, domain.ErrInvalidPhotoURL),
		errors.Is(err, domain.ErrInvalidTaskRecord):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func bindError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
}

// currentUser reads the authenticated user id, answering 401 when missing.
func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	return userID, true
}
