package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
	"github.com/comitanigiacomo/kanso-challenge/internal/core/services"
)

type ProfileHandler struct {
	svc *services.ProfileService
}

func NewProfileHandler(svc *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// profileResponse adds the display labels of the weights next to the raw values.
type profileResponse struct {
	UserID               string     `json:"user_id"`
	DisplayName          string     `json:"display_name"`
	PhotoURL             string     `json:"photo_url,omitempty"`
	InitialWeight        *float64   `json:"initial_weight,omitempty"`
	InitialWeightLabel   string     `json:"initial_weight_label"`
	CurrentWeight        *float64   `json:"current_weight,omitempty"`
	CurrentWeightLabel   string     `json:"current_weight_label"`
	ChallengeStartDate   string     `json:"challenge_start_date,omitempty"`
	ChallengeCompletedAt *time.Time `json:"challenge_completed_at,omitempty"`
}

func newProfileResponse(p *domain.Profile) *profileResponse {
	resp := &profileResponse{
		UserID:               p.UserID,
		DisplayName:          p.DisplayName,
		PhotoURL:             p.PhotoURL,
		InitialWeight:        p.InitialWeight,
		InitialWeightLabel:   domain.FormatWeight(p.InitialWeight),
		CurrentWeight:        p.CurrentWeight,
		CurrentWeightLabel:   domain.FormatWeight(p.CurrentWeight),
		ChallengeCompletedAt: p.ChallengeCompletedAt,
	}
	if p.ChallengeStartDate != nil {
		resp.ChallengeStartDate = domain.DateKey(*p.ChallengeStartDate)
	}
	return resp
}

type updateProfileRequest struct {
	DisplayName   *string `json:"display_name" binding:"omitempty,max=80"`
	PhotoURL      *string `json:"photo_url"`
	CurrentWeight *string `json:"current_weight"`
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	{
		profile.GET("", h.Get)
		profile.PATCH("", h.Update)
	}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	p, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, newProfileResponse(p))
}

func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	p, err := h.svc.Update(c.Request.Context(), services.UpdateProfileInput{
		UserID:        userID,
		DisplayName:   req.DisplayName,
		PhotoURL:      req.PhotoURL,
		CurrentWeight: req.CurrentWeight,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, newProfileResponse(p))
}
