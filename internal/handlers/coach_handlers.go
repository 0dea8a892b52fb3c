package handlers

import (
	"errors"
	"net/http"

	"coachbook_backend/internal/models"
	"coachbook_backend/internal/services"
	"coachbook_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CoachHandler holds the rating service.
type CoachHandler struct {
	ratingService services.RatingService
}

// NewCoachHandler creates a new CoachHandler.
func NewCoachHandler(rs services.RatingService) *CoachHandler {
	return &CoachHandler{ratingService: rs}
}

// GetCoaches handles fetching all coaches.
func (h *CoachHandler) GetCoaches(c *gin.Context) {
	coaches, err := h.ratingService.GetCoaches()
	if err != nil {
		utils.LogError(err, "GetCoaches: Error from ratingService.GetCoaches")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch coaches.", "Internal error"))
		return
	}
	if coaches == nil {
		coaches = []models.Coach{}
	}
	c.JSON(http.StatusOK, coaches)
}

// GetCoachByID handles fetching a single coach by ID.
func (h *CoachHandler) GetCoachByID(c *gin.Context) {
	id := c.Param("id")

	coach, err := h.ratingService.GetCoachByID(id)
	if err != nil {
		utils.LogError(err, "GetCoachByID: Error from ratingService.GetCoachByID for ID "+id)
		if errors.Is(err, services.ErrCoachNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Coach not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch coach.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, coach)
}

// SubmitRating handles a rating submission from the authenticated user.
func (h *CoachHandler) SubmitRating(c *gin.Context) {
	coachID := c.Param("id")

	uidRaw, exists := c.Get("uid")
	uid, ok := uidRaw.(string)
	if !exists || !ok || uid == "" {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing uid in context"))
		return
	}

	var req services.SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "SubmitRating: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	summary, err := h.ratingService.SubmitRating(coachID, uid, req.Rating, req.Comment)
	if err != nil {
		utils.LogError(err, "SubmitRating: Error from ratingService.SubmitRating for coach "+coachID)
		if errors.Is(err, services.ErrRatingOutOfRange) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrCoachNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Coach not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to submit rating.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetReviews handles fetching a coach's reviews with pseudonymized reviewers.
func (h *CoachHandler) GetReviews(c *gin.Context) {
	coachID := c.Param("id")

	reviews, err := h.ratingService.ListReviews(coachID)
	if err != nil {
		utils.LogError(err, "GetReviews: Error from ratingService.ListReviews for coach "+coachID)
		if errors.Is(err, services.ErrCoachNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Coach not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch reviews.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, reviews)
}
