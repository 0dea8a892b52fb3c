package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"coachbook_backend/internal/models"
	"coachbook_backend/internal/services"
	"coachbook_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler holds the appointment service for the admin query surface.
type AdminHandler struct {
	apptService services.AppointmentService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(as services.AppointmentService) *AdminHandler {
	return &AdminHandler{apptService: as}
}

// QueryAppointments handles the filtered, sorted, cursor-paginated admin
// listing. Authentication is enforced by middleware before any filter here
// is read.
func (h *AdminHandler) QueryAppointments(c *gin.Context) {
	var req services.AppointmentQueryRequest

	if v := c.Query("date_from"); v != "" {
		if !utils.IsValidDate(v) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid date_from format. Use YYYY-MM-DD.", "date_from: "+v))
			return
		}
		req.Filters.DateFrom = &v
	}
	if v := c.Query("date_to"); v != "" {
		if !utils.IsValidDate(v) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid date_to format. Use YYYY-MM-DD.", "date_to: "+v))
			return
		}
		req.Filters.DateTo = &v
	}
	req.Filters.CoachName = utils.NewNullString(c.Query("coach_name"))
	req.Filters.UserID = utils.NewNullString(c.Query("user_id"))
	if v := c.Query("created_from"); v != "" {
		t, err := time.Parse(models.DateLayout, v)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid created_from format. Use YYYY-MM-DD.", err.Error()))
			return
		}
		// Start of day.
		req.Filters.CreatedFrom = &t
	}
	if v := c.Query("created_to"); v != "" {
		t, err := time.Parse(models.DateLayout, v)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid created_to format. Use YYYY-MM-DD.", err.Error()))
			return
		}
		endOfDay := t.Add(23*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond)
		req.Filters.CreatedTo = &endOfDay
	}
	req.NotesContains = utils.NewNullString(c.Query("notes"))

	if v := c.Query("sort_by"); v != "" {
		if _, ok := models.AppointmentSortColumns[v]; !ok {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid sort_by value.", "sort_by: "+v))
			return
		}
		req.Filters.SortBy = v
	}
	req.Filters.SortDesc = c.DefaultQuery("sort_dir", "desc") != "asc"

	req.Filters.Cursor = utils.NewNullString(c.Query("cursor"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	req.Filters.PageSize = pageSize
	req.InitialLoad = c.DefaultQuery("initial", "false") == "true"

	page, err := h.apptService.QueryAppointments(req)
	if err != nil {
		utils.LogError(err, "QueryAppointments: Error from apptService.QueryAppointments")
		if errors.Is(err, services.ErrInvalidCursor) || errors.Is(err, services.ErrAppointmentValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to query appointments.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, page)
}
