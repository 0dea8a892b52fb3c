package handlers

import (
	"errors"
	"net/http"

	"coachbook_backend/internal/services"
	"coachbook_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AppointmentHandler holds the appointment service.
type AppointmentHandler struct {
	apptService services.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(as services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{apptService: as}
}

// callerUID returns the authenticated uid if one was attached by the optional
// auth middleware, nil for anonymous callers.
func callerUID(c *gin.Context) *string {
	if uidRaw, exists := c.Get("uid"); exists {
		if uid, ok := uidRaw.(string); ok && uid != "" {
			return &uid
		}
	}
	return nil
}

// BookAppointment handles the creation of a new appointment.
func (h *AppointmentHandler) BookAppointment(c *gin.Context) {
	var req services.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "BookAppointment: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	appt, err := h.apptService.BookAppointment(req, callerUID(c))
	if err != nil {
		utils.LogError(err, "BookAppointment: Error from apptService.BookAppointment")
		if errors.Is(err, services.ErrAppointmentValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrCoachForBookingNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrDuplicateAppointment) || errors.Is(err, services.ErrSlotUnavailable) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to book appointment.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// checkDuplicateRequest mirrors the original duplicate-check payload.
type checkDuplicateRequest struct {
	Email           string `json:"email"`
	CoachID         string `json:"coach_id"`
	AppointmentDate string `json:"appointment_date"`
}

// CheckDuplicate reports whether an appointment already exists for the exact
// (email, coach, date) tuple. The time slot is deliberately not considered.
func (h *AppointmentHandler) CheckDuplicate(c *gin.Context) {
	var req checkDuplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CheckDuplicate: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	duplicate, err := h.apptService.CheckDuplicate(req.Email, req.CoachID, req.AppointmentDate)
	if err != nil {
		utils.LogError(err, "CheckDuplicate: Error from apptService.CheckDuplicate")
		if errors.Is(err, services.ErrAppointmentValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to check duplicate appointment.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"duplicate": duplicate})
}

// GetSlots returns booked and available slots for a coach on a date.
func (h *AppointmentHandler) GetSlots(c *gin.Context) {
	coachID := c.Query("coach_id")
	date := c.Query("date")

	availability, err := h.apptService.ListSlots(coachID, date)
	if err != nil {
		utils.LogError(err, "GetSlots: Error from apptService.ListSlots")
		if errors.Is(err, services.ErrAppointmentValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch slot availability.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, availability)
}

// GetAppointmentByID handles fetching a single appointment by ID.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	id := c.Param("id")

	appt, err := h.apptService.GetAppointmentByID(id)
	if err != nil {
		utils.LogError(err, "GetAppointmentByID: Error from apptService.GetAppointmentByID for ID "+id)
		if errors.Is(err, services.ErrAppointmentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Appointment not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch appointment.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, appt)
}

// SendConfirmation renders the confirmation PDF, attaches it to the
// appointment and emails it to the booker.
func (h *AppointmentHandler) SendConfirmation(c *gin.Context) {
	id := c.Param("id")

	if err := h.apptService.SendConfirmation(id); err != nil {
		utils.LogError(err, "SendConfirmation: Error from apptService.SendConfirmation for ID "+id)
		if errors.Is(err, services.ErrAppointmentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Appointment not found.", err.Error()))
		} else {
			// Delivery failures included: surfaced as a generic failure, not retried.
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to send confirmation.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Confirmation sent successfully"})
}
