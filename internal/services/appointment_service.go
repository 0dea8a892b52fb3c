package services

import (
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"coachbook_backend/internal/models"
	"coachbook_backend/internal/repositories"
	"coachbook_backend/pkg/mailer"
	"coachbook_backend/pkg/pdf"
	"coachbook_backend/pkg/utils"
)

// --- Custom Service Errors for Appointments ---
var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrAppointmentValidation   = errors.New("appointment data validation error")
	ErrCoachForBookingNotFound = errors.New("coach specified for booking not found")
	ErrSlotUnavailable         = errors.New("time slot is already booked for this coach and date")
	ErrDuplicateAppointment    = errors.New("an appointment with this coach already exists for this email and date")
	ErrInvalidCursor           = errors.New("unknown pagination cursor")
	ErrEmailDelivery           = errors.New("failed to deliver confirmation email")
)

// --- Appointment DTOs ---

// BookAppointmentRequest carries a booking submission. Required-field checks
// live in the service so failures can name the offending fields.
type BookAppointmentRequest struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           *string `json:"phone"`
	AppointmentDate string  `json:"appointment_date"` // YYYY-MM-DD
	TimeSlot        string  `json:"time_slot"`
	Notes           *string `json:"notes"`
	CoachID         string  `json:"coach_id"`
	CoachName       string  `json:"coach_name"`
}

// SlotAvailability is the per-coach, per-date slot picture.
type SlotAvailability struct {
	CoachID        string   `json:"coach_id"`
	Date           string   `json:"date"`
	BookedSlots    []string `json:"booked_slots"`
	AvailableSlots []string `json:"available_slots"`
}

// AppointmentQueryRequest is the admin query input: filters plus the
// page-scoped notes substring filter and the count gate.
type AppointmentQueryRequest struct {
	Filters       models.AppointmentFilters
	NotesContains *string // case-insensitive, applied to the fetched page only
	InitialLoad   bool
}

// AppointmentPage is one page of admin query results.
type AppointmentPage struct {
	Items      []models.AppointmentView `json:"items"`
	NextCursor *string                  `json:"next_cursor,omitempty"`
	Total      int                      `json:"total"`
}

// --- AppointmentService Interface ---
type AppointmentService interface {
	BookAppointment(req BookAppointmentRequest, callerUID *string) (*models.Appointment, error)
	GetAppointmentByID(id string) (*models.Appointment, error)
	CheckDuplicate(email, coachID, appointmentDate string) (bool, error)
	ListSlots(coachID, date string) (*SlotAvailability, error)
	SendConfirmation(appointmentID string) error
	QueryAppointments(req AppointmentQueryRequest) (*AppointmentPage, error)
}

// --- appointmentService Implementation ---
type appointmentService struct {
	apptRepo  repositories.AppointmentRepository
	coachRepo repositories.CoachRepository
	mail      mailer.Mailer
	db        *sql.DB
}

// NewAppointmentService creates a new instance of AppointmentService.
func NewAppointmentService(
	ar repositories.AppointmentRepository,
	cr repositories.CoachRepository,
	m mailer.Mailer,
	db *sql.DB,
) AppointmentService {
	return &appointmentService{
		apptRepo:  ar,
		coachRepo: cr,
		mail:      m,
		db:        db,
	}
}

// validateBooking checks required fields and field formats.
func validateBooking(req BookAppointmentRequest) error {
	var missing []string
	if utils.IsEmpty(req.Name) {
		missing = append(missing, "name")
	}
	if utils.IsEmpty(req.Email) {
		missing = append(missing, "email")
	}
	if utils.IsEmpty(req.AppointmentDate) {
		missing = append(missing, "appointment_date")
	}
	if utils.IsEmpty(req.CoachID) {
		missing = append(missing, "coach_id")
	}
	if utils.IsEmpty(req.CoachName) {
		missing = append(missing, "coach_name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrAppointmentValidation, strings.Join(missing, ", "))
	}

	if !utils.IsValidEmail(req.Email) {
		return fmt.Errorf("%w: email: invalid format", ErrAppointmentValidation)
	}
	if _, err := time.Parse(models.DateLayout, req.AppointmentDate); err != nil {
		return fmt.Errorf("%w: appointment_date: use YYYY-MM-DD", ErrAppointmentValidation)
	}
	if !models.IsValidTimeSlot(req.TimeSlot) {
		return fmt.Errorf("%w: time_slot: unknown slot '%s'", ErrAppointmentValidation, req.TimeSlot)
	}
	return nil
}

// BookAppointment validates the request, checks for a same-day duplicate and
// the slot's availability, then inserts. The unique index on
// (coach_id, appointment_date, time_slot) backs the availability check: two
// concurrent bookings that both pass it cannot both insert.
func (s *appointmentService) BookAppointment(req BookAppointmentRequest, callerUID *string) (*models.Appointment, error) {
	if err := validateBooking(req); err != nil {
		return nil, err
	}

	if _, err := s.coachRepo.GetCoachByID(req.CoachID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %s", ErrCoachForBookingNotFound, req.CoachID)
		}
		return nil, fmt.Errorf("failed to validate coach for booking: %w", err)
	}

	duplicate, err := s.apptRepo.HasAppointment(req.Email, req.CoachID, req.AppointmentDate)
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicate appointment: %w", err)
	}
	if duplicate {
		return nil, ErrDuplicateAppointment
	}

	booked, err := s.apptRepo.GetBookedSlots(req.CoachID, req.AppointmentDate)
	if err != nil {
		return nil, fmt.Errorf("failed to check slot availability: %w", err)
	}
	for _, slot := range booked {
		if slot == req.TimeSlot {
			return nil, ErrSlotUnavailable
		}
	}

	appt := &models.Appointment{
		CoachID:         req.CoachID,
		CoachName:       req.CoachName,
		UserID:          callerUID,
		UserName:        req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		AppointmentDate: req.AppointmentDate,
		TimeSlot:        req.TimeSlot,
		Notes:           req.Notes,
	}

	created, err := s.apptRepo.CreateAppointment(s.db, appt)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			// Lost the race between the availability check and the insert.
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	return created, nil
}

func (s *appointmentService) GetAppointmentByID(id string) (*models.Appointment, error) {
	appt, err := s.apptRepo.GetAppointmentByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return appt, nil
}

// CheckDuplicate reports whether the exact (email, coachID, appointmentDate)
// tuple is already booked. The time slot is not part of the check.
func (s *appointmentService) CheckDuplicate(email, coachID, appointmentDate string) (bool, error) {
	if utils.IsEmpty(email) || utils.IsEmpty(coachID) || utils.IsEmpty(appointmentDate) {
		return false, fmt.Errorf("%w: email, coach_id and appointment_date are required", ErrAppointmentValidation)
	}
	duplicate, err := s.apptRepo.HasAppointment(email, coachID, appointmentDate)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate appointment: %w", err)
	}
	return duplicate, nil
}

// ListSlots returns booked and remaining slots for the coach on the date.
// A store failure propagates; availability is never silently reported empty.
func (s *appointmentService) ListSlots(coachID, date string) (*SlotAvailability, error) {
	if utils.IsEmpty(coachID) || !utils.IsValidDate(date) {
		return nil, fmt.Errorf("%w: coach_id and date (YYYY-MM-DD) are required", ErrAppointmentValidation)
	}

	booked, err := s.apptRepo.GetBookedSlots(coachID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked slots: %w", err)
	}

	taken := make(map[string]bool, len(booked))
	for _, slot := range booked {
		taken[slot] = true
	}
	available := []string{}
	for _, slot := range models.DefaultTimeSlots {
		if !taken[slot] {
			available = append(available, slot)
		}
	}

	return &SlotAvailability{
		CoachID:        coachID,
		Date:           date,
		BookedSlots:    booked,
		AvailableSlots: available,
	}, nil
}

// SendConfirmation renders the confirmation document, stores it on the
// appointment and emails it. Delivery is attempted once; a failure is
// surfaced, not retried.
func (s *appointmentService) SendConfirmation(appointmentID string) error {
	appt, err := s.apptRepo.GetAppointmentByID(appointmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAppointmentNotFound
		}
		return fmt.Errorf("failed to load appointment for confirmation: %w", err)
	}

	notes := ""
	if appt.Notes != nil {
		notes = *appt.Notes
	}
	document, err := pdf.RenderConfirmation(pdf.ConfirmationFields{
		RecipientName:   appt.UserName,
		CoachName:       appt.CoachName,
		AppointmentDate: appt.AppointmentDate,
		TimeSlot:        appt.TimeSlot,
		Notes:           notes,
	})
	if err != nil {
		return fmt.Errorf("failed to render confirmation document: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(document)
	if err := s.apptRepo.AttachConfirmation(s.db, appt.ID, encoded); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAppointmentNotFound
		}
		return fmt.Errorf("failed to attach confirmation document: %w", err)
	}

	msg := mailer.Message{
		To:      appt.Email,
		Subject: "Appointment Confirmation",
		Text:    fmt.Sprintf("Your appointment with %s has been confirmed for %s, %s.", appt.CoachName, appt.AppointmentDate, appt.TimeSlot),
		Attachments: []mailer.Attachment{{
			Filename:      "appointment-confirmation.pdf",
			MIMEType:      "application/pdf",
			ContentBase64: encoded,
		}},
	}
	if err := s.mail.Send(msg); err != nil {
		return fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}
	return nil
}

// QueryAppointments runs the filtered, sorted, cursor-paginated admin query.
// The total is computed via a separate count only on the initial load or when
// at least one filter is active; otherwise it is reported as 0 and callers
// keep the last rendered total.
func (s *appointmentService) QueryAppointments(req AppointmentQueryRequest) (*AppointmentPage, error) {
	filters := req.Filters
	if filters.PageSize <= 0 {
		filters.PageSize = 10
	}
	if filters.PageSize > 100 {
		filters.PageSize = 100
	}
	if filters.SortBy != "" {
		if _, ok := models.AppointmentSortColumns[filters.SortBy]; !ok {
			return nil, fmt.Errorf("%w: sort_by: unknown key '%s'", ErrAppointmentValidation, filters.SortBy)
		}
	}

	fetched, err := s.apptRepo.ListAppointments(filters)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCursor
		}
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}

	// The cursor advances over the fetched page, before the notes filter:
	// the notes match narrows what is shown, not where the next page starts.
	var nextCursor *string
	if len(fetched) == filters.PageSize && filters.PageSize > 0 {
		lastID := fetched[len(fetched)-1].ID
		nextCursor = &lastID
	}

	items := []models.AppointmentView{}
	for _, appt := range fetched {
		if req.NotesContains != nil && !notesMatch(appt.Notes, *req.NotesContains) {
			continue
		}
		items = append(items, appt.View())
	}

	// The notes match counts as an active filter for the gate, but the count
	// scan itself cannot see it: the reported total is of the store-filtered
	// set, consistent with the cursor advancing over unmatched rows.
	total := 0
	if req.InitialLoad || filters.Active() || req.NotesContains != nil {
		total, err = s.apptRepo.CountAppointments(filters)
		if err != nil {
			return nil, fmt.Errorf("failed to count appointments: %w", err)
		}
	}

	return &AppointmentPage{
		Items:      items,
		NextCursor: nextCursor,
		Total:      total,
	}, nil
}

// notesMatch is the case-insensitive substring test for the page-scoped notes filter.
func notesMatch(notes *string, needle string) bool {
	if notes == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*notes), strings.ToLower(needle))
}
