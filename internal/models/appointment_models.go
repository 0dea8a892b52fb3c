package models

import "time"

// DateLayout is the calendar-date form used throughout the booking API.
const DateLayout = "2006-01-02"

// DefaultTimeSlots is the catalog of bookable half-hour slots. Slots are
// discrete labels compared for exact equality, unique per (coach, date).
var DefaultTimeSlots = []string{
	"09:00-09:30", "09:30-10:00",
	"10:00-10:30", "10:30-11:00",
	"11:00-11:30", "11:30-12:00",
	"13:00-13:30", "13:30-14:00",
	"14:00-14:30", "14:30-15:00",
	"15:00-15:30", "15:30-16:00",
	"16:00-16:30", "16:30-17:00",
	"17:00-17:30", "17:30-18:00",
}

// IsValidTimeSlot checks whether the label is one of the bookable slots.
func IsValidTimeSlot(slot string) bool {
	for _, s := range DefaultTimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// Appointment represents one booked slot with a coach.
type Appointment struct {
	ID              string    `json:"id" db:"id"`
	CoachID         string    `json:"coach_id" db:"coach_id" binding:"required"`
	CoachName       string    `json:"coach_name" db:"coach_name" binding:"required"`
	UserID          *string   `json:"user_id,omitempty" db:"user_id"` // nil for anonymous bookings
	UserName        string    `json:"user_name" db:"user_name" binding:"required"`
	Email           string    `json:"email" db:"email" binding:"required"`
	Phone           *string   `json:"phone,omitempty" db:"phone"`
	AppointmentDate string    `json:"appointment_date" db:"appointment_date" binding:"required"` // YYYY-MM-DD
	TimeSlot        string    `json:"time_slot" db:"time_slot" binding:"required"`
	Notes           *string   `json:"notes,omitempty" db:"notes"`
	PDFAttachment   *string   `json:"pdf_attachment,omitempty" db:"pdf_attachment"` // base64, attached post-creation
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Sortable columns for the admin appointment query, keyed by API name.
var AppointmentSortColumns = map[string]string{
	"created_at":       "created_at",
	"appointment_date": "appointment_date",
	"coach_name":       "coach_name",
	"email":            "email",
}

// AppointmentFilters defines the available filters, sort and cursor for
// querying appointments. All filters are optional and combine with AND.
type AppointmentFilters struct {
	DateFrom    *string    // appointment_date >= (YYYY-MM-DD)
	DateTo      *string    // appointment_date <= (YYYY-MM-DD)
	CoachName   *string    // exact match
	UserID      *string    // exact match
	CreatedFrom *time.Time // created_at >=, normalized to 00:00:00.000
	CreatedTo   *time.Time // created_at <=, normalized to 23:59:59.999
	SortBy      string     // one of AppointmentSortColumns keys; "" means created_at
	SortDesc    bool
	Cursor      *string // id of the previous page's last item
	PageSize    int
}

// Active reports whether at least one filter is set. The query engine only
// runs its count scan when this is true or on the initial load.
func (f AppointmentFilters) Active() bool {
	return f.DateFrom != nil || f.DateTo != nil || f.CoachName != nil ||
		f.UserID != nil || f.CreatedFrom != nil || f.CreatedTo != nil
}

// AppointmentView is the admin query item shape: all Appointment fields with
// created_at rendered as an ISO-8601 string.
type AppointmentView struct {
	ID              string  `json:"id"`
	CoachID         string  `json:"coach_id"`
	CoachName       string  `json:"coach_name"`
	UserID          *string `json:"user_id,omitempty"`
	UserName        string  `json:"user_name"`
	Email           string  `json:"email"`
	Phone           *string `json:"phone,omitempty"`
	AppointmentDate string  `json:"appointment_date"`
	TimeSlot        string  `json:"time_slot"`
	Notes           *string `json:"notes,omitempty"`
	PDFAttachment   *string `json:"pdf_attachment,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// View converts an Appointment to its admin query representation.
func (a Appointment) View() AppointmentView {
	return AppointmentView{
		ID:              a.ID,
		CoachID:         a.CoachID,
		CoachName:       a.CoachName,
		UserID:          a.UserID,
		UserName:        a.UserName,
		Email:           a.Email,
		Phone:           a.Phone,
		AppointmentDate: a.AppointmentDate,
		TimeSlot:        a.TimeSlot,
		Notes:           a.Notes,
		PDFAttachment:   a.PDFAttachment,
		CreatedAt:       a.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
