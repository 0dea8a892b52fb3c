package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"coachbook_backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// AppointmentRepository defines the interface for appointment-related database operations.
type AppointmentRepository interface {
	CreateAppointment(executor SQLExecutor, appt *models.Appointment) (*models.Appointment, error)
	GetAppointmentByID(id string) (*models.Appointment, error)
	// HasAppointment reports whether an appointment already exists for exactly
	// this (email, coachID, appointmentDate) tuple. Coarser than the slot-level
	// invariant: it ignores the time slot on purpose.
	HasAppointment(email, coachID, appointmentDate string) (bool, error)
	// GetBookedSlots returns the time slot labels already taken for the coach
	// on the given date.
	GetBookedSlots(coachID, date string) ([]string, error)
	AttachConfirmation(executor SQLExecutor, id string, pdfBase64 string) error
	ListAppointments(filters models.AppointmentFilters) ([]models.Appointment, error)
	CountAppointments(filters models.AppointmentFilters) (int, error)
}

type appointmentRepository struct {
	db *sql.DB
}

// NewAppointmentRepository creates a new instance of AppointmentRepository.
func NewAppointmentRepository(db *sql.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

const selectAppointmentFields = `
	id, coach_id, coach_name, user_id, user_name, email, phone,
	appointment_date::text, time_slot, notes, pdf_attachment, created_at
`

// scanAppointmentRow scans one appointment row into a model.
func scanAppointmentRow(row scanner) (*models.Appointment, error) {
	var appt models.Appointment
	var userID, phone, notes, pdfAttachment sql.NullString

	err := row.Scan(
		&appt.ID, &appt.CoachID, &appt.CoachName, &userID, &appt.UserName,
		&appt.Email, &phone, &appt.AppointmentDate, &appt.TimeSlot,
		&notes, &pdfAttachment, &appt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning appointment: %v", ErrDatabaseError, err)
	}

	if userID.Valid {
		appt.UserID = &userID.String
	}
	if phone.Valid {
		appt.Phone = &phone.String
	}
	if notes.Valid {
		appt.Notes = &notes.String
	}
	if pdfAttachment.Valid {
		appt.PDFAttachment = &pdfAttachment.String
	}
	return &appt, nil
}

func (r *appointmentRepository) CreateAppointment(executor SQLExecutor, appt *models.Appointment) (*models.Appointment, error) {
	query := `INSERT INTO appointments
	            (id, coach_id, coach_name, user_id, user_name, email, phone, appointment_date, time_slot, notes, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING created_at`

	appt.ID = uuid.NewString()
	appt.CreatedAt = time.Now()

	err := executor.QueryRow(query,
		appt.ID, appt.CoachID, appt.CoachName, appt.UserID, appt.UserName,
		appt.Email, appt.Phone, appt.AppointmentDate, appt.TimeSlot, appt.Notes,
		appt.CreatedAt,
	).Scan(&appt.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return nil, fmt.Errorf("%w: creating appointment: %v", ErrDatabaseError, err)
	}
	return appt, nil
}

func (r *appointmentRepository) GetAppointmentByID(id string) (*models.Appointment, error) {
	query := "SELECT " + selectAppointmentFields + " FROM appointments WHERE id = $1"
	return scanAppointmentRow(r.db.QueryRow(query, id))
}

func (r *appointmentRepository) HasAppointment(email, coachID, appointmentDate string) (bool, error) {
	query := `SELECT COUNT(*) FROM appointments
	          WHERE email = $1 AND coach_id = $2 AND appointment_date = $3`
	var count int
	if err := r.db.QueryRow(query, email, coachID, appointmentDate).Scan(&count); err != nil {
		return false, fmt.Errorf("%w: checking duplicate appointment: %v", ErrDatabaseError, err)
	}
	return count > 0, nil
}

func (r *appointmentRepository) GetBookedSlots(coachID, date string) ([]string, error) {
	query := `SELECT time_slot FROM appointments
	          WHERE coach_id = $1 AND appointment_date = $2`
	rows, err := r.db.Query(query, coachID, date)
	if err != nil {
		return nil, fmt.Errorf("%w: querying booked slots: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	slots := []string{}
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, fmt.Errorf("%w: scanning booked slot: %v", ErrDatabaseError, err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating booked slots: %v", ErrDatabaseError, err)
	}
	return slots, nil
}

func (r *appointmentRepository) AttachConfirmation(executor SQLExecutor, id string, pdfBase64 string) error {
	query := `UPDATE appointments SET pdf_attachment = $1 WHERE id = $2`
	result, err := executor.Exec(query, pdfBase64, id)
	if err != nil {
		return fmt.Errorf("%w: attaching confirmation to appointment %s: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// buildAppointmentConditions translates the filters into SQL conditions and
// positional args. The notes substring filter is deliberately absent: it is
// applied in-memory by the service after the page is fetched.
func buildAppointmentConditions(filters models.AppointmentFilters) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	argCount := 1

	add := func(cond string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(cond, argCount))
		args = append(args, value)
		argCount++
	}

	if filters.DateFrom != nil {
		add("appointment_date >= $%d", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		add("appointment_date <= $%d", *filters.DateTo)
	}
	if filters.CoachName != nil {
		add("coach_name = $%d", *filters.CoachName)
	}
	if filters.UserID != nil {
		add("user_id = $%d", *filters.UserID)
	}
	if filters.CreatedFrom != nil {
		add("created_at >= $%d", *filters.CreatedFrom)
	}
	if filters.CreatedTo != nil {
		add("created_at <= $%d", *filters.CreatedTo)
	}
	return conditions, args
}

// sortColumn resolves the filter's sort key against the whitelist,
// defaulting to created_at descending.
func sortColumn(filters models.AppointmentFilters) (string, bool) {
	if col, ok := models.AppointmentSortColumns[filters.SortBy]; ok {
		return col, filters.SortDesc
	}
	return "created_at", true
}

func (r *appointmentRepository) ListAppointments(filters models.AppointmentFilters) ([]models.Appointment, error) {
	conditions, args := buildAppointmentConditions(filters)
	col, desc := sortColumn(filters)

	// Keyset pagination: position strictly after the cursor row under the
	// current sort order, with id as tiebreak.
	if filters.Cursor != nil {
		var sortVal interface{}
		var cursorID string
		cursorQuery := fmt.Sprintf("SELECT %s, id FROM appointments WHERE id = $1", col)
		err := r.db.QueryRow(cursorQuery, *filters.Cursor).Scan(&sortVal, &cursorID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: cursor appointment %s", ErrNotFound, *filters.Cursor)
			}
			return nil, fmt.Errorf("%w: resolving cursor: %v", ErrDatabaseError, err)
		}
		op := ">"
		if desc {
			op = "<"
		}
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(%s, id) %s ($%d, $%d)", col, op, n+1, n+2))
		args = append(args, sortVal, cursorID)
	}

	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + selectAppointmentFields + " FROM appointments")
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s %s, id %s", col, dir, dir))
	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)+1))
		args = append(args, filters.PageSize)
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying appointments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	appointments := []models.Appointment{}
	for rows.Next() {
		appt, scanErr := scanAppointmentRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		appointments = append(appointments, *appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating appointment rows: %v", ErrDatabaseError, err)
	}
	return appointments, nil
}

// CountAppointments runs a separate count over the filtered, pre-pagination
// query. The cursor is not part of the count.
func (r *appointmentRepository) CountAppointments(filters models.AppointmentFilters) (int, error) {
	conditions, args := buildAppointmentConditions(filters)

	query := "SELECT COUNT(*) FROM appointments"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting appointments: %v", ErrDatabaseError, err)
	}
	return count, nil
}
