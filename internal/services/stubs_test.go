package services

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"coachbook_backend/internal/models"
	"coachbook_backend/internal/repositories"
	"coachbook_backend/pkg/mailer"
)

// In-memory doubles for the repository interfaces. They reproduce the store
// semantics the services rely on (duplicate detection, keyset pagination,
// row-level rating upserts) without a database.

type fakeCoachRepo struct {
	coaches map[string]*models.Coach
	err     error
}

func newFakeCoachRepo(coaches ...*models.Coach) *fakeCoachRepo {
	repo := &fakeCoachRepo{coaches: map[string]*models.Coach{}}
	for _, coach := range coaches {
		repo.coaches[coach.ID] = coach
	}
	return repo
}

func (f *fakeCoachRepo) GetCoaches() ([]models.Coach, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []models.Coach{}
	for _, coach := range f.coaches {
		out = append(out, *coach)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeCoachRepo) GetCoachByID(id string) (*models.Coach, error) {
	if f.err != nil {
		return nil, f.err
	}
	coach, ok := f.coaches[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *coach
	return &clone, nil
}

func (f *fakeCoachRepo) GetRatingsForUpdate(_ repositories.SQLExecutor, coachID string) (map[string]models.RatingEntry, error) {
	coach, ok := f.coaches[coachID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	ratings := map[string]models.RatingEntry{}
	for uid, entry := range coach.AllRatings {
		ratings[uid] = entry
	}
	return ratings, nil
}

func (f *fakeCoachRepo) UpdateRatings(_ repositories.SQLExecutor, coachID string, ratings map[string]models.RatingEntry, total int, average float64) error {
	coach, ok := f.coaches[coachID]
	if !ok {
		return repositories.ErrNotFound
	}
	coach.AllRatings = ratings
	coach.TotalRatings = total
	coach.AverageRating = average
	return nil
}

type fakeApptRepo struct {
	appts     []models.Appointment
	createErr error
	slotsErr  error
	nextID    int
}

func (f *fakeApptRepo) seed(appts ...models.Appointment) {
	f.appts = append(f.appts, appts...)
}

func (f *fakeApptRepo) CreateAppointment(_ repositories.SQLExecutor, appt *models.Appointment) (*models.Appointment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	appt.ID = fmt.Sprintf("appt-%03d", f.nextID)
	appt.CreatedAt = time.Now()
	f.appts = append(f.appts, *appt)
	return appt, nil
}

func (f *fakeApptRepo) GetAppointmentByID(id string) (*models.Appointment, error) {
	for i := range f.appts {
		if f.appts[i].ID == id {
			clone := f.appts[i]
			return &clone, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeApptRepo) HasAppointment(email, coachID, appointmentDate string) (bool, error) {
	for _, appt := range f.appts {
		if appt.Email == email && appt.CoachID == coachID && appt.AppointmentDate == appointmentDate {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeApptRepo) GetBookedSlots(coachID, date string) ([]string, error) {
	if f.slotsErr != nil {
		return nil, f.slotsErr
	}
	slots := []string{}
	for _, appt := range f.appts {
		if appt.CoachID == coachID && appt.AppointmentDate == date {
			slots = append(slots, appt.TimeSlot)
		}
	}
	return slots, nil
}

func (f *fakeApptRepo) AttachConfirmation(_ repositories.SQLExecutor, id string, pdfBase64 string) error {
	for i := range f.appts {
		if f.appts[i].ID == id {
			f.appts[i].PDFAttachment = &pdfBase64
			return nil
		}
	}
	return repositories.ErrNotFound
}

// sortKey renders the appointment's value for the sort column as an
// order-preserving string.
func sortKey(appt models.Appointment, col string) string {
	switch col {
	case "appointment_date":
		return appt.AppointmentDate
	case "coach_name":
		return appt.CoachName
	case "email":
		return appt.Email
	default:
		return appt.CreatedAt.UTC().Format("20060102150405.000000000")
	}
}

func matchesFilters(appt models.Appointment, filters models.AppointmentFilters) bool {
	if filters.DateFrom != nil && appt.AppointmentDate < *filters.DateFrom {
		return false
	}
	if filters.DateTo != nil && appt.AppointmentDate > *filters.DateTo {
		return false
	}
	if filters.CoachName != nil && appt.CoachName != *filters.CoachName {
		return false
	}
	if filters.UserID != nil && (appt.UserID == nil || *appt.UserID != *filters.UserID) {
		return false
	}
	if filters.CreatedFrom != nil && appt.CreatedAt.Before(*filters.CreatedFrom) {
		return false
	}
	if filters.CreatedTo != nil && appt.CreatedAt.After(*filters.CreatedTo) {
		return false
	}
	return true
}

func (f *fakeApptRepo) ListAppointments(filters models.AppointmentFilters) ([]models.Appointment, error) {
	col := models.AppointmentSortColumns[filters.SortBy]
	if col == "" {
		col = "created_at"
	}
	desc := filters.SortDesc
	if filters.SortBy == "" {
		desc = true
	}

	matched := []models.Appointment{}
	for _, appt := range f.appts {
		if matchesFilters(appt, filters) {
			matched = append(matched, appt)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		ki, kj := sortKey(matched[i], col), sortKey(matched[j], col)
		if ki == kj {
			if desc {
				return matched[i].ID > matched[j].ID
			}
			return matched[i].ID < matched[j].ID
		}
		if desc {
			return ki > kj
		}
		return ki < kj
	})

	if filters.Cursor != nil {
		cursor, err := f.GetAppointmentByID(*filters.Cursor)
		if err != nil {
			return nil, err
		}
		ck := sortKey(*cursor, col)
		after := []models.Appointment{}
		for _, appt := range matched {
			k := sortKey(appt, col)
			past := k < ck || (k == ck && appt.ID < cursor.ID)
			if !desc {
				past = k > ck || (k == ck && appt.ID > cursor.ID)
			}
			if past {
				after = append(after, appt)
			}
		}
		matched = after
	}

	if filters.PageSize > 0 && len(matched) > filters.PageSize {
		matched = matched[:filters.PageSize]
	}
	return matched, nil
}

func (f *fakeApptRepo) CountAppointments(filters models.AppointmentFilters) (int, error) {
	count := 0
	for _, appt := range f.appts {
		if matchesFilters(appt, filters) {
			count++
		}
	}
	return count, nil
}

// fakeTx satisfies repositories.Tx; the coach fake ignores the executor, so
// only the commit/rollback bookkeeping matters here.
type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(string, ...interface{}) (sql.Result, error) { return nil, nil }
func (t *fakeTx) QueryRow(string, ...interface{}) *sql.Row        { return nil }
func (t *fakeTx) Query(string, ...interface{}) (*sql.Rows, error) { return nil, nil }
func (t *fakeTx) Commit() error {
	t.committed = true
	return nil
}
func (t *fakeTx) Rollback() error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeTxStarter struct {
	beginErr error
	last     *fakeTx
}

func (s *fakeTxStarter) Begin() (repositories.Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	s.last = &fakeTx{}
	return s.last, nil
}

type fakeMailer struct {
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}
