package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coachbook_backend/internal/models"
	"coachbook_backend/internal/services"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Function-field stubs for the service interfaces. Unset fields panic, which
// is what we want: a handler calling an unexpected method fails the test.

type stubApptService struct {
	bookFn           func(req services.BookAppointmentRequest, callerUID *string) (*models.Appointment, error)
	getByIDFn        func(id string) (*models.Appointment, error)
	checkDuplicateFn func(email, coachID, appointmentDate string) (bool, error)
	listSlotsFn      func(coachID, date string) (*services.SlotAvailability, error)
	sendConfFn       func(appointmentID string) error
	queryFn          func(req services.AppointmentQueryRequest) (*services.AppointmentPage, error)
}

func (s *stubApptService) BookAppointment(req services.BookAppointmentRequest, callerUID *string) (*models.Appointment, error) {
	return s.bookFn(req, callerUID)
}
func (s *stubApptService) GetAppointmentByID(id string) (*models.Appointment, error) {
	return s.getByIDFn(id)
}
func (s *stubApptService) CheckDuplicate(email, coachID, appointmentDate string) (bool, error) {
	return s.checkDuplicateFn(email, coachID, appointmentDate)
}
func (s *stubApptService) ListSlots(coachID, date string) (*services.SlotAvailability, error) {
	return s.listSlotsFn(coachID, date)
}
func (s *stubApptService) SendConfirmation(appointmentID string) error {
	return s.sendConfFn(appointmentID)
}
func (s *stubApptService) QueryAppointments(req services.AppointmentQueryRequest) (*services.AppointmentPage, error) {
	return s.queryFn(req)
}

type stubRatingService struct {
	getCoachesFn   func() ([]models.Coach, error)
	getCoachByIDFn func(id string) (*models.Coach, error)
	submitRatingFn func(coachID, userID string, rating int, comment string) (*models.RatingSummary, error)
	listReviewsFn  func(coachID string) ([]models.Review, error)
}

func (s *stubRatingService) GetCoaches() ([]models.Coach, error) { return s.getCoachesFn() }
func (s *stubRatingService) GetCoachByID(id string) (*models.Coach, error) {
	return s.getCoachByIDFn(id)
}
func (s *stubRatingService) SubmitRating(coachID, userID string, rating int, comment string) (*models.RatingSummary, error) {
	return s.submitRatingFn(coachID, userID, rating, comment)
}
func (s *stubRatingService) ListReviews(coachID string) ([]models.Review, error) {
	return s.listReviewsFn(coachID)
}

type stubAuthService struct {
	registerFn   func(req services.RegisterUserRequest) (*models.User, error)
	loginFn      func(req services.LoginRequest) (*services.AuthResponse, error)
	getProfileFn func(uid string) (*models.User, error)
}

func (s *stubAuthService) RegisterUser(req services.RegisterUserRequest) (*models.User, error) {
	return s.registerFn(req)
}
func (s *stubAuthService) LoginUser(req services.LoginRequest) (*services.AuthResponse, error) {
	return s.loginFn(req)
}
func (s *stubAuthService) GetUserProfile(uid string) (*models.User, error) {
	return s.getProfileFn(uid)
}

// setIdentity simulates what the auth middleware attaches to the context.
func setIdentity(uid, email, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("uid", uid)
		c.Set("email", email)
		c.Set("userRole", role)
		c.Next()
	}
}

func performRequest(t *testing.T, engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}
