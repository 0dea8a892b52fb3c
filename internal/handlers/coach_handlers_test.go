package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"coachbook_backend/internal/models"
	"coachbook_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coachEngine(stub *stubRatingService, identity ...gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	handler := NewCoachHandler(stub)
	engine.GET("/coaches", handler.GetCoaches)
	engine.GET("/coaches/:id", handler.GetCoachByID)
	engine.GET("/coaches/:id/reviews", handler.GetReviews)

	rate := engine.Group("/coaches")
	for _, mw := range identity {
		rate.Use(mw)
	}
	rate.POST("/:id/ratings", handler.SubmitRating)
	return engine
}

func TestGetCoachesEmptyListIsNotNull(t *testing.T) {
	stub := &stubRatingService{
		getCoachesFn: func() ([]models.Coach, error) { return nil, nil },
	}
	w := performRequest(t, coachEngine(stub), http.MethodGet, "/coaches", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetCoachByIDHidesRatingsMapping(t *testing.T) {
	stub := &stubRatingService{
		getCoachByIDFn: func(id string) (*models.Coach, error) {
			return &models.Coach{
				ID: id, Name: "Alex Morgan",
				AllRatings:    map[string]models.RatingEntry{"uid-1": {Rating: 5}},
				TotalRatings:  1,
				AverageRating: 5,
			}, nil
		},
	}
	w := performRequest(t, coachEngine(stub), http.MethodGet, "/coaches/coach-1", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	// Aggregate is public, the per-user mapping is not.
	assert.Equal(t, float64(1), body["total_ratings"])
	assert.NotContains(t, body, "all_ratings")
	assert.NotContains(t, w.Body.String(), "uid-1")
}

func TestGetCoachByIDNotFound(t *testing.T) {
	stub := &stubRatingService{
		getCoachByIDFn: func(id string) (*models.Coach, error) { return nil, services.ErrCoachNotFound },
	}
	w := performRequest(t, coachEngine(stub), http.MethodGet, "/coaches/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitRatingRequiresIdentity(t *testing.T) {
	stub := &stubRatingService{
		submitRatingFn: func(string, string, int, string) (*models.RatingSummary, error) {
			t.Fatal("service should not be reached without an identity")
			return nil, nil
		},
	}
	w := performRequest(t, coachEngine(stub), http.MethodPost, "/coaches/coach-1/ratings", `{"rating":5}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitRatingReturnsSummary(t *testing.T) {
	stub := &stubRatingService{
		submitRatingFn: func(coachID, userID string, rating int, comment string) (*models.RatingSummary, error) {
			assert.Equal(t, "coach-1", coachID)
			assert.Equal(t, "uid-1", userID)
			assert.Equal(t, 4, rating)
			assert.Equal(t, "very helpful", comment)
			return &models.RatingSummary{TotalRatings: 3, AverageRating: 4.5}, nil
		},
	}
	engine := coachEngine(stub, setIdentity("uid-1", "jane@example.com", models.RoleUser))

	w := performRequest(t, engine, http.MethodPost, "/coaches/coach-1/ratings", `{"rating":4,"comment":"very helpful"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var summary models.RatingSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 3, summary.TotalRatings)
	assert.Equal(t, 4.5, summary.AverageRating)
}

func TestSubmitRatingStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"out of range", services.ErrRatingOutOfRange, http.StatusBadRequest},
		{"unknown coach", services.ErrCoachNotFound, http.StatusNotFound},
		{"store failure", assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubRatingService{
				submitRatingFn: func(string, string, int, string) (*models.RatingSummary, error) {
					return nil, tc.err
				},
			}
			engine := coachEngine(stub, setIdentity("uid-1", "jane@example.com", models.RoleUser))
			w := performRequest(t, engine, http.MethodPost, "/coaches/coach-1/ratings", `{"rating":4}`)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestGetReviews(t *testing.T) {
	stub := &stubRatingService{
		listReviewsFn: func(coachID string) ([]models.Review, error) {
			return []models.Review{
				{Reviewer: "User 1", Rating: 5, Comment: "great", Timestamp: time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)},
				{Reviewer: "User 2", Rating: 3, Comment: "fine", Timestamp: time.Date(2026, 7, 2, 10, 0, 0, 0, time.UTC)},
			}, nil
		},
	}
	w := performRequest(t, coachEngine(stub), http.MethodGet, "/coaches/coach-1/reviews", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var reviews []models.Review
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reviews))
	require.Len(t, reviews, 2)
	assert.Equal(t, "User 1", reviews[0].Reviewer)
}
