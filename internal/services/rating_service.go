package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"coachbook_backend/internal/models"
	"coachbook_backend/internal/repositories"
)

// --- Custom Service Errors for Ratings ---
var (
	ErrCoachNotFound    = errors.New("coach not found")
	ErrRatingOutOfRange = errors.New("rating must be an integer between 1 and 5")
)

// SubmitRatingRequest DTO
type SubmitRatingRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// --- RatingService Interface ---
type RatingService interface {
	GetCoaches() ([]models.Coach, error)
	GetCoachByID(id string) (*models.Coach, error)
	// SubmitRating upserts the caller's rating of the coach and returns the
	// recomputed aggregate. One rating per (coach, user); a repeat submission
	// overwrites the prior entry.
	SubmitRating(coachID, userID string, rating int, comment string) (*models.RatingSummary, error)
	ListReviews(coachID string) ([]models.Review, error)
}

// --- ratingService Implementation ---
type ratingService struct {
	coachRepo repositories.CoachRepository
	tx        repositories.TxStarter
}

// NewRatingService creates a new instance of RatingService.
func NewRatingService(cr repositories.CoachRepository, tx repositories.TxStarter) RatingService {
	return &ratingService{
		coachRepo: cr,
		tx:        tx,
	}
}

func (s *ratingService) GetCoaches() ([]models.Coach, error) {
	coaches, err := s.coachRepo.GetCoaches()
	if err != nil {
		return nil, fmt.Errorf("failed to get coaches: %w", err)
	}
	return coaches, nil
}

func (s *ratingService) GetCoachByID(id string) (*models.Coach, error) {
	coach, err := s.coachRepo.GetCoachByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCoachNotFound
		}
		return nil, fmt.Errorf("failed to get coach: %w", err)
	}
	return coach, nil
}

// aggregateRatings derives the count and arithmetic mean from the mapping.
func aggregateRatings(ratings map[string]models.RatingEntry) (int, float64) {
	total := len(ratings)
	if total == 0 {
		return 0, 0
	}
	sum := 0
	for _, entry := range ratings {
		sum += entry.Rating
	}
	return total, float64(sum) / float64(total)
}

// SubmitRating performs the read-modify-write of the coach's ratings mapping
// inside a transaction holding the coach row lock, so concurrent submissions
// for the same coach serialize instead of losing updates.
func (s *ratingService) SubmitRating(coachID, userID string, rating int, comment string) (*models.RatingSummary, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrRatingOutOfRange
	}

	tx, err := s.tx.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin rating transaction: %w", err)
	}
	defer tx.Rollback()

	ratings, err := s.coachRepo.GetRatingsForUpdate(tx, coachID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %s", ErrCoachNotFound, coachID)
		}
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}

	ratings[userID] = models.RatingEntry{
		Rating:    rating,
		Comment:   comment,
		Timestamp: time.Now().UTC(),
	}
	total, average := aggregateRatings(ratings)

	if err := s.coachRepo.UpdateRatings(tx, coachID, ratings, total, average); err != nil {
		return nil, fmt.Errorf("failed to persist ratings: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rating transaction: %w", err)
	}

	return &models.RatingSummary{TotalRatings: total, AverageRating: average}, nil
}

// ListReviews returns one entry per rating with reviewer identity replaced by
// a positional pseudonym. Ordering is by submission timestamp (uid as a
// deterministic tiebreak) so numbering stays stable across calls.
func (s *ratingService) ListReviews(coachID string) ([]models.Review, error) {
	coach, err := s.GetCoachByID(coachID)
	if err != nil {
		return nil, err
	}

	type keyed struct {
		uid   string
		entry models.RatingEntry
	}
	entries := make([]keyed, 0, len(coach.AllRatings))
	for uid, entry := range coach.AllRatings {
		entries = append(entries, keyed{uid: uid, entry: entry})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].entry.Timestamp.Equal(entries[j].entry.Timestamp) {
			return entries[i].uid < entries[j].uid
		}
		return entries[i].entry.Timestamp.Before(entries[j].entry.Timestamp)
	})

	reviews := make([]models.Review, 0, len(entries))
	for i, e := range entries {
		reviews = append(reviews, models.Review{
			Reviewer:  fmt.Sprintf("User %d", i+1),
			Rating:    e.entry.Rating,
			Comment:   e.entry.Comment,
			Timestamp: e.entry.Timestamp,
		})
	}
	return reviews, nil
}
