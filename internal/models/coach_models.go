package models

import "time"

// RatingEntry is one user's rating of a coach, keyed by user uid in
// Coach.AllRatings. A repeat submission from the same user overwrites it.
type RatingEntry struct {
	Rating    int       `json:"rating"` // 1..5
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}

// Coach represents a bookable service provider.
type Coach struct {
	ID            string                 `json:"id" db:"id"`
	Name          string                 `json:"name" db:"name" binding:"required"`
	Title         *string                `json:"title,omitempty" db:"title"`
	Description   *string                `json:"description,omitempty" db:"description"`
	HourlyRate    *float64               `json:"hourly_rate,omitempty" db:"hourly_rate"`
	AllRatings    map[string]RatingEntry `json:"-"` // reviewer uid -> entry; not exposed raw
	TotalRatings  int                    `json:"total_ratings" db:"total_ratings"`
	AverageRating float64                `json:"average_rating" db:"average_rating"`
	CreatedAt     time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at" db:"updated_at"`
}

// Review is a public view of one rating entry. Reviewer identity is replaced
// with a positional pseudonym ("User 1", "User 2", ...) ordered by timestamp.
type Review struct {
	Reviewer  string    `json:"reviewer"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// RatingSummary is the derived aggregate returned after a rating submission.
type RatingSummary struct {
	TotalRatings  int     `json:"total_ratings"`
	AverageRating float64 `json:"average_rating"`
}
