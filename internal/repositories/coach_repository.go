package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coachbook_backend/internal/models"
)

// CoachRepository defines the interface for coach-related database operations.
// The rating aggregate lives in a single JSONB column on the coach row, so a
// read-modify-write of the ratings must hold the row lock via
// GetRatingsForUpdate inside a transaction.
type CoachRepository interface {
	GetCoaches() ([]models.Coach, error)
	GetCoachByID(id string) (*models.Coach, error)
	// GetRatingsForUpdate loads the coach's full ratings mapping and locks the
	// row for the duration of the surrounding transaction.
	GetRatingsForUpdate(executor SQLExecutor, coachID string) (map[string]models.RatingEntry, error)
	// UpdateRatings persists the mapping together with its derived aggregate
	// in a single row update.
	UpdateRatings(executor SQLExecutor, coachID string, ratings map[string]models.RatingEntry, total int, average float64) error
}

type coachRepository struct {
	db *sql.DB
}

// NewCoachRepository creates a new instance of CoachRepository.
func NewCoachRepository(db *sql.DB) CoachRepository {
	return &coachRepository{db: db}
}

const selectCoachFields = `
	id, name, title, description, hourly_rate, all_ratings, total_ratings, average_rating, created_at, updated_at
`

func scanCoachRow(row scanner) (*models.Coach, error) {
	var coach models.Coach
	var title, description sql.NullString
	var hourlyRate sql.NullFloat64
	var ratingsJSON []byte

	err := row.Scan(
		&coach.ID, &coach.Name, &title, &description, &hourlyRate,
		&ratingsJSON, &coach.TotalRatings, &coach.AverageRating,
		&coach.CreatedAt, &coach.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning coach: %v", ErrDatabaseError, err)
	}

	if title.Valid {
		coach.Title = &title.String
	}
	if description.Valid {
		coach.Description = &description.String
	}
	if hourlyRate.Valid {
		coach.HourlyRate = &hourlyRate.Float64
	}

	coach.AllRatings = map[string]models.RatingEntry{}
	if len(ratingsJSON) > 0 {
		if err := json.Unmarshal(ratingsJSON, &coach.AllRatings); err != nil {
			return nil, fmt.Errorf("%w: decoding ratings for coach %s: %v", ErrDatabaseError, coach.ID, err)
		}
	}
	return &coach, nil
}

func (r *coachRepository) GetCoaches() ([]models.Coach, error) {
	query := "SELECT " + selectCoachFields + " FROM coaches ORDER BY name"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying coaches: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	coaches := []models.Coach{}
	for rows.Next() {
		coach, scanErr := scanCoachRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		coaches = append(coaches, *coach)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating coach rows: %v", ErrDatabaseError, err)
	}
	return coaches, nil
}

func (r *coachRepository) GetCoachByID(id string) (*models.Coach, error) {
	query := "SELECT " + selectCoachFields + " FROM coaches WHERE id = $1"
	return scanCoachRow(r.db.QueryRow(query, id))
}

func (r *coachRepository) GetRatingsForUpdate(executor SQLExecutor, coachID string) (map[string]models.RatingEntry, error) {
	query := `SELECT all_ratings FROM coaches WHERE id = $1 FOR UPDATE`
	var ratingsJSON []byte
	err := executor.QueryRow(query, coachID).Scan(&ratingsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: locking ratings for coach %s: %v", ErrDatabaseError, coachID, err)
	}

	ratings := map[string]models.RatingEntry{}
	if len(ratingsJSON) > 0 {
		if err := json.Unmarshal(ratingsJSON, &ratings); err != nil {
			return nil, fmt.Errorf("%w: decoding ratings for coach %s: %v", ErrDatabaseError, coachID, err)
		}
	}
	return ratings, nil
}

func (r *coachRepository) UpdateRatings(executor SQLExecutor, coachID string, ratings map[string]models.RatingEntry, total int, average float64) error {
	ratingsJSON, err := json.Marshal(ratings)
	if err != nil {
		return fmt.Errorf("%w: encoding ratings for coach %s: %v", ErrDatabaseError, coachID, err)
	}

	query := `UPDATE coaches
	          SET all_ratings = $1, total_ratings = $2, average_rating = $3, updated_at = $4
	          WHERE id = $5`
	result, err := executor.Exec(query, ratingsJSON, total, average, time.Now(), coachID)
	if err != nil {
		return fmt.Errorf("%w: updating ratings for coach %s: %v", ErrDatabaseError, coachID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
