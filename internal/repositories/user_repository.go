package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"coachbook_backend/internal/models"

	"github.com/lib/pq"
)

// UserRepository defines the interface for account-related database operations.
type UserRepository interface {
	CreateUser(executor SQLExecutor, user *models.User, hashedPassword string) error
	FindUserByEmail(email string) (*models.User, string, error) // Returns User, HashedPassword, Error
	FindUserByUID(uid string) (*models.User, error)
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

// CreateUser inserts a new user. The uid must be set by the caller; the role
// is written once here and is read-only afterwards.
func (r *userRepository) CreateUser(executor SQLExecutor, user *models.User, hashedPassword string) error {
	query := `INSERT INTO users (uid, email, password_hash, role, creation_time)
	          VALUES ($1, $2, $3, $4, $5)`

	user.CreationTime = time.Now()
	_, err := executor.Exec(query, user.UID, user.Email, hashedPassword, user.Role, user.CreationTime)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email for credential checks.
// It returns the user model, their hashed password, and an error if any.
func (r *userRepository) FindUserByEmail(email string) (*models.User, string, error) {
	user := &models.User{}
	var hashedPassword string

	query := `SELECT uid, email, password_hash, role, creation_time FROM users WHERE email = $1`
	err := r.db.QueryRow(query, email).Scan(
		&user.UID, &user.Email, &hashedPassword, &user.Role, &user.CreationTime,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("%w: finding user by email %s: %v", ErrDatabaseError, email, err)
	}
	return user, hashedPassword, nil
}

// FindUserByUID retrieves a user by their uid. The password hash is not populated.
func (r *userRepository) FindUserByUID(uid string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT uid, email, role, creation_time FROM users WHERE uid = $1`
	err := r.db.QueryRow(query, uid).Scan(&user.UID, &user.Email, &user.Role, &user.CreationTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by uid %s: %v", ErrDatabaseError, uid, err)
	}
	return user, nil
}
