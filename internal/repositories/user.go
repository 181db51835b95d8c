package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/auth-api/internal/logger"
	"github.com/sbilibin2017/auth-api/internal/models"
)

// UserReadRepository provides read access to the users table.
type UserReadRepository struct {
	db *sqlx.DB
}

// NewUserReadRepository creates a new read repository instance.
func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetByUsername fetches a single user by username.
// Returns ErrUserNotFound when no row matches.
func (r *UserReadRepository) GetByUsername(ctx context.Context, username string) (*models.UserDB, error) {
	const query = `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = $1
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, username)

	// Log with query in single line
	logger.Log.Infow("user get by username",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username},
		"error", err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

// GetByID fetches a single user by primary key.
// Returns ErrUserNotFound when no row matches.
func (r *UserReadRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UserDB, error) {
	const query = `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE id = $1
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, id)

	logger.Log.Infow("user get by id",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{id},
		"error", err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

// ListAll returns all users in creation order.
func (r *UserReadRepository) ListAll(ctx context.Context) ([]models.UserDB, error) {
	const query = `
		SELECT id, username, password_hash, created_at
		FROM users
		ORDER BY created_at
	`

	var users []models.UserDB
	err := r.db.SelectContext(ctx, &users, query)

	logger.Log.Infow("user list all",
		"query", strings.Join(strings.Fields(query), " "),
		"count", len(users),
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	return users, nil
}

// UserWriteRepository provides write access to the users table.
type UserWriteRepository struct {
	db *sqlx.DB
}

// NewUserWriteRepository creates a new write repository instance.
func NewUserWriteRepository(db *sqlx.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

// Save inserts a new user and returns the created row.
// Returns ErrUsernameTaken when the username is already present.
func (r *UserWriteRepository) Save(ctx context.Context, username, passwordHash string) (*models.UserDB, error) {
	const query = `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, password_hash, created_at
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, username, passwordHash)

	logger.Log.Infow("user save",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username},
		"error", err,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return &user, nil
}

// Update renames a user and replaces their password hash.
// Returns ErrUserNotFound when the target does not exist and
// ErrUsernameTaken when the new username is already in use.
func (r *UserWriteRepository) Update(ctx context.Context, username, newUsername, newPasswordHash string) (*models.UserDB, error) {
	const query = `
		UPDATE users
		SET username = $2, password_hash = $3
		WHERE username = $1
		RETURNING id, username, password_hash, created_at
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, username, newUsername, newPasswordHash)

	logger.Log.Infow("user update",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username, newUsername},
		"error", err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return &user, nil
}

// Delete removes a user by username.
// Returns ErrUserNotFound when no row was deleted.
func (r *UserWriteRepository) Delete(ctx context.Context, username string) error {
	const query = `
		DELETE FROM users
		WHERE username = $1
	`

	res, err := r.db.ExecContext(ctx, query, username)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow("user delete",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username},
		"result", rowsAffected,
		"error", err,
	)

	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}
