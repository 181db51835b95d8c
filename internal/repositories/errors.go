package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Error variables surfaced by repositories. Services translate these
// into their own domain errors.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrTokenAlreadyRevoked = errors.New("token already revoked")
)

// pgUniqueViolation is the SQLSTATE code for unique constraint violations.
const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
