package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/auth-api/internal/logger"
)

// RevokedTokenWriteRepository records revoked token identifiers in the
// token_denylist table.
type RevokedTokenWriteRepository struct {
	db *sqlx.DB
}

// NewRevokedTokenWriteRepository creates a new write repository instance.
func NewRevokedTokenWriteRepository(db *sqlx.DB) *RevokedTokenWriteRepository {
	return &RevokedTokenWriteRepository{db: db}
}

// Save inserts a jti into the denylist.
// Returns ErrTokenAlreadyRevoked when the jti is already present.
func (r *RevokedTokenWriteRepository) Save(ctx context.Context, jti string) error {
	const query = `
		INSERT INTO token_denylist (jti)
		VALUES ($1)
	`

	_, err := r.db.ExecContext(ctx, query, jti)

	logger.Log.Infow("revoked token save",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{jti},
		"error", err,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrTokenAlreadyRevoked
		}
		return err
	}

	return nil
}

// DeleteCreatedBefore removes denylist rows older than the cutoff and
// returns the number of rows removed. Rows that old belong to tokens
// that can no longer verify, so they are inert.
func (r *RevokedTokenWriteRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `
		DELETE FROM token_denylist
		WHERE created_at < $1
	`

	res, err := r.db.ExecContext(ctx, query, cutoff)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow("revoked token prune",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{cutoff},
		"result", rowsAffected,
		"error", err,
	)

	if err != nil {
		return 0, err
	}

	return rowsAffected, nil
}

// RevokedTokenReadRepository answers revocation-check queries against the
// token_denylist table.
type RevokedTokenReadRepository struct {
	db *sqlx.DB
}

// NewRevokedTokenReadRepository creates a new read repository instance.
func NewRevokedTokenReadRepository(db *sqlx.DB) *RevokedTokenReadRepository {
	return &RevokedTokenReadRepository{db: db}
}

// Exists reports whether the jti is present in the denylist.
func (r *RevokedTokenReadRepository) Exists(ctx context.Context, jti string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM token_denylist WHERE jti = $1
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, jti)

	logger.Log.Infow("revoked token exists",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{jti},
		"result", exists,
		"error", err,
	)

	if err != nil {
		return false, err
	}

	return exists, nil
}
