package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func TestRevokedTokenRepositories(t *testing.T) {
	db, teardown := setupPostgresContainer(t)
	defer teardown()

	writer := NewRevokedTokenWriteRepository(db)
	reader := NewRevokedTokenReadRepository(db)
	ctx := context.Background()

	exists, err := reader.Exists(ctx, "jti-1")
	assert.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, writer.Save(ctx, "jti-1"))

	exists, err = reader.Exists(ctx, "jti-1")
	assert.NoError(t, err)
	assert.True(t, exists)

	// Duplicate jti is a uniqueness violation
	assert.ErrorIs(t, writer.Save(ctx, "jti-1"), ErrTokenAlreadyRevoked)
}

func TestRevokedTokenWriteRepository_DeleteCreatedBefore(t *testing.T) {
	db, teardown := setupPostgresContainer(t)
	defer teardown()

	writer := NewRevokedTokenWriteRepository(db)
	reader := NewRevokedTokenReadRepository(db)
	ctx := context.Background()

	assert.NoError(t, writer.Save(ctx, "jti-old"))
	assert.NoError(t, writer.Save(ctx, "jti-new"))

	// Backdate one row beyond the cutoff
	_, err := db.ExecContext(ctx,
		`UPDATE token_denylist SET created_at = NOW() - INTERVAL '48 hours' WHERE jti = $1`,
		"jti-old")
	assert.NoError(t, err)

	pruned, err := writer.DeleteCreatedBefore(ctx, time.Now().Add(-24*time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	exists, err := reader.Exists(ctx, "jti-old")
	assert.NoError(t, err)
	assert.False(t, exists)

	exists, err = reader.Exists(ctx, "jti-new")
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestRevokedTokenReadRepository_StoreError(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	reader := NewRevokedTokenReadRepository(sqlxDB)

	mock.ExpectQuery("SELECT EXISTS").WillReturnError(assert.AnError)

	_, err = reader.Exists(context.Background(), "jti-1")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokedTokenWriteRepository_StoreError(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	writer := NewRevokedTokenWriteRepository(sqlxDB)

	mock.ExpectExec("INSERT INTO token_denylist").WillReturnError(assert.AnError)

	err = writer.Save(context.Background(), "jti-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTokenAlreadyRevoked)
	assert.NoError(t, mock.ExpectationsWereMet())
}
