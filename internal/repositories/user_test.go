package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgresContainer(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "password", "POSTGRES_DB": "testdb", "POSTGRES_USER": "postgres"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp"),
	}

	container, err := tc.GenericContainer(context.Background(), tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	assert.NoError(t, err)

	host, _ := container.Host(context.Background())
	port, _ := container.MappedPort(context.Background(), "5432")

	dsn := fmt.Sprintf("postgres://postgres:password@%s:%d/testdb?sslmode=disable", host, port.Int())

	var db *sqlx.DB
	for i := 0; i < 10; i++ {
		db, err = sqlx.Connect("pgx", dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	assert.NoError(t, err)

	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		username VARCHAR(36) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS token_denylist (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		jti VARCHAR(36) NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);
	`
	_, err = db.Exec(schema)
	assert.NoError(t, err)

	teardown := func() {
		db.Close()
		container.Terminate(context.Background())
	}

	return db, teardown
}

func TestUserWriteRepository_Save(t *testing.T) {
	db, teardown := setupPostgresContainer(t)
	defer teardown()

	repo := NewUserWriteRepository(db)
	ctx := context.Background()

	user, err := repo.Save(ctx, "alice", "hashed-password")
	assert.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "hashed-password", user.PasswordHash)
	assert.NotZero(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	// Duplicate username must fail without touching the existing row
	_, err = repo.Save(ctx, "alice", "other-hash")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	reader := NewUserReadRepository(db)
	existing, err := reader.GetByUsername(ctx, "alice")
	assert.NoError(t, err)
	assert.Equal(t, "hashed-password", existing.PasswordHash)
}

func TestUserReadRepository_GetByUsernameAndID(t *testing.T) {
	db, teardown := setupPostgresContainer(t)
	defer teardown()

	writer := NewUserWriteRepository(db)
	reader := NewUserReadRepository(db)
	ctx := context.Background()

	created, err := writer.Save(ctx, "alice", "hashed-password")
	assert.NoError(t, err)

	byName, err := reader.GetByUsername(ctx, "alice")
	assert.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byID, err := reader.GetByID(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = reader.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserReadRepository_ListAll(t *testing.T) {
	db, teardown := setupPostgresContainer(t)
	defer teardown()

	writer := NewUserWriteRepository(db)
	reader := NewUserReadRepository(db)
	ctx := context.Background()

	users, err := reader.ListAll(ctx)
	assert.NoError(t, err)
	assert.Empty(t, users)

	_, err = writer.Save(ctx, "alice", "hash-a")
	assert.NoError(t, err)
	_, err = writer.Save(ctx, "bob", "hash-b")
	assert.NoError(t, err)

	users, err = reader.ListAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUserWriteRepository_Update(t *testing.T) {
	db, teardown := setupPostgresContainer(t)
	defer teardown()

	writer := NewUserWriteRepository(db)
	ctx := context.Background()

	_, err := writer.Save(ctx, "alice", "hash-a")
	assert.NoError(t, err)
	_, err = writer.Save(ctx, "bob", "hash-b")
	assert.NoError(t, err)

	updated, err := writer.Update(ctx, "alice", "alice2", "new-hash")
	assert.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "new-hash", updated.PasswordHash)

	_, err = writer.Update(ctx, "nobody", "somebody", "hash")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = writer.Update(ctx, "alice2", "bob", "hash")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUserWriteRepository_Delete(t *testing.T) {
	db, teardown := setupPostgresContainer(t)
	defer teardown()

	writer := NewUserWriteRepository(db)
	reader := NewUserReadRepository(db)
	ctx := context.Background()

	_, err := writer.Save(ctx, "alice", "hash-a")
	assert.NoError(t, err)

	assert.NoError(t, writer.Delete(ctx, "alice"))

	_, err = reader.GetByUsername(ctx, "alice")
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, writer.Delete(ctx, "alice"), ErrUserNotFound)
}
