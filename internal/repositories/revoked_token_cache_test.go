package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRevokedTokenCacheRepository(t *testing.T) {
	ctx := context.Background()

	// Start Redis container
	req := testcontainers.ContainerRequest{
		Image:        "redis:7.0-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}
	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	assert.NoError(t, err)
	defer redisC.Terminate(ctx)

	host, err := redisC.Host(ctx)
	assert.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	assert.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port.Port()),
	})
	defer rdb.Close()

	err = rdb.Ping(ctx).Err()
	assert.NoError(t, err)

	repo := NewRevokedTokenCacheRepository(rdb, 2*time.Second)

	t.Run("Add and Exists", func(t *testing.T) {
		exists, err := repo.Exists(ctx, "jti-1")
		assert.NoError(t, err)
		assert.False(t, exists)

		assert.NoError(t, repo.Add(ctx, "jti-1"))

		exists, err = repo.Exists(ctx, "jti-1")
		assert.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("entries expire", func(t *testing.T) {
		assert.NoError(t, repo.Add(ctx, "jti-2"))

		time.Sleep(3 * time.Second)

		exists, err := repo.Exists(ctx, "jti-2")
		assert.NoError(t, err)
		assert.False(t, exists)
	})
}
