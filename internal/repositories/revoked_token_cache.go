package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/auth-api/internal/logger"
)

// RevokedTokenCacheRepository keeps known-revoked jti values in Redis so
// revocation checks on the hot path avoid a database round trip. Entries
// expire after the configured TTL; the database remains the source of truth.
type RevokedTokenCacheRepository struct {
	client *redis.Client
	exp    time.Duration
}

// NewRevokedTokenCacheRepository creates a new cache repository with the given TTL.
func NewRevokedTokenCacheRepository(client *redis.Client, expiration time.Duration) *RevokedTokenCacheRepository {
	return &RevokedTokenCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func revokedTokenKey(jti string) string {
	return fmt.Sprintf("revoked_token:%s", jti)
}

// Exists reports whether the jti is cached as revoked. A missing key
// means unknown, not valid; callers fall back to the database.
func (r *RevokedTokenCacheRepository) Exists(ctx context.Context, jti string) (bool, error) {
	key := revokedTokenKey(jti)

	_, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		logger.Log.Infow("revoked token cache get",
			"key", key,
			"error", err,
		)
		return false, err
	}

	logger.Log.Infow("revoked token cache get",
		"key", key,
		"result", true,
		"error", nil,
	)

	return true, nil
}

// Add caches the jti as revoked with the configured expiration.
func (r *RevokedTokenCacheRepository) Add(ctx context.Context, jti string) error {
	key := revokedTokenKey(jti)
	err := r.client.Set(ctx, key, "1", r.exp).Err()

	logger.Log.Infow("revoked token cache set",
		"key", key,
		"result", "ok",
		"error", err,
	)

	return err
}
