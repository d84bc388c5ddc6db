package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-user-auth/internal/logger"
	"github.com/sbilibin2017/gw-user-auth/internal/models"
)

// UserCacheRepository provides cached user profiles using Redis.
type UserCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached profiles
}

// NewUserCacheRepository creates a new repository instance with optional TTL.
func NewUserCacheRepository(client *redis.Client, expiration time.Duration) *UserCacheRepository {
	return &UserCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func userCacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s", userID)
}

// Get fetches a cached user profile. Returns nil without error on a cache miss.
func (r *UserCacheRepository) Get(ctx context.Context, userID uuid.UUID) (*models.UserDB, error) {
	key := userCacheKey(userID)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		logger.Log.Infow(
			"key", key,
			"error", err,
		)
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var user models.UserDB
	if err := json.Unmarshal([]byte(val), &user); err != nil {
		logger.Log.Infow(
			"key", key,
			"value", val,
			"error", err,
		)
		return nil, err
	}

	logger.Log.Infow(
		"key", key,
		"result", user.UserID,
		"error", nil,
	)

	return &user, nil
}

// Set caches a user profile with the configured expiration.
func (r *UserCacheRepository) Set(ctx context.Context, user *models.UserDB) error {
	key := userCacheKey(user.UserID)

	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	err = r.client.Set(ctx, key, data, r.exp).Err()

	logger.Log.Infow(
		"key", key,
		"result", "ok",
		"error", err,
	)

	return err
}

// Delete evicts a user profile from the cache.
func (r *UserCacheRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	key := userCacheKey(userID)
	err := r.client.Del(ctx, key).Err()

	logger.Log.Infow(
		"key", key,
		"result", "ok",
		"error", err,
	)

	return err
}
