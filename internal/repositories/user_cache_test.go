package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-user-auth/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestUserCacheRepository(t *testing.T) {
	ctx := context.Background()

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

	repo := NewUserCacheRepository(rdb, 2*time.Second)

	user := &models.UserDB{
		UserID:    uuid.New(),
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john@example.com",
		Role:      models.RoleStudent,
		BirthDate: time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("Set and Get profile", func(t *testing.T) {
		err := repo.Set(ctx, user)
		assert.NoError(t, err)

		got, err := repo.Get(ctx, user.UserID)
		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.Equal(t, user.UserID, got.UserID)
		assert.Equal(t, user.Email, got.Email)
	})

	t.Run("Cache miss returns nil without error", func(t *testing.T) {
		got, err := repo.Get(ctx, uuid.New())
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Delete evicts the profile", func(t *testing.T) {
		err := repo.Set(ctx, user)
		assert.NoError(t, err)

		err = repo.Delete(ctx, user.UserID)
		assert.NoError(t, err)

		got, err := repo.Get(ctx, user.UserID)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Cached profile expires", func(t *testing.T) {
		err := repo.Set(ctx, user)
		assert.NoError(t, err)

		// Wait for expiration (2s)
		time.Sleep(3 * time.Second)

		got, err := repo.Get(ctx, user.UserID)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}
