package repositories

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-user-auth/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupUserPostgresContainer(t *testing.T) (*sqlx.DB, func()) {
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
	require.NoError(t, err)

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
	require.NoError(t, err)

	schema := `
	CREATE TABLE IF NOT EXISTS users (
		user_id UUID PRIMARY KEY,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		identity_number VARCHAR(50) NOT NULL,
		birth_date DATE NOT NULL,
		email VARCHAR(100) NOT NULL,
		role VARCHAR(20) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		failed_login_attempts INT NOT NULL DEFAULT 0,
		last_failed_login TIMESTAMP,
		last_login TIMESTAMP,
		last_password_change TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
		CONSTRAINT users_email_key UNIQUE (email),
		CONSTRAINT users_identity_number_key UNIQUE (identity_number)
	);
	`
	_, err = db.Exec(schema)
	require.NoError(t, err)

	teardown := func() {
		db.Close()
		container.Terminate(context.Background())
	}

	return db, teardown
}

func newTestUser() *models.UserDB {
	return &models.UserDB{
		UserID:         uuid.New(),
		FirstName:      "John",
		LastName:       "Doe",
		IdentityNumber: uuid.NewString()[:8],
		BirthDate:      time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC),
		Email:          fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		Role:           models.RoleStudent,
		PasswordHash:   "hashed",
	}
}

func TestUserWriteRepository_SaveAndDuplicates(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	repo := NewUserWriteRepository(db, nil)
	ctx := context.Background()

	user := newTestUser()
	require.NoError(t, repo.Save(ctx, user))

	t.Run("DuplicateEmail", func(t *testing.T) {
		dup := newTestUser()
		dup.Email = user.Email
		err := repo.Save(ctx, dup)
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("DuplicateIdentityNumber", func(t *testing.T) {
		dup := newTestUser()
		dup.IdentityNumber = user.IdentityNumber
		err := repo.Save(ctx, dup)
		assert.ErrorIs(t, err, ErrDuplicateIdentityNumber)
	})
}

func TestUserReadRepository_Get(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db, nil)
	readRepo := NewUserReadRepository(db, nil)
	ctx := context.Background()

	user := newTestUser()
	require.NoError(t, writeRepo.Save(ctx, user))

	t.Run("ByID", func(t *testing.T) {
		got, err := readRepo.GetByID(ctx, user.UserID)
		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.Equal(t, user.Email, got.Email)
	})

	t.Run("ByEmailCaseInsensitive", func(t *testing.T) {
		got, err := readRepo.GetByEmail(ctx, user.Email)
		assert.NoError(t, err)
		assert.NotNil(t, got)

		// Emails are stored lowercase; the lookup must not care about case
		got, err = readRepo.GetByEmail(ctx, strings.ToUpper(user.Email))
		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.Equal(t, user.UserID, got.UserID)
	})

	t.Run("ByIdentityNumber", func(t *testing.T) {
		got, err := readRepo.GetByIdentityNumber(ctx, user.IdentityNumber)
		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.Equal(t, user.UserID, got.UserID)
	})

	t.Run("NotFound", func(t *testing.T) {
		got, err := readRepo.GetByID(ctx, uuid.New())
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestUserReadRepository_List(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db, nil)
	readRepo := NewUserReadRepository(db, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, writeRepo.Save(ctx, newTestUser()))
	}

	all, err := readRepo.List(ctx, 0, 100)
	assert.NoError(t, err)
	assert.Len(t, all, 5)

	page, err := readRepo.List(ctx, 3, 100)
	assert.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestUserWriteRepository_LoginCounters(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db, nil)
	readRepo := NewUserReadRepository(db, nil)
	ctx := context.Background()

	user := newTestUser()
	require.NoError(t, writeRepo.Save(ctx, user))

	failedAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, writeRepo.UpdateLoginFailure(ctx, user.UserID, 2, failedAt))

	got, err := readRepo.GetByID(ctx, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.FailedLoginAttempts)
	// Counter and timestamp land together
	assert.NotNil(t, got.LastFailedLogin)

	loginAt := time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)
	require.NoError(t, writeRepo.UpdateLoginSuccess(ctx, user.UserID, loginAt))

	got, err = readRepo.GetByID(ctx, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.FailedLoginAttempts)
	assert.Nil(t, got.LastFailedLogin)
	assert.NotNil(t, got.LastLogin)
}

func TestUserWriteRepository_UpdatePassword(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db, nil)
	readRepo := NewUserReadRepository(db, nil)
	ctx := context.Background()

	user := newTestUser()
	require.NoError(t, writeRepo.Save(ctx, user))

	t.Run("NilChangedAtLeavesStampUntouched", func(t *testing.T) {
		require.NoError(t, writeRepo.UpdatePassword(ctx, user.UserID, "newhash", nil))

		got, err := readRepo.GetByID(ctx, user.UserID)
		require.NoError(t, err)
		assert.Equal(t, "newhash", got.PasswordHash)
		assert.Nil(t, got.LastPasswordChange)
	})

	t.Run("ChangedAtIsStamped", func(t *testing.T) {
		changedAt := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
		require.NoError(t, writeRepo.UpdatePassword(ctx, user.UserID, "newerhash", &changedAt))

		got, err := readRepo.GetByID(ctx, user.UserID)
		require.NoError(t, err)
		assert.Equal(t, "newerhash", got.PasswordHash)
		assert.NotNil(t, got.LastPasswordChange)
	})
}

func TestUserWriteRepository_UpdateProfile(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db, nil)
	readRepo := NewUserReadRepository(db, nil)
	ctx := context.Background()

	user := newTestUser()
	require.NoError(t, writeRepo.Save(ctx, user))

	firstName := "Johnny"
	updated, err := writeRepo.UpdateProfile(ctx, user.UserID, models.UserUpdate{FirstName: &firstName})
	assert.NoError(t, err)
	assert.True(t, updated)

	got, err := readRepo.GetByID(ctx, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Johnny", got.FirstName)
	// Omitted fields stay untouched
	assert.Equal(t, user.LastName, got.LastName)
	assert.Equal(t, user.Email, got.Email)

	t.Run("UnknownUser", func(t *testing.T) {
		updated, err := writeRepo.UpdateProfile(ctx, uuid.New(), models.UserUpdate{FirstName: &firstName})
		assert.NoError(t, err)
		assert.False(t, updated)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		other := newTestUser()
		require.NoError(t, writeRepo.Save(ctx, other))

		updated, err := writeRepo.UpdateProfile(ctx, other.UserID, models.UserUpdate{Email: &user.Email})
		assert.ErrorIs(t, err, ErrDuplicateEmail)
		assert.False(t, updated)
	})
}

func TestUserWriteRepository_Delete(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db, nil)
	readRepo := NewUserReadRepository(db, nil)
	ctx := context.Background()

	user := newTestUser()
	require.NoError(t, writeRepo.Save(ctx, user))

	deleted, err := writeRepo.Delete(ctx, user.UserID)
	assert.NoError(t, err)
	assert.True(t, deleted)

	got, err := readRepo.GetByID(ctx, user.UserID)
	assert.NoError(t, err)
	assert.Nil(t, got)

	deleted, err = writeRepo.Delete(ctx, user.UserID)
	assert.NoError(t, err)
	assert.False(t, deleted)
}
