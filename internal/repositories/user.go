package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-user-auth/internal/logger"
	"github.com/sbilibin2017/gw-user-auth/internal/models"
)

// Errors surfaced when a unique constraint is violated. The colliding
// field is distinguishable by the error value.
var (
	ErrDuplicateEmail          = errors.New("email already exists")
	ErrDuplicateIdentityNumber = errors.New("identity number already exists")
)

// mapUniqueViolation translates a Postgres 23505 error into the
// field-specific duplicate error. Other errors pass through unchanged.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "identity_number"):
		return ErrDuplicateIdentityNumber
	case strings.Contains(pgErr.ConstraintName, "email"):
		return ErrDuplicateEmail
	}
	return err
}

const userColumns = `user_id, first_name, last_name, identity_number, birth_date, email, role,
	password_hash, failed_login_attempts, last_failed_login, last_login, last_password_change,
	created_at, updated_at`

// UserReadRepository handles user read operations.
type UserReadRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewUserReadRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *UserReadRepository {
	return &UserReadRepository{db: db, txGetter: txGetter}
}

func (r *UserReadRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

func (r *UserReadRepository) getOne(ctx context.Context, query string, arg any) (*models.UserDB, error) {
	var user models.UserDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &user, query, arg)

	// Log with query in single line
	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{arg},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID returns the user with the given id, or nil if none exists.
func (r *UserReadRepository) GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	return r.getOne(ctx, query, userID)
}

// GetByEmail returns the user with the given email, or nil if none exists.
// The lookup is case-insensitive: emails are stored lowercase and the
// argument is lowercased here.
func (r *UserReadRepository) GetByEmail(ctx context.Context, email string) (*models.UserDB, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, strings.ToLower(email))
}

// GetByIdentityNumber returns the user with the given identity number, or nil if none exists.
func (r *UserReadRepository) GetByIdentityNumber(ctx context.Context, identityNumber string) (*models.UserDB, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE identity_number = $1`
	return r.getOne(ctx, query, identityNumber)
}

// List returns users ordered by creation time, with offset/limit paging.
func (r *UserReadRepository) List(ctx context.Context, offset, limit int) ([]models.UserDB, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, user_id OFFSET $1 LIMIT $2`

	users := make([]models.UserDB, 0)
	err := sqlx.SelectContext(ctx, r.executor(ctx), &users, query, offset, limit)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{offset, limit},
		"result", len(users),
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return users, nil
}

// UserWriteRepository handles user write operations.
type UserWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewUserWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *UserWriteRepository {
	return &UserWriteRepository{db: db, txGetter: txGetter}
}

func (r *UserWriteRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// Save inserts a new user record.
func (r *UserWriteRepository) Save(ctx context.Context, user *models.UserDB) error {
	query := `
		INSERT INTO users (user_id, first_name, last_name, identity_number, birth_date,
		                   email, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	args := []any{
		user.UserID, user.FirstName, user.LastName, user.IdentityNumber,
		user.BirthDate, user.Email, user.Role, user.PasswordHash,
	}

	res, err := r.executor(ctx).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{user.UserID, user.Email},
		"result", rowsAffected,
		"error", err,
	)

	return mapUniqueViolation(err)
}

// UpdateProfile applies a partial profile update. It reports whether a
// record was updated.
func (r *UserWriteRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, upd models.UserUpdate) (bool, error) {
	query := `
		UPDATE users
		SET first_name      = COALESCE($2, first_name),
		    last_name       = COALESCE($3, last_name),
		    identity_number = COALESCE($4, identity_number),
		    birth_date      = COALESCE($5, birth_date),
		    email           = COALESCE($6, email),
		    role            = COALESCE($7, role),
		    updated_at      = NOW()
		WHERE user_id = $1
	`
	args := []any{userID, upd.FirstName, upd.LastName, upd.IdentityNumber, upd.BirthDate, upd.Email, upd.Role}

	res, err := r.executor(ctx).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"result", rowsAffected,
		"error", err,
	)

	if err != nil {
		return false, mapUniqueViolation(err)
	}
	return rowsAffected > 0, nil
}

// UpdateLoginFailure persists the failed-attempt counter together with the
// failure timestamp in a single statement, so one never lands without the
// other.
func (r *UserWriteRepository) UpdateLoginFailure(ctx context.Context, userID uuid.UUID, attempts int, lastFailed time.Time) error {
	query := `
		UPDATE users
		SET failed_login_attempts = $2,
		    last_failed_login     = $3,
		    updated_at            = NOW()
		WHERE user_id = $1
	`
	args := []any{userID, attempts, lastFailed}

	res, err := r.executor(ctx).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID, attempts, lastFailed},
		"result", rowsAffected,
		"error", err,
	)

	return err
}

// UpdateLoginSuccess clears the failure counters and stamps last_login.
func (r *UserWriteRepository) UpdateLoginSuccess(ctx context.Context, userID uuid.UUID, lastLogin time.Time) error {
	query := `
		UPDATE users
		SET failed_login_attempts = 0,
		    last_failed_login     = NULL,
		    last_login            = $2,
		    updated_at            = NOW()
		WHERE user_id = $1
	`
	args := []any{userID, lastLogin}

	res, err := r.executor(ctx).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID, lastLogin},
		"result", rowsAffected,
		"error", err,
	)

	return err
}

// UpdatePassword overwrites the password hash. changedAt is stamped into
// last_password_change when non-nil; the reset-token path passes nil and
// leaves the previous value in place.
func (r *UserWriteRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, changedAt *time.Time) error {
	query := `
		UPDATE users
		SET password_hash        = $2,
		    last_password_change = COALESCE($3, last_password_change),
		    updated_at           = NOW()
		WHERE user_id = $1
	`
	args := []any{userID, passwordHash, changedAt}

	res, err := r.executor(ctx).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"result", rowsAffected,
		"error", err,
	)

	return err
}

// Delete removes a user record. It reports whether a record was deleted.
func (r *UserWriteRepository) Delete(ctx context.Context, userID uuid.UUID) (bool, error) {
	query := `DELETE FROM users WHERE user_id = $1`

	res, err := r.executor(ctx).ExecContext(ctx, query, userID)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"result", rowsAffected,
		"error", err,
	)

	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}
