package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-user-auth/internal/logger"
	"github.com/sbilibin2017/gw-user-auth/internal/models"
	"github.com/sbilibin2017/gw-user-auth/internal/repositories"
)

var (
	ErrEmailAlreadyExists          = errors.New("email already exists")
	ErrIdentityNumberAlreadyExists = errors.New("identity number already exists")
	ErrPasswordMismatch            = errors.New("current password is incorrect")
)

// UserReader defines read-only operations for user profiles.
type UserReader interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error)
	List(ctx context.Context, offset, limit int) ([]models.UserDB, error)
}

// UserWriter defines write operations for user profiles.
type UserWriter interface {
	Save(ctx context.Context, user *models.UserDB) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, upd models.UserUpdate) (bool, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, changedAt *time.Time) error
	Delete(ctx context.Context, userID uuid.UUID) (bool, error)
}

// UserCache caches user profiles by id.
type UserCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserDB, error)
	Set(ctx context.Context, user *models.UserDB) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// RegisterInput carries the fields needed to create a user.
type RegisterInput struct {
	FirstName      string
	LastName       string
	IdentityNumber string
	BirthDate      time.Time
	Email          string
	Role           string
	Password       string
}

// UserService handles registration and profile management.
type UserService struct {
	reader UserReader
	writer UserWriter
	cache  UserCache
	hasher PasswordHasher
}

// NewUserService creates a new UserService instance.
func NewUserService(reader UserReader, writer UserWriter, cache UserCache, hasher PasswordHasher) *UserService {
	return &UserService{
		reader: reader,
		writer: writer,
		cache:  cache,
		hasher: hasher,
	}
}

// mapDuplicateErr translates repository duplicate errors into service errors.
func mapDuplicateErr(err error) error {
	switch {
	case errors.Is(err, repositories.ErrDuplicateEmail):
		return ErrEmailAlreadyExists
	case errors.Is(err, repositories.ErrDuplicateIdentityNumber):
		return ErrIdentityNumberAlreadyExists
	}
	return err
}

// Register creates a new user with a hashed password.
func (svc *UserService) Register(ctx context.Context, in RegisterInput) (*models.UserDB, error) {
	hash, err := svc.hasher.Hash(in.Password)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	user := &models.UserDB{
		UserID:         uuid.New(),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		IdentityNumber: in.IdentityNumber,
		BirthDate:      in.BirthDate,
		Email:          strings.ToLower(in.Email),
		Role:           in.Role,
		PasswordHash:   hash,
	}

	if err := svc.writer.Save(ctx, user); err != nil {
		logger.Log.Errorw("failed to save user", "email", user.Email, "err", err)
		return nil, mapDuplicateErr(err)
	}

	logger.Log.Infow("user registered", "user_id", user.UserID, "email", user.Email)
	return user, nil
}

// Get returns a user profile, serving from cache when possible.
func (svc *UserService) Get(ctx context.Context, userID uuid.UUID) (*models.UserDB, error) {
	if svc.cache != nil {
		cached, err := svc.cache.Get(ctx, userID)
		if err != nil {
			logger.Log.Warnw("cache read failed", "user_id", userID, "err", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	user, err := svc.reader.GetByID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to get user", "user_id", userID, "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if svc.cache != nil {
		if err := svc.cache.Set(ctx, user); err != nil {
			logger.Log.Warnw("cache write failed", "user_id", userID, "err", err)
		}
	}

	return user, nil
}

// List returns user profiles with offset/limit paging.
func (svc *UserService) List(ctx context.Context, offset, limit int) ([]models.UserDB, error) {
	users, err := svc.reader.List(ctx, offset, limit)
	if err != nil {
		logger.Log.Errorw("failed to list users", "err", err)
		return nil, err
	}
	return users, nil
}

// Update applies a partial profile update and returns the updated record.
func (svc *UserService) Update(ctx context.Context, userID uuid.UUID, upd models.UserUpdate) (*models.UserDB, error) {
	if upd.Email != nil {
		normalized := strings.ToLower(*upd.Email)
		upd.Email = &normalized
	}

	updated, err := svc.writer.UpdateProfile(ctx, userID, upd)
	if err != nil {
		logger.Log.Errorw("failed to update user", "user_id", userID, "err", err)
		return nil, mapDuplicateErr(err)
	}
	if !updated {
		return nil, ErrUserNotFound
	}

	svc.invalidate(ctx, userID)

	user, err := svc.reader.GetByID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to get user after update", "user_id", userID, "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Delete removes a user account. There is no soft delete.
func (svc *UserService) Delete(ctx context.Context, userID uuid.UUID) error {
	deleted, err := svc.writer.Delete(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to delete user", "user_id", userID, "err", err)
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}

	svc.invalidate(ctx, userID)

	logger.Log.Infow("user deleted", "user_id", userID)
	return nil
}

// ChangePassword verifies the current password and overwrites the hash,
// stamping last_password_change.
func (svc *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := svc.reader.GetByID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to get user", "user_id", userID, "err", err)
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if !svc.hasher.Compare(currentPassword, user.PasswordHash) {
		return ErrPasswordMismatch
	}

	hash, err := svc.hasher.Hash(newPassword)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return err
	}

	now := time.Now()
	if err := svc.writer.UpdatePassword(ctx, userID, hash, &now); err != nil {
		logger.Log.Errorw("failed to update password", "user_id", userID, "err", err)
		return err
	}

	svc.invalidate(ctx, userID)

	logger.Log.Infow("password changed", "user_id", userID)
	return nil
}

func (svc *UserService) invalidate(ctx context.Context, userID uuid.UUID) {
	if svc.cache == nil {
		return
	}
	if err := svc.cache.Delete(ctx, userID); err != nil {
		logger.Log.Warnw("cache invalidation failed", "user_id", userID, "err", err)
	}
}
