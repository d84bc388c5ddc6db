package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-user-auth/internal/logger"
	"github.com/sbilibin2017/gw-user-auth/internal/messaging"
	"github.com/sbilibin2017/gw-user-auth/internal/models"
)

// Error variables
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("too many failed login attempts")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// CredentialReader defines the read operations needed for authentication.
type CredentialReader interface {
	GetByEmail(ctx context.Context, email string) (*models.UserDB, error)
}

// CredentialWriter defines the credential-state write operations.
type CredentialWriter interface {
	UpdateLoginFailure(ctx context.Context, userID uuid.UUID, attempts int, lastFailed time.Time) error
	UpdateLoginSuccess(ctx context.Context, userID uuid.UUID, lastLogin time.Time) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, changedAt *time.Time) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, digest string) bool
}

// TokenIssuer issues and verifies signed tokens.
type TokenIssuer interface {
	Generate(ctx context.Context, email string, userID uuid.UUID, role string) (string, error)
	GenerateReset(ctx context.Context, email string) (string, error)
	GetResetSubject(ctx context.Context, tokenString string) (string, error)
}

// EmailQueue hands messages off for asynchronous delivery.
type EmailQueue interface {
	Publish(ctx context.Context, to, token, messageType string) (string, error)
}

// AuthService handles login and the password-reset flow.
type AuthService struct {
	reader  CredentialReader
	writer  CredentialWriter
	hasher  PasswordHasher
	jwt     TokenIssuer
	queue   EmailQueue
	lockout LockoutPolicy
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(
	reader CredentialReader,
	writer CredentialWriter,
	hasher PasswordHasher,
	jwt TokenIssuer,
	queue EmailQueue,
	lockout LockoutPolicy,
) *AuthService {
	return &AuthService{
		reader:  reader,
		writer:  writer,
		hasher:  hasher,
		jwt:     jwt,
		queue:   queue,
		lockout: lockout,
	}
}

// Login authenticates a user and returns an access token.
//
// An unknown email and a wrong password both yield ErrInvalidCredentials,
// so the endpoint never discloses whether an account exists. A locked
// account fails before the password is ever evaluated.
func (svc *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(email)

	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", err
	}
	if user == nil {
		logger.Log.Infow("login for unknown email", "email", email)
		return "", ErrInvalidCredentials
	}

	attempts := user.FailedLoginAttempts
	switch svc.lockout.Evaluate(attempts, user.LastFailedLogin, time.Now()) {
	case LockoutDeny:
		logger.Log.Infow("account locked", "email", email)
		return "", ErrAccountLocked
	case LockoutAllowExpired:
		// Window elapsed: clear the counter in memory; it is persisted
		// below with the outcome of this attempt.
		attempts = 0
	}

	if !svc.hasher.Compare(password, user.PasswordHash) {
		if err := svc.writer.UpdateLoginFailure(ctx, user.UserID, attempts+1, time.Now()); err != nil {
			logger.Log.Errorw("failed to persist login failure", "err", err)
			return "", err
		}
		logger.Log.Infow("invalid password", "email", email, "failed_attempts", attempts+1)
		return "", ErrInvalidCredentials
	}

	if err := svc.writer.UpdateLoginSuccess(ctx, user.UserID, time.Now()); err != nil {
		logger.Log.Errorw("failed to persist login success", "err", err)
		return "", err
	}

	token, err := svc.jwt.Generate(ctx, user.Email, user.UserID, user.Role)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "err", err)
		return "", err
	}

	logger.Log.Infow("user logged in", "email", email)
	return token, nil
}

// ForgotPassword issues a reset-scoped token and hands it to the email
// queue for asynchronous delivery. It returns the correlation id assigned
// by the queue. Unlike Login, an unknown email is reported as
// ErrUserNotFound.
func (svc *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(email)

	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	token, err := svc.jwt.GenerateReset(ctx, user.Email)
	if err != nil {
		logger.Log.Errorw("failed to generate reset token", "err", err)
		return "", err
	}

	correlationID, err := svc.queue.Publish(ctx, user.Email, token, messaging.MessageTypeResetPassword)
	if err != nil {
		logger.Log.Errorw("failed to publish reset email", "err", err)
		return "", err
	}

	logger.Log.Infow("reset email queued", "email", email, "correlation_id", correlationID)
	return correlationID, nil
}

// ResetPassword verifies a reset-scoped token and overwrites the
// password hash of the account named by its subject. The lockout counters
// are not consulted: this is an independent credential-overwrite channel.
func (svc *AuthService) ResetPassword(ctx context.Context, tokenString, newPassword string) error {
	email, err := svc.jwt.GetResetSubject(ctx, tokenString)
	if err != nil {
		logger.Log.Infow("reset token rejected", "err", err)
		return ErrInvalidResetToken
	}

	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return err
	}
	if user == nil {
		// Token was valid but the account vanished in the meantime.
		return ErrUserNotFound
	}

	hash, err := svc.hasher.Hash(newPassword)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return err
	}

	// The reset path does not stamp last_password_change; only the
	// authenticated change-password path does.
	if err := svc.writer.UpdatePassword(ctx, user.UserID, hash, nil); err != nil {
		logger.Log.Errorw("failed to update password", "err", err)
		return err
	}

	logger.Log.Infow("password reset", "email", email)
	return nil
}
