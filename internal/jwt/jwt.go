package jwt

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// scopePasswordReset marks a token as valid for password reset only.
// Access tokens carry no scope claim; the scope check is what keeps an
// access token from being replayed against the reset endpoint.
const scopePasswordReset = "password_reset"

// Claims holds the identity claims of a parsed access token.
type Claims struct {
	Subject string    // User email
	UserID  uuid.UUID // User identifier
	Role    string    // User role
}

// JWT issues and validates HS256-signed access and password-reset tokens.
type JWT struct {
	secretKey string
	exp       time.Duration // Access token TTL
	resetExp  time.Duration // Reset token TTL
}

// Option configures a JWT instance.
type Option func(*JWT)

// WithSecretKey sets the signing secret.
func WithSecretKey(secretKey string) Option {
	return func(j *JWT) {
		j.secretKey = secretKey
	}
}

// WithExpiration sets the access token TTL.
func WithExpiration(exp time.Duration) Option {
	return func(j *JWT) {
		j.exp = exp
	}
}

// WithResetExpiration sets the password-reset token TTL.
func WithResetExpiration(exp time.Duration) Option {
	return func(j *JWT) {
		j.resetExp = exp
	}
}

// New creates a JWT instance.
func New(opts ...Option) *JWT {
	j := &JWT{
		exp:      time.Hour,
		resetExp: 15 * time.Minute,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Generate creates an access token for the given user.
func (j *JWT) Generate(ctx context.Context, email string, userID uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":       email,
		"user_id":   userID.String(),
		"user_role": role,
		"iat":       now.Unix(),
		"exp":       now.Add(j.exp).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// GenerateReset creates a password-reset token for the given email.
func (j *JWT) GenerateReset(ctx context.Context, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   email,
		"scope": scopePasswordReset,
		"iat":   now.Unix(),
		"exp":   now.Add(j.resetExp).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// parse validates the signature and expiry and returns the raw claims.
func (j *JWT) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Validate checks that the token is well formed, signed and not expired.
func (j *JWT) Validate(ctx context.Context, tokenString string) error {
	_, err := j.parse(tokenString)
	return err
}

// GetClaims parses the token string and returns its identity claims.
func (j *JWT) GetClaims(ctx context.Context, tokenString string) (*Claims, error) {
	raw, err := j.parse(tokenString)
	if err != nil {
		return nil, err
	}

	sub, ok := raw["sub"].(string)
	if !ok {
		return nil, errors.New("sub not found in token")
	}
	userIDStr, ok := raw["user_id"].(string)
	if !ok {
		return nil, errors.New("user_id not found in token")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, errors.New("invalid user_id format")
	}
	role, _ := raw["user_role"].(string)

	return &Claims{
		Subject: sub,
		UserID:  userID,
		Role:    role,
	}, nil
}

// GetResetSubject validates a password-reset token and returns its subject
// email. Tokens whose scope claim is missing or not "password_reset" are
// rejected even when the signature and expiry are valid.
func (j *JWT) GetResetSubject(ctx context.Context, tokenString string) (string, error) {
	raw, err := j.parse(tokenString)
	if err != nil {
		return "", err
	}

	scope, ok := raw["scope"].(string)
	if !ok || scope != scopePasswordReset {
		return "", errors.New("token is not scoped for password reset")
	}

	sub, ok := raw["sub"].(string)
	if !ok {
		return "", errors.New("sub not found in token")
	}
	return sub, nil
}

// GetTokenFromRequest extracts the token string from the Authorization header.
func (j *JWT) GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("invalid authorization header format")
	}

	return parts[1], nil
}
