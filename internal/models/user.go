package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleAdmin   = "ADMIN"
	RoleTeacher = "TEACHER"
	RoleStudent = "STUDENT"
	RoleGuest   = "GUEST"
)

// UserDB represents a user record in the database.
type UserDB struct {
	UserID         uuid.UUID `json:"user_id" db:"user_id"`                 // Primary key
	FirstName      string    `json:"first_name" db:"first_name"`           // Given name
	LastName       string    `json:"last_name" db:"last_name"`             // Family name
	IdentityNumber string    `json:"identity_number" db:"identity_number"` // Unique national identity number
	BirthDate      time.Time `json:"birth_date" db:"birth_date"`           // Date of birth
	Email          string    `json:"email" db:"email"`                     // Unique email, stored lowercase
	Role           string    `json:"role" db:"role"`                       // User role
	PasswordHash   string    `json:"-" db:"password_hash"`                 // bcrypt hash, never serialized

	FailedLoginAttempts int        `json:"-" db:"failed_login_attempts"` // Consecutive failed logins
	LastFailedLogin     *time.Time `json:"-" db:"last_failed_login"`     // Timestamp of the most recent failure
	LastLogin           *time.Time `json:"-" db:"last_login"`            // Timestamp of the most recent successful login
	LastPasswordChange  *time.Time `json:"-" db:"last_password_change"`  // Set by the authenticated change-password path

	CreatedAt time.Time `json:"created_at" db:"created_at"` // Creation timestamp
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // Last update timestamp
}

// UserUpdate carries the optional profile fields for a partial update.
// Nil fields are left untouched.
type UserUpdate struct {
	FirstName      *string    `json:"first_name,omitempty"`
	LastName       *string    `json:"last_name,omitempty"`
	IdentityNumber *string    `json:"identity_number,omitempty"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	Email          *string    `json:"email,omitempty"`
	Role           *string    `json:"role,omitempty"`
}
