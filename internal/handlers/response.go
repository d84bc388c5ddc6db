package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-user-auth/internal/models"
)

// ErrorResponse represents an error response body
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	// default: Internal server error
	Error string `json:"error"`
}

// MessageResponse represents an acknowledgment response body
// swagger:model MessageResponse
type MessageResponse struct {
	// Human-readable acknowledgment
	// default: OK
	Message string `json:"message"`
}

// UserResponse represents the public view of a user profile
// swagger:model UserResponse
type UserResponse struct {
	// User identifier
	UserID uuid.UUID `json:"user_id"`
	// Given name
	FirstName string `json:"first_name"`
	// Family name
	LastName string `json:"last_name"`
	// National identity number
	IdentityNumber string `json:"identity_number"`
	// Date of birth (YYYY-MM-DD)
	BirthDate string `json:"birth_date"`
	// Email address
	Email string `json:"email"`
	// Role
	Role string `json:"role"`
}

// birthDateLayout is the wire format for dates of birth.
const birthDateLayout = "2006-01-02"

func toUserResponse(user *models.UserDB) UserResponse {
	return UserResponse{
		UserID:         user.UserID,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		IdentityNumber: user.IdentityNumber,
		BirthDate:      user.BirthDate.Format(birthDateLayout),
		Email:          user.Email,
		Role:           user.Role,
	}
}

func parseBirthDate(value string) (time.Time, error) {
	return time.Parse(birthDateLayout, value)
}
