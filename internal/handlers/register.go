package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-user-auth/internal/logger"
	"github.com/sbilibin2017/gw-user-auth/internal/models"
	"github.com/sbilibin2017/gw-user-auth/internal/services"
)

// Registerer defines the interface that the registration service must implement.
type Registerer interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.UserDB, error)
}

// RegisterRequest represents the JSON body for user registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Given name
	// required: true
	// default: John
	FirstName string `json:"first_name"`

	// Family name
	// required: true
	// default: Doe
	LastName string `json:"last_name"`

	// National identity number
	// required: true
	// default: 12345678
	IdentityNumber string `json:"identity_number"`

	// Date of birth (YYYY-MM-DD)
	// required: true
	// default: 1990-01-31
	BirthDate string `json:"birth_date"`

	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`

	// Role
	// required: true
	// default: STUDENT
	Role string `json:"role"`

	// Password
	// required: true
	// default: secret123
	Password string `json:"password"`
}

// NewRegisterHandler returns an HTTP handler for user registration.
// @Summary Register a new user
// @Description Creates a new user account. Ensures unique email and identity number. Password is hashed before storing.
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body handlers.RegisterRequest true "User registration request"
// @Success 201 {object} handlers.UserResponse "User successfully registered"
// @Failure 400 {object} handlers.ErrorResponse "Duplicate email or identity number / invalid request"
// @Router /register [post]
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "invalid request body",
			})
			return
		}

		birthDate, err := parseBirthDate(req.BirthDate)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "invalid birth_date, expected YYYY-MM-DD",
			})
			return
		}

		user, err := svc.Register(r.Context(), services.RegisterInput{
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			IdentityNumber: req.IdentityNumber,
			BirthDate:      birthDate,
			Email:          req.Email,
			Role:           req.Role,
			Password:       req.Password,
		})
		if err != nil {
			switch {
			case errors.Is(err, services.ErrEmailAlreadyExists):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "Email already registered",
				})
			case errors.Is(err, services.ErrIdentityNumberAlreadyExists):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "Identity number already registered",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(toUserResponse(user))
	}
}
