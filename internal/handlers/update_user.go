package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-user-auth/internal/logger"
	"github.com/sbilibin2017/gw-user-auth/internal/middlewares"
	"github.com/sbilibin2017/gw-user-auth/internal/models"
	"github.com/sbilibin2017/gw-user-auth/internal/services"
)

// UserUpdater defines the interface that the profile-update service must implement.
type UserUpdater interface {
	Update(ctx context.Context, userID uuid.UUID, upd models.UserUpdate) (*models.UserDB, error)
}

// UpdateUserRequest represents the JSON body for a partial profile update.
// Omitted fields are left untouched.
// swagger:model UpdateUserRequest
type UpdateUserRequest struct {
	// Given name
	FirstName *string `json:"first_name,omitempty"`
	// Family name
	LastName *string `json:"last_name,omitempty"`
	// National identity number
	IdentityNumber *string `json:"identity_number,omitempty"`
	// Date of birth (YYYY-MM-DD)
	BirthDate *string `json:"birth_date,omitempty"`
	// Email
	Email *string `json:"email,omitempty"`
	// Role
	Role *string `json:"role,omitempty"`
}

// NewUpdateUserHandler returns an HTTP handler for updating a user profile.
// Users may only update their own profile.
// @Summary Update user profile
// @Description Applies a partial update to the authenticated user's own profile.
// @Tags users
// @Accept json
// @Produce json
// @Param userID path string true "User ID"
// @Param updateUserRequest body handlers.UpdateUserRequest true "Profile update request"
// @Success 200 {object} handlers.UserResponse "Updated profile"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request / duplicate field"
// @Failure 403 {object} handlers.ErrorResponse "Not the profile owner"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Security BearerAuth
// @Router /users/{userID} [put]
func NewUpdateUserHandler(svc UserUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(chi.URLParam(r, "userID"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "invalid user id",
			})
			return
		}

		if middlewares.GetUserIDFromContext(r.Context()) != userID {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "You can only update your own profile",
			})
			return
		}

		var req UpdateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "invalid request body",
			})
			return
		}

		upd := models.UserUpdate{
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			IdentityNumber: req.IdentityNumber,
			Email:          req.Email,
			Role:           req.Role,
		}
		if req.BirthDate != nil {
			birthDate, err := parseBirthDate(*req.BirthDate)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "invalid birth_date, expected YYYY-MM-DD",
				})
				return
			}
			upd.BirthDate = &birthDate
		}

		user, err := svc.Update(r.Context(), userID, upd)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "User not found",
				})
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

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(toUserResponse(user))
	}
}
