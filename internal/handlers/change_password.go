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
	"github.com/sbilibin2017/gw-user-auth/internal/services"
)

// PasswordChanger defines the interface that the change-password service must implement.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
}

// ChangePasswordRequest represents the JSON body for the authenticated password change
// swagger:model ChangePasswordRequest
type ChangePasswordRequest struct {
	// Current password
	// required: true
	// default: secret123
	CurrentPassword string `json:"current_password"`

	// New password
	// required: true
	// default: newsecret123
	NewPassword string `json:"new_password"`
}

// NewChangePasswordHandler returns an HTTP handler for the authenticated password change.
// Users may only change their own password.
// @Summary Change password
// @Description Verifies the current password and replaces it with a new one.
// @Tags users
// @Accept json
// @Produce json
// @Param userID path string true "User ID"
// @Param changePasswordRequest body handlers.ChangePasswordRequest true "Change password request"
// @Success 204 "Password changed"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request / wrong current password"
// @Failure 403 {object} handlers.ErrorResponse "Not the account owner"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Security BearerAuth
// @Router /users/{userID}/password [patch]
func NewChangePasswordHandler(svc PasswordChanger) http.HandlerFunc {
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
				Error: "You can only change your own password",
			})
			return
		}

		var req ChangePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "invalid request body",
			})
			return
		}

		if err := svc.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
			switch {
			case errors.Is(err, services.ErrPasswordMismatch):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "Current password is incorrect",
				})
			case errors.Is(err, services.ErrUserNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "User not found",
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

		w.WriteHeader(http.StatusNoContent)
	}
}
