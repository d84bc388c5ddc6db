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

// UserDeleter defines the interface that the account-removal service must implement.
type UserDeleter interface {
	Delete(ctx context.Context, userID uuid.UUID) error
}

// NewDeleteUserHandler returns an HTTP handler for deleting a user account.
// Users may only delete their own account.
// @Summary Delete user account
// @Description Permanently removes the authenticated user's own account.
// @Tags users
// @Produce json
// @Param userID path string true "User ID"
// @Success 204 "Account deleted"
// @Failure 400 {object} handlers.ErrorResponse "Invalid user id"
// @Failure 403 {object} handlers.ErrorResponse "Not the account owner"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Security BearerAuth
// @Router /users/{userID} [delete]
func NewDeleteUserHandler(svc UserDeleter) http.HandlerFunc {
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
				Error: "You can only delete your own account",
			})
			return
		}

		if err := svc.Delete(r.Context(), userID); err != nil {
			switch {
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
