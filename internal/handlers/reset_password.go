package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-user-auth/internal/logger"
	"github.com/sbilibin2017/gw-user-auth/internal/services"
)

// PasswordResetter defines the interface that the reset-password service must implement.
type PasswordResetter interface {
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// ResetPasswordRequest represents the JSON body for redeeming a reset token
// swagger:model ResetPasswordRequest
type ResetPasswordRequest struct {
	// Reset token received by email
	// required: true
	// default: RESET_TOKEN
	Token string `json:"token"`

	// New password
	// required: true
	// default: newsecret123
	NewPassword string `json:"new_password"`
}

// NewResetPasswordHandler returns an HTTP handler for redeeming a password-reset token.
// @Summary Reset password with a token
// @Description Verifies a reset-scoped token and overwrites the account password. Tokens without the reset scope are rejected.
// @Tags auth
// @Accept json
// @Produce json
// @Param resetPasswordRequest body handlers.ResetPasswordRequest true "Reset password request"
// @Success 200 {object} handlers.MessageResponse "Password updated"
// @Failure 400 {object} handlers.ErrorResponse "Invalid or expired token"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Router /reset-password [post]
func NewResetPasswordHandler(svc PasswordResetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResetPasswordRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "invalid request body",
			})
			return
		}

		if err := svc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidResetToken):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "Invalid or expired token",
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

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(MessageResponse{
			Message: "Password updated successfully",
		})
	}
}
