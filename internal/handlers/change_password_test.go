package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-user-auth/internal/jwt"
	"github.com/sbilibin2017/gw-user-auth/internal/middlewares"
	"github.com/sbilibin2017/gw-user-auth/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestChangePasswordHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	otherID := uuid.New()

	tests := []struct {
		name           string
		pathID         string
		authID         uuid.UUID
		body           string
		mockSetup      func(m *MockPasswordChanger)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "Success",
			pathID: userID.String(),
			authID: userID,
			body:   `{"current_password":"oldsecret","new_password":"newsecret123"}`,
			mockSetup: func(m *MockPasswordChanger) {
				m.EXPECT().ChangePassword(gomock.Any(), userID, "oldsecret", "newsecret123").
					Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "OtherUsersPassword",
			pathID:         userID.String(),
			authID:         otherID,
			body:           `{"current_password":"oldsecret","new_password":"newsecret123"}`,
			mockSetup:      func(m *MockPasswordChanger) {},
			expectedStatus: http.StatusForbidden,
			expectedBody:   "You can only change your own password",
		},
		{
			name:   "WrongCurrentPassword",
			pathID: userID.String(),
			authID: userID,
			body:   `{"current_password":"wrongsecret","new_password":"newsecret123"}`,
			mockSetup: func(m *MockPasswordChanger) {
				m.EXPECT().ChangePassword(gomock.Any(), userID, "wrongsecret", "newsecret123").
					Return(services.ErrPasswordMismatch)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Current password is incorrect",
		},
		{
			name:   "NotFound",
			pathID: userID.String(),
			authID: userID,
			body:   `{"current_password":"oldsecret","new_password":"newsecret123"}`,
			mockSetup: func(m *MockPasswordChanger) {
				m.EXPECT().ChangePassword(gomock.Any(), userID, "oldsecret", "newsecret123").
					Return(services.ErrUserNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "User not found",
		},
		{
			name:           "InvalidBody",
			pathID:         userID.String(),
			authID:         userID,
			body:           `{invalid`,
			mockSetup:      func(m *MockPasswordChanger) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockPasswordChanger(ctrl)
			tt.mockSetup(mockSvc)

			router := chi.NewRouter()
			router.Patch("/users/{userID}/password", NewChangePasswordHandler(mockSvc))

			req := httptest.NewRequest(http.MethodPatch, "/users/"+tt.pathID+"/password", strings.NewReader(tt.body))
			req = req.WithContext(middlewares.SetClaimsToContext(req.Context(), &jwt.Claims{UserID: tt.authID}))
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, rr.Body.String(), tt.expectedBody)
			}
		})
	}
}
