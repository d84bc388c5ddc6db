package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-user-auth/internal/jwt"
	"github.com/sbilibin2017/gw-user-auth/internal/middlewares"
	"github.com/sbilibin2017/gw-user-auth/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestDeleteUserHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	otherID := uuid.New()

	tests := []struct {
		name           string
		pathID         string
		authID         uuid.UUID
		mockSetup      func(m *MockUserDeleter)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "Success",
			pathID: userID.String(),
			authID: userID,
			mockSetup: func(m *MockUserDeleter) {
				m.EXPECT().Delete(gomock.Any(), userID).Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "OtherUsersAccount",
			pathID:         userID.String(),
			authID:         otherID,
			mockSetup:      func(m *MockUserDeleter) {},
			expectedStatus: http.StatusForbidden,
			expectedBody:   "You can only delete your own account",
		},
		{
			name:   "NotFound",
			pathID: userID.String(),
			authID: userID,
			mockSetup: func(m *MockUserDeleter) {
				m.EXPECT().Delete(gomock.Any(), userID).Return(services.ErrUserNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "User not found",
		},
		{
			name:           "InvalidID",
			pathID:         "not-a-uuid",
			authID:         userID,
			mockSetup:      func(m *MockUserDeleter) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid user id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockUserDeleter(ctrl)
			tt.mockSetup(mockSvc)

			router := chi.NewRouter()
			router.Delete("/users/{userID}", NewDeleteUserHandler(mockSvc))

			req := httptest.NewRequest(http.MethodDelete, "/users/"+tt.pathID, nil)
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
