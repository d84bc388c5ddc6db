package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/gw-user-auth/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestLoginHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name           string
		body           string
		mockSetup      func(m *MockLoginer)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Success",
			body: `{"email":"john@example.com","password":"secret123"}`,
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().Login(gomock.Any(), "john@example.com", "secret123").
					Return("access-token", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"token":"access-token"`,
		},
		{
			name: "InvalidCredentials",
			body: `{"email":"john@example.com","password":"wrongpass"}`,
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().Login(gomock.Any(), "john@example.com", "wrongpass").
					Return("", services.ErrInvalidCredentials)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Invalid email or password",
		},
		{
			name: "AccountLocked",
			body: `{"email":"john@example.com","password":"secret123"}`,
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().Login(gomock.Any(), "john@example.com", "secret123").
					Return("", services.ErrAccountLocked)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   "Too many failed attempts",
		},
		{
			name:           "InvalidBody",
			body:           `{invalid`,
			mockSetup:      func(m *MockLoginer) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid request body",
		},
		{
			name: "InternalError",
			body: `{"email":"john@example.com","password":"secret123"}`,
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().Login(gomock.Any(), "john@example.com", "secret123").
					Return("", errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockLoginer(ctrl)
			tt.mockSetup(mockSvc)

			handler := NewLoginHandler(mockSvc)

			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
		})
	}
}
