package login

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/library-management/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Login(ctx context.Context, username, email, password string) (*models.User, *models.TokenPair, error) {
	args := m.Called(ctx, username, email, password)
	var user *models.User
	var pair *models.TokenPair
	if u, ok := args.Get(0).(*models.User); ok {
		user = u
	}
	if p, ok := args.Get(1).(*models.TokenPair); ok {
		pair = p
	}
	return user, pair, args.Error(2)
}

func TestLoginHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	user := &models.User{
		Username:    "reader",
		Email:       "reader@example.com",
		IsLibrarian: false,
	}
	pair := &models.TokenPair{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
	}

	tests := []struct {
		name           string
		body           string
		mockSetup      func(m *MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешный вход по имени пользователя",
			body: `{"username": "reader", "password": "password123"}`,
			mockSetup: func(m *MockService) {
				m.On("Login", mock.Anything, "reader", "", "password123").
					Return(user, pair, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "access-token",
		},
		{
			name: "успешный вход по email",
			body: `{"email": "reader@example.com", "password": "password123"}`,
			mockSetup: func(m *MockService) {
				m.On("Login", mock.Anything, "", "reader@example.com", "password123").
					Return(user, pair, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "access-token",
		},
		{
			name:           "некорректный json",
			body:           `{"username": }`,
			mockSetup:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid request body",
		},
		{
			name:           "пароль отсутствует",
			body:           `{"username": "reader"}`,
			mockSetup:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field Password is a required field",
		},
		{
			name:           "нет ни имени пользователя, ни email",
			body:           `{"password": "password123"}`,
			mockSetup:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "username or email is required",
		},
		{
			name: "неверные учетные данные",
			body: `{"username": "reader", "password": "wrongpassword"}`,
			mockSetup: func(m *MockService) {
				m.On("Login", mock.Anything, "reader", "", "wrongpassword").
					Return(nil, nil, assert.AnError)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "invalid credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.mockSetup(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"expected body to contain %q, got %q", tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
