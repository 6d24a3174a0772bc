package read

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/library-management/internal/models"
	"github.com/magabrotheeeer/library-management/internal/storage/repository"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Read(ctx context.Context, id int64) (*models.Book, error) {
	args := m.Called(ctx, id)
	if b, ok := args.Get(0).(*models.Book); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	book := &models.Book{
		ID:     42,
		Title:  "Мастер и Маргарита",
		Author: "Михаил Булгаков",
		ISBN:   "9785170878895",
		Status: models.BookStatusAvailable,
	}

	tests := []struct {
		name           string
		urlID          string
		mockSetup      func(m *MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "успешное чтение книги",
			urlID: "42",
			mockSetup: func(m *MockService) {
				m.On("Read", mock.Anything, int64(42)).Return(book, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "Мастер и Маргарита",
		},
		{
			name:           "некорректный id в url",
			urlID:          "abc",
			mockSetup:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "failed to decode id from url",
		},
		{
			name:  "книга не найдена",
			urlID: "777",
			mockSetup: func(m *MockService) {
				m.On("Read", mock.Anything, int64(777)).Return(nil, repository.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "book not found",
		},
		{
			name:  "ошибка сервиса",
			urlID: "42",
			mockSetup: func(m *MockService) {
				m.On("Read", mock.Anything, int64(42)).Return(nil, assert.AnError)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "could not read book",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.mockSetup(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/books/"+tt.urlID, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.urlID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"expected body to contain %q, got %q", tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
