package borrow

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/library-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/library-management/internal/models"
	"github.com/magabrotheeeer/library-management/internal/storage/repository"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Borrow(ctx context.Context, userUID string, isLibrarian bool,
	req models.DummyBorrow) (*models.Loan, error) {
	args := m.Called(ctx, userUID, isLibrarian, req)
	if l, ok := args.Get(0).(*models.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestBorrowHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	loan := &models.Loan{
		ID:      1,
		BookID:  42,
		UserUID: "reader-uid",
		Status:  models.LoanStatusBorrowed,
		DueDate: time.Now().Add(14 * 24 * time.Hour),
	}

	tests := []struct {
		name           string
		body           string
		userUID        string
		withAuth       bool
		mockSetup      func(m *MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешная выдача книги",
			body:     `{"book_id": 42}`,
			userUID:  "reader-uid",
			withAuth: true,
			mockSetup: func(m *MockService) {
				m.On("Borrow", mock.Anything, "reader-uid", false,
					models.DummyBorrow{BookID: 42}).Return(loan, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   "loan",
		},
		{
			name:           "некорректный json",
			body:           `{"book_id": }`,
			userUID:        "reader-uid",
			withAuth:       true,
			mockSetup:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid request body",
		},
		{
			name:           "отсутствует book_id",
			body:           `{}`,
			userUID:        "reader-uid",
			withAuth:       true,
			mockSetup:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "required field",
		},
		{
			name:           "пользователь не авторизован",
			body:           `{"book_id": 42}`,
			withAuth:       false,
			mockSetup:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "unauthorized",
		},
		{
			name:     "книга не найдена",
			body:     `{"book_id": 99}`,
			userUID:  "reader-uid",
			withAuth: true,
			mockSetup: func(m *MockService) {
				m.On("Borrow", mock.Anything, "reader-uid", false,
					models.DummyBorrow{BookID: 99}).Return(nil, repository.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "book not found",
		},
		{
			name:     "книга недоступна",
			body:     `{"book_id": 42}`,
			userUID:  "reader-uid",
			withAuth: true,
			mockSetup: func(m *MockService) {
				m.On("Borrow", mock.Anything, "reader-uid", false,
					models.DummyBorrow{BookID: 42}).Return(nil, repository.ErrBookUnavailable)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   "book is not available for borrowing",
		},
		{
			name:     "лимит активных займов",
			body:     `{"book_id": 42}`,
			userUID:  "reader-uid",
			withAuth: true,
			mockSetup: func(m *MockService) {
				m.On("Borrow", mock.Anything, "reader-uid", false,
					models.DummyBorrow{BookID: 42}).Return(nil, repository.ErrBorrowLimit)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   "active loan limit reached",
		},
		{
			name:     "членство неактивно",
			body:     `{"book_id": 42}`,
			userUID:  "reader-uid",
			withAuth: true,
			mockSetup: func(m *MockService) {
				m.On("Borrow", mock.Anything, "reader-uid", false,
					models.DummyBorrow{BookID: 42}).Return(nil, repository.ErrMemberInactive)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   "membership is not active",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.mockSetup(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/loans", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.withAuth {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID)
				ctx = context.WithValue(ctx, middlewarectx.IsLibrarian, false)
				req = req.WithContext(ctx)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"expected body to contain %q, got %q", tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
