package renew

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/library-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/library-management/internal/models"
	loansvc "github.com/magabrotheeeer/library-management/internal/services/loan"
	"github.com/magabrotheeeer/library-management/internal/storage/repository"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Renew(ctx context.Context, userUID string, isLibrarian bool,
	loanID int64, req models.DummyRenew) (*models.Loan, error) {
	args := m.Called(ctx, userUID, isLibrarian, loanID, req)
	if l, ok := args.Get(0).(*models.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRenewHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	loan := &models.Loan{
		ID:           5,
		BookID:       42,
		UserUID:      "reader-uid",
		Status:       models.LoanStatusBorrowed,
		RenewalCount: 1,
		DueDate:      time.Now().Add(14 * 24 * time.Hour),
	}

	tests := []struct {
		name           string
		urlID          string
		body           string
		withAuth       bool
		mockSetup      func(m *MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешное продление без тела",
			urlID:    "5",
			body:     "",
			withAuth: true,
			mockSetup: func(m *MockService) {
				m.On("Renew", mock.Anything, "reader-uid", false, int64(5),
					models.DummyRenew{}).Return(loan, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "loan",
		},
		{
			name:     "успешное продление на 7 суток",
			urlID:    "5",
			body:     `{"days": 7}`,
			withAuth: true,
			mockSetup: func(m *MockService) {
				m.On("Renew", mock.Anything, "reader-uid", false, int64(5),
					models.DummyRenew{Days: 7}).Return(loan, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "loan",
		},
		{
			name:           "некорректный id в url",
			urlID:          "abc",
			body:           "",
			withAuth:       true,
			mockSetup:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "failed to decode id from url",
		},
		{
			name:           "слишком долгое продление",
			urlID:          "5",
			body:           `{"days": 90}`,
			withAuth:       true,
			mockSetup:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field Days must be 30 or less",
		},
		{
			name:           "пользователь не авторизован",
			urlID:          "5",
			body:           "",
			withAuth:       false,
			mockSetup:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "unauthorized",
		},
		{
			name:     "займ не найден",
			urlID:    "99",
			body:     "",
			withAuth: true,
			mockSetup: func(m *MockService) {
				m.On("Renew", mock.Anything, "reader-uid", false, int64(99),
					models.DummyRenew{}).Return(nil, repository.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "loan not found",
		},
		{
			name:     "чужой займ",
			urlID:    "5",
			body:     "",
			withAuth: true,
			mockSetup: func(m *MockService) {
				m.On("Renew", mock.Anything, "reader-uid", false, int64(5),
					models.DummyRenew{}).Return(nil, loansvc.ErrNotOwner)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   "loan belongs to another user",
		},
		{
			name:     "закрытый займ нельзя продлить",
			urlID:    "5",
			body:     "",
			withAuth: true,
			mockSetup: func(m *MockService) {
				m.On("Renew", mock.Anything, "reader-uid", false, int64(5),
					models.DummyRenew{}).Return(nil, repository.ErrLoanNotActive)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   "loan is already closed",
		},
		{
			name:     "просроченный займ нельзя продлить",
			urlID:    "5",
			body:     "",
			withAuth: true,
			mockSetup: func(m *MockService) {
				m.On("Renew", mock.Anything, "reader-uid", false, int64(5),
					models.DummyRenew{}).Return(nil, repository.ErrLoanOverdue)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   "overdue loan cannot be renewed",
		},
		{
			name:     "лимит продлений исчерпан",
			urlID:    "5",
			body:     "",
			withAuth: true,
			mockSetup: func(m *MockService) {
				m.On("Renew", mock.Anything, "reader-uid", false, int64(5),
					models.DummyRenew{}).Return(nil, repository.ErrRenewalLimit)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   "renewal limit reached",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.mockSetup(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/loans/"+tt.urlID+"/renew",
				strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.urlID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.withAuth {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, "reader-uid")
				ctx = context.WithValue(ctx, middlewarectx.IsLibrarian, false)
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"expected body to contain %q, got %q", tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
