package middlewarectx_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/library-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/library-management/internal/lib/jwt"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestJWTMiddleware(t *testing.T) {
	maker := jwt.NewJWTMaker("test-secret", 30*time.Minute, 168*time.Hour)
	logger := newNoopLogger()

	accessToken, err := maker.GenerateAccessToken("reader", "reader-uid", false)
	assert.NoError(t, err)
	refreshToken, err := maker.GenerateRefreshToken("reader", "reader-uid", false)
	assert.NoError(t, err)
	librarianToken, err := maker.GenerateAccessToken("librarian", "librarian-uid", true)
	assert.NoError(t, err)

	foreignMaker := jwt.NewJWTMaker("other-secret", 30*time.Minute, 168*time.Hour)
	foreignToken, err := foreignMaker.GenerateAccessToken("reader", "reader-uid", false)
	assert.NoError(t, err)

	handlerCalled := false
	var gotUsername, gotUID any
	var gotLibrarian any

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		gotUsername = r.Context().Value(middlewarectx.User)
		gotUID = r.Context().Value(middlewarectx.UserUID)
		gotLibrarian = r.Context().Value(middlewarectx.IsLibrarian)
		w.WriteHeader(http.StatusOK)
	})

	mw := middlewarectx.JWTMiddleware(maker, logger)(nextHandler)

	tests := []struct {
		name           string
		authHeader     string
		wantStatusCode int
		wantCalled     bool
		wantUsername   string
		wantUID        string
		wantLibrarian  bool
	}{
		{
			name:           "missing Authorization header",
			authHeader:     "",
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "garbage token",
			authHeader:     "Bearer not-a-token",
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "token signed with another key",
			authHeader:     "Bearer " + foreignToken,
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "refresh token cannot access api",
			authHeader:     "Bearer " + refreshToken,
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "valid access token",
			authHeader:     "Bearer " + accessToken,
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
			wantUsername:   "reader",
			wantUID:        "reader-uid",
			wantLibrarian:  false,
		},
		{
			name:           "valid librarian token",
			authHeader:     "Bearer " + librarianToken,
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
			wantUsername:   "librarian",
			wantUID:        "librarian-uid",
			wantLibrarian:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled = false

			req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			rec := httptest.NewRecorder()

			mw.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			if tt.wantCalled {
				assert.Equal(t, tt.wantUsername, gotUsername)
				assert.Equal(t, tt.wantUID, gotUID)
				assert.Equal(t, tt.wantLibrarian, gotLibrarian)
			}
		})
	}
}

// Middleware делит один логгер между всеми запросами, поэтому
// параллельные запросы не должны гонять его состояние.
func TestJWTMiddleware_ConcurrentRequests(t *testing.T) {
	maker := jwt.NewJWTMaker("test-secret", 30*time.Minute, 168*time.Hour)
	logger := newNoopLogger()

	accessToken, err := maker.GenerateAccessToken("reader", "reader-uid", false)
	assert.NoError(t, err)

	mw := middlewarectx.JWTMiddleware(maker, logger)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
			req.Header.Set("Authorization", "Bearer "+accessToken)
			rec := httptest.NewRecorder()

			mw.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Errorf("unexpected status code: %d", rec.Code)
			}
		}()
	}
	wg.Wait()
}
