package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/magabrotheeeer/library-management/internal/http/response"
)

// LibrarianOnlyMiddleware создает middleware, пропускающий только библиотекарей.
// Признак библиотекаря берется из контекста, установленного JWTMiddleware.
func LibrarianOnlyMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			isLibrarian, ok := r.Context().Value(IsLibrarian).(bool)
			if !ok {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			if !isLibrarian {
				log.Error("librarian permissions required")
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("librarian permissions required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
