// Package librarymanagement предоставляет маршруты для основного приложения.
package librarymanagement

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/library-management/internal/cache"
	"github.com/magabrotheeeer/library-management/internal/config"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/auth/register"
	bookcreate "github.com/magabrotheeeer/library-management/internal/http/handlers/book/create"
	booklist "github.com/magabrotheeeer/library-management/internal/http/handlers/book/list"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/book/popular"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/book/rate"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/book/ratings"
	bookread "github.com/magabrotheeeer/library-management/internal/http/handlers/book/read"
	bookremove "github.com/magabrotheeeer/library-management/internal/http/handlers/book/remove"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/book/toprated"
	bookupdate "github.com/magabrotheeeer/library-management/internal/http/handlers/book/update"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/health"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/loan/borrow"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/loan/history"
	loanlist "github.com/magabrotheeeer/library-management/internal/http/handlers/loan/list"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/loan/overdue"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/loan/renew"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/loan/returnloan"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/loan/statistics"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/user/profile"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/user/toggleactive"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/user/togglelibrarian"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/user/updateprofile"
	"github.com/magabrotheeeer/library-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/library-management/internal/lib/jwt"
	authservice "github.com/magabrotheeeer/library-management/internal/services/auth"
	bookservice "github.com/magabrotheeeer/library-management/internal/services/book"
	loanservice "github.com/magabrotheeeer/library-management/internal/services/loan"
	userservice "github.com/magabrotheeeer/library-management/internal/services/user"
	"github.com/magabrotheeeer/library-management/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, jwtMaker jwt.Maker,
	authService *authservice.AuthService, bookService *bookservice.BookService,
	loanService *loanservice.LoanService, userService *userservice.UserService,
	db *repository.Storage, cacheRedis *cache.Cache) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	healthHandler := health.New(logger, db, cacheRedis)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"https://*", "http://*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RequestsPerSecond, cfg.Burst))

		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService).ServeHTTP)
		r.Post("/auth/refresh", refresh.New(logger, authService).ServeHTTP)
		r.Post("/auth/logout", logout.New(logger, authService).ServeHTTP)

		// Каталог открыт для чтения без аутентификации
		r.Get("/books", booklist.New(logger, bookService).ServeHTTP)
		r.Get("/books/popular", popular.New(logger, bookService).ServeHTTP)
		r.Get("/books/top-rated", toprated.New(logger, bookService).ServeHTTP)
		r.Get("/books/{id}", bookread.New(logger, bookService).ServeHTTP)
		r.Get("/books/{id}/ratings", ratings.New(logger, bookService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))

			r.Get("/users/profile", profile.New(logger, userService).ServeHTTP)
			r.Put("/users/profile", updateprofile.New(logger, userService).ServeHTTP)

			r.Post("/books/{id}/rate", rate.New(logger, bookService).ServeHTTP)

			r.Post("/loans", borrow.New(logger, loanService).ServeHTTP)
			r.Get("/loans", loanlist.New(logger, loanService).ServeHTTP)
			r.Get("/loans/history", history.New(logger, loanService).ServeHTTP)
			r.Get("/loans/overdue", overdue.New(logger, loanService).ServeHTTP)
			r.Post("/loans/{id}/return", returnloan.New(logger, loanService).ServeHTTP)
			r.Post("/loans/{id}/renew", renew.New(logger, loanService).ServeHTTP)

			// Группа только для библиотекарей
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.LibrarianOnlyMiddleware(logger))

				r.Post("/books", bookcreate.New(logger, bookService).ServeHTTP)
				r.Put("/books/{id}", bookupdate.New(logger, bookService).ServeHTTP)
				r.Delete("/books/{id}", bookremove.New(logger, bookService).ServeHTTP)

				r.Get("/loans/statistics", statistics.New(logger, loanService).ServeHTTP)

				r.Post("/users/{uid}/toggle-librarian", togglelibrarian.New(logger, userService).ServeHTTP)
				r.Post("/users/{uid}/toggle-active", toggleactive.New(logger, userService).ServeHTTP)
			})
		})
	})

	r.Get("/health", healthHandler.Basic)
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)
	r.Get("/health/detailed", healthHandler.Detailed)

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
