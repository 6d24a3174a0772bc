// Package popular реализует HTTP-обработчик списка самых востребованных книг.
package popular

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/library-management/internal/http/response"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	"github.com/magabrotheeeer/library-management/internal/models"
)

const defaultLimit = 10

// Handler обрабатывает запросы на список самых востребованных книг.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики каталога
}

// Service описывает интерфейс бизнес-логики списка популярных книг.
type Service interface {
	Popular(ctx context.Context, limit int) ([]*models.Book, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Самые востребованные книги
// @Description Возвращает книги, которые брали чаще всего.
// @Tags Books
// @Produce  json
// @Param limit query int false "Максимум записей"
// @Success 200 {object} map[string]any "Список книг"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /books/popular [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.book.popular"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}

	books, err := h.service.Popular(r.Context(), limit)
	if err != nil {
		log.Error("failed to list popular books", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list popular books"))
		return
	}

	log.Info("success to list popular books", slog.Int("count", len(books)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"books": books,
	}))
}
