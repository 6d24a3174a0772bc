// Package list реализует HTTP-обработчик для постраничного поиска по каталогу.
//
// Handler читает фильтры и параметры пагинации из строки запроса, вызывает
// бизнес-логику поиска книг через сервис и возвращает найденные книги
// в JSON-формате.
package list

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

// Значения пагинации по умолчанию.
const (
	defaultLimit = 20
	maxLimit     = 100
)

// Handler обрабатывает запросы на поиск книг в каталоге.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики каталога
}

// Service описывает интерфейс бизнес-логики поиска книг.
type Service interface {
	List(ctx context.Context, filter models.BookFilter, limit, offset int) ([]*models.Book, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Поиск книг в каталоге
// @Description Возвращает страницу каталога с учётом фильтров: название, автор, жанр, язык, рейтинг, доступность и общий поиск.
// @Tags Books
// @Produce  json
// @Param title query string false "Фильтр по названию"
// @Param author query string false "Фильтр по автору"
// @Param genre query string false "Фильтр по жанру"
// @Param status query string false "Фильтр по статусу"
// @Param available query bool false "Только доступные книги"
// @Param search query string false "Поиск по названию, автору и описанию"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Найденные книги"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при поиске"
// @Router /books [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.book.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	filter := models.BookFilter{
		Title:     q.Get("title"),
		Author:    q.Get("author"),
		ISBN:      q.Get("isbn"),
		Genre:     q.Get("genre"),
		Status:    q.Get("status"),
		Language:  q.Get("language"),
		Publisher: q.Get("publisher"),
		Search:    q.Get("search"),
	}
	filter.PublicationYear, _ = strconv.Atoi(q.Get("publication_year"))
	filter.MinRating, _ = strconv.ParseFloat(q.Get("min_rating"), 64)
	filter.MaxRating, _ = strconv.ParseFloat(q.Get("max_rating"), 64)
	filter.MinPages, _ = strconv.Atoi(q.Get("min_pages"))
	filter.MaxPages, _ = strconv.Atoi(q.Get("max_pages"))
	filter.Available, _ = strconv.ParseBool(q.Get("available"))

	limit, offset := pagination(q.Get("limit"), q.Get("offset"))

	books, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		log.Error("failed to list books", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list books"))
		return
	}

	log.Info("success to list books", slog.Int("count", len(books)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"books": books,
		"count": len(books),
	}))
}

func pagination(limitStr, offsetStr string) (int, int) {
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset, err := strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
