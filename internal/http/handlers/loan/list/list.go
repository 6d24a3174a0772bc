// Package list реализует HTTP-обработчик списка займов.
//
// Читатель видит только собственные займы, библиотекарь - займы всех
// читателей с произвольным фильтром по читателю, книге и статусу.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/library-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/library-management/internal/http/response"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	"github.com/magabrotheeeer/library-management/internal/models"
)

// Значения пагинации по умолчанию.
const (
	defaultLimit = 20
	maxLimit     = 100
)

// Handler обрабатывает запросы на список займов.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики займов
}

// Service описывает интерфейс бизнес-логики списка займов.
type Service interface {
	List(ctx context.Context, userUID string, isLibrarian bool, filter models.LoanFilter, limit, offset int) ([]*models.LoanInfo, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список займов
// @Description Возвращает займы текущего читателя. Библиотекарь видит займы всех читателей и может фильтровать по читателю, книге и статусу.
// @Tags Loans
// @Produce  json
// @Param user_uid query string false "Фильтр по читателю (только для библиотекарей)"
// @Param book_id query int false "Фильтр по книге"
// @Param status query string false "Фильтр по статусу займа"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Список займов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /loans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loan.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	isLibrarian, _ := r.Context().Value(middlewarectx.IsLibrarian).(bool)

	q := r.URL.Query()
	filter := models.LoanFilter{
		UserUID: q.Get("user_uid"),
		Status:  q.Get("status"),
	}
	filter.BookID, _ = strconv.ParseInt(q.Get("book_id"), 10, 64)

	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset, err := strconv.Atoi(q.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	loans, err := h.service.List(r.Context(), userUID, isLibrarian, filter, limit, offset)
	if err != nil {
		log.Error("failed to list loans", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list loans"))
		return
	}

	log.Info("success to list loans", slog.Int("count", len(loans)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"loans": loans,
		"count": len(loans),
	}))
}
