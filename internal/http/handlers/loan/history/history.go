// Package history реализует HTTP-обработчик истории займов читателя.
//
// История включает все займы читателя: активные, возвращенные, потерянные
// и поврежденные. Записи о займах никогда не удаляются.
package history

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

// Handler обрабатывает запросы на историю займов.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики займов
}

// Service описывает интерфейс бизнес-логики истории займов.
type Service interface {
	History(ctx context.Context, userUID string, limit, offset int) ([]*models.LoanInfo, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary История займов читателя
// @Description Возвращает полную историю займов текущего читателя, включая возвращенные книги.
// @Tags Loans
// @Produce  json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "История займов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /loans/history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loan.history"

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

	q := r.URL.Query()
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

	loans, err := h.service.History(r.Context(), userUID, limit, offset)
	if err != nil {
		log.Error("failed to read loan history", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read loan history"))
		return
	}

	log.Info("success to read loan history", slog.Int("count", len(loans)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"loans": loans,
		"count": len(loans),
	}))
}
