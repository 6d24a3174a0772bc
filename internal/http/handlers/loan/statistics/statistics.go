// Package statistics реализует HTTP-обработчик агрегированной статистики займов.
package statistics

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/library-management/internal/http/response"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	"github.com/magabrotheeeer/library-management/internal/models"
)

// Handler обрабатывает запросы на статистику займов.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики займов
}

// Service описывает интерфейс бизнес-логики статистики займов.
type Service interface {
	Statistics(ctx context.Context) (*models.LoanStatistics, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Статистика займов
// @Description Возвращает агрегаты по займам: всего, активных, просроченных, возвращенных и долю возвратов. Доступно только библиотекарям.
// @Tags Loans
// @Produce  json
// @Success 200 {object} map[string]any "Статистика займов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /loans/statistics [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loan.statistics"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		log.Error("failed to read loan statistics", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read loan statistics"))
		return
	}

	log.Info("success to read loan statistics")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"statistics": stats,
	}))
}
