// Package overdue реализует HTTP-обработчик списка просроченных займов.
//
// Читатель видит только собственные просрочки, библиотекарь - просрочки
// всех читателей. Начисленные штрафы актуализируются при каждом запросе.
package overdue

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/library-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/library-management/internal/http/response"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	"github.com/magabrotheeeer/library-management/internal/models"
)

// Handler обрабатывает запросы на список просроченных займов.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики займов
}

// Service описывает интерфейс бизнес-логики просроченных займов.
type Service interface {
	Overdue(ctx context.Context, userUID string, isLibrarian bool) ([]*models.LoanInfo, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Просроченные займы
// @Description Возвращает просроченные займы с числом суток просрочки и начисленными штрафами.
// @Tags Loans
// @Produce  json
// @Success 200 {object} map[string]any "Просроченные займы"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /loans/overdue [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loan.overdue"

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

	loans, err := h.service.Overdue(r.Context(), userUID, isLibrarian)
	if err != nil {
		log.Error("failed to list overdue loans", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list overdue loans"))
		return
	}

	log.Info("success to list overdue loans", slog.Int("count", len(loans)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"loans": loans,
		"count": len(loans),
	}))
}
