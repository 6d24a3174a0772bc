// Package returnloan реализует HTTP-обработчик возврата книги.
//
// Handler извлекает ID займа из URL-параметров, принимает состояние книги
// при возврате и вызывает бизнес-логику через сервис. Штраф за просрочку
// начисляется автоматически, возвращенный займ вернуть повторно нельзя.
package returnloan

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/library-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/library-management/internal/http/response"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	"github.com/magabrotheeeer/library-management/internal/models"
	loansvc "github.com/magabrotheeeer/library-management/internal/services/loan"
	"github.com/magabrotheeeer/library-management/internal/storage/repository"
)

// Handler управляет HTTP-запросами на возврат книг.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики займов
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики возврата книги.
type Service interface {
	Return(ctx context.Context, userUID string, isLibrarian bool, loanID int64, req models.DummyReturn) (*models.Loan, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вернуть книгу
// @Description Принимает книгу обратно с указанием её состояния. За просрочку начисляется штраф за каждые начатые сутки.
// @Tags Loans
// @Accept  json
// @Produce  json
// @Param id path int true "ID займа"
// @Param request body models.DummyReturn true "Состояние книги при возврате"
// @Success 200 {object} map[string]any "Книга возвращена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Займ принадлежит другому читателю"
// @Failure 404 {object} response.ErrorResponse "Займ не найден"
// @Failure 409 {object} response.ErrorResponse "Займ уже закрыт"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при возврате"
// @Router /loans/{id}/return [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loan.return"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	loanID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	var req models.DummyReturn
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	isLibrarian, _ := r.Context().Value(middlewarectx.IsLibrarian).(bool)

	loan, err := h.service.Return(r.Context(), userUID, isLibrarian, loanID, req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			log.Error("loan not found", slog.Int64("loan_id", loanID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("loan not found"))
		case errors.Is(err, loansvc.ErrNotOwner):
			log.Error("loan belongs to another user", slog.Int64("loan_id", loanID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("loan belongs to another user"))
		case errors.Is(err, repository.ErrLoanNotActive):
			log.Error("loan is not active", slog.Int64("loan_id", loanID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("loan is already closed"))
		default:
			log.Error("failed to return book", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not return book"))
		}
		return
	}

	log.Info("success to return book",
		slog.Int64("loan_id", loan.ID), slog.Float64("fine_amount", loan.FineAmount))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"loan": loan,
	}))
}
