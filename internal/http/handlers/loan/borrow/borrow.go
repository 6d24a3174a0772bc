// Package borrow реализует HTTP-обработчик выдачи книги читателю.
//
// Handler принимает JSON-запрос с ID книги, валидирует его, извлекает данные
// читателя из контекста и вызывает бизнес-логику выдачи через сервис.
// Правила выдачи (доступность книги, лимит займов, активность членства)
// проверяются в одной транзакции, их нарушения транслируются в HTTP-статусы.
package borrow

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/library-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/library-management/internal/http/response"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	"github.com/magabrotheeeer/library-management/internal/models"
	"github.com/magabrotheeeer/library-management/internal/storage/repository"
)

// Handler управляет HTTP-запросами на выдачу книг.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики займов
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики выдачи книги.
type Service interface {
	Borrow(ctx context.Context, userUID string, isLibrarian bool, req models.DummyBorrow) (*models.Loan, error)
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
// @Summary Взять книгу
// @Description Выдает книгу текущему читателю. Срок возврата рассчитывается из политики займов, если не указан явно.
// @Tags Loans
// @Accept  json
// @Produce  json
// @Param request body models.DummyBorrow true "Данные выдачи"
// @Success 201 {object} map[string]any "Займ оформлен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Членство читателя неактивно"
// @Failure 404 {object} response.ErrorResponse "Книга не найдена"
// @Failure 409 {object} response.ErrorResponse "Книга недоступна, лимит займов или дубликат"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при выдаче"
// @Router /loans [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loan.borrow"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyBorrow
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Int64("book_id", req.BookID))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	isLibrarian, _ := r.Context().Value(middlewarectx.IsLibrarian).(bool)

	loan, err := h.service.Borrow(r.Context(), userUID, isLibrarian, req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			log.Error("book not found", slog.Int64("book_id", req.BookID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("book not found"))
		case errors.Is(err, repository.ErrBookUnavailable):
			log.Error("book unavailable", slog.Int64("book_id", req.BookID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("book is not available for borrowing"))
		case errors.Is(err, repository.ErrAlreadyBorrowed):
			log.Error("book already borrowed by user", slog.Int64("book_id", req.BookID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("you already have an active loan for this book"))
		case errors.Is(err, repository.ErrBorrowLimit):
			log.Error("active loan limit reached")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("active loan limit reached"))
		case errors.Is(err, repository.ErrMemberInactive):
			log.Error("membership is not active")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("membership is not active"))
		default:
			log.Error("failed to borrow book", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not borrow book"))
		}
		return
	}

	log.Info("success to borrow book",
		slog.Int64("loan_id", loan.ID), slog.Int64("book_id", loan.BookID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"loan": loan,
	}))
}
