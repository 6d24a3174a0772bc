// Package health реализует HTTP-обработчики проверки состояния сервиса.
//
// Liveness отвечает, пока жив процесс. Readiness и подробная проверка
// опрашивают базу данных и кеш, чтобы балансировщик не направлял трафик
// на экземпляр с недоступными зависимостями.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/library-management/internal/http/response"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
)

// DatabaseChecker описывает проверку готовности базы данных.
type DatabaseChecker interface {
	CheckDatabaseReady(ctx context.Context) error
}

// CachePinger описывает проверку доступности кеша.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// Handler обрабатывает запросы проверки состояния сервиса.
type Handler struct {
	log   *slog.Logger
	db    DatabaseChecker
	cache CachePinger
}

// New создает новый Handler с переданными логгером и зависимостями.
func New(log *slog.Logger, db DatabaseChecker, cache CachePinger) *Handler {
	return &Handler{
		log:   log,
		db:    db,
		cache: cache,
	}
}

// Basic godoc
// @Summary Статус сервиса
// @Description Возвращает ok, пока жив процесс сервиса.
// @Tags Health
// @Produce  json
// @Success 200 {object} map[string]any "Сервис работает"
// @Router /health [get]
func (h *Handler) Basic(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": "ok",
	}))
}

// Live godoc
// @Summary Liveness-проба
// @Description Проба для оркестратора: процесс жив.
// @Tags Health
// @Produce  json
// @Success 200 {object} map[string]any "Процесс жив"
// @Router /health/live [get]
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": "alive",
	}))
}

// Ready godoc
// @Summary Readiness-проба
// @Description Проба для оркестратора: база данных доступна и миграции применены.
// @Tags Health
// @Produce  json
// @Success 200 {object} map[string]any "Сервис готов принимать трафик"
// @Failure 503 {object} response.ErrorResponse "База данных недоступна"
// @Router /health/ready [get]
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health.ready"
	log := h.log.With(slog.String("op", op))

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.CheckDatabaseReady(ctx); err != nil {
		log.Error("database is not ready", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("database is not ready"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": "ready",
	}))
}

// Detailed godoc
// @Summary Подробная проверка состояния
// @Description Возвращает состояние каждой зависимости сервиса: базы данных и кеша.
// @Tags Health
// @Produce  json
// @Success 200 {object} map[string]any "Состояние зависимостей"
// @Failure 503 {object} map[string]any "Одна из зависимостей недоступна"
// @Router /health/detailed [get]
func (h *Handler) Detailed(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health.detailed"
	log := h.log.With(slog.String("op", op))

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{
		"database": "ok",
		"cache":    "ok",
	}
	healthy := true

	if err := h.db.CheckDatabaseReady(ctx); err != nil {
		log.Error("database check failed", sl.Err(err))
		checks["database"] = err.Error()
		healthy = false
	}
	if err := h.cache.Ping(ctx); err != nil {
		log.Error("cache check failed", sl.Err(err))
		checks["cache"] = err.Error()
		healthy = false
	}

	status := "ok"
	if !healthy {
		status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": status,
		"checks": checks,
	}))
}
