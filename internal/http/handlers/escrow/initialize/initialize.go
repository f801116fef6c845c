// Package initialize реализует HTTP-обработчик инициализации реестра.
//
// Handler создает единственный реестр сервиса: вызывающий становится владельцем,
// счетчик планов начинается с единицы, создается пустой счет пула.
// Повторная инициализация возвращает конфликт.
package initialize

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/ivanshkirev/subscription-escrow/internal/http/middlewarectx"
	"github.com/ivanshkirev/subscription-escrow/internal/http/response"
	"github.com/ivanshkirev/subscription-escrow/internal/lib/sl"
	"github.com/ivanshkirev/subscription-escrow/internal/models"
)

// Handler управляет HTTP-запросами на инициализацию реестра.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики инициализации.
type Service interface {
	Initialize(ctx context.Context, ownerUID string) (*models.Registry, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Инициализировать реестр
// @Description Создает реестр сервиса; вызывающий становится его владельцем.
// @Tags Registry
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Адрес реестра и владелец"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 409 {object} response.ErrorResponse "Реестр уже инициализирован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /registry [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.escrow.initialize"
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

	reg, err := h.service.Initialize(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, models.ErrAlreadyInitialized) {
			log.Error("registry already initialized")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.DomainError(err))
			return
		}
		log.Error("failed to initialize registry", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not initialize registry"))
		return
	}

	log.Info("registry initialized", slog.String("owner", reg.OwnerUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"address":      reg.Address,
		"owner_uid":    reg.OwnerUID,
		"next_plan_id": reg.NextPlanID,
	}))
}
