// Package status реализует HTTP-обработчик проверки активности подписки.
//
// Handler отвечает, активна ли подписка пользователя на текущий момент:
// запись существует, не отменена и срок действия не истек.
package status

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

// Handler управляет HTTP-запросами на проверку статуса подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики проверки активности.
type Service interface {
	IsSubscriptionActive(ctx context.Context, userUID string) (bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Проверить активность подписки
// @Description Возвращает true, если подписка пользователя активна на текущий момент.
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Param user query string false "UID пользователя; по умолчанию текущий"
// @Success 200 {object} map[string]any "Признак активности"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Запись подписки не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.escrow.status"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	callerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || callerUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	// Статус можно запросить для любого пользователя — проверка только читает.
	userUID := r.URL.Query().Get("user")
	if userUID == "" {
		userUID = callerUID
	}

	active, err := h.service.IsSubscriptionActive(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			log.Error("subscription record not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.DomainError(err))
			return
		}
		log.Error("failed to check subscription status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not check subscription status"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"active": active,
	}))
}
