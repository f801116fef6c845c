// Package cancel реализует HTTP-обработчик отмены подписки.
//
// Handler деактивирует подписку текущего пользователя. Средства не возвращаются,
// историческая запись подписки сохраняется.
package cancel

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

// Handler управляет HTTP-запросами на отмену подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики отмены подписки.
type Service interface {
	CancelSubscription(ctx context.Context, userUID string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отменить подписку
// @Description Деактивирует подписку текущего пользователя. Средства не возвращаются.
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Подписка отменена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Запись подписки не найдена"
// @Failure 409 {object} response.ErrorResponse "Подписка уже неактивна"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.escrow.cancel"
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

	if err := h.service.CancelSubscription(r.Context(), userUID); err != nil {
		switch {
		case errors.Is(err, models.ErrRecordNotFound):
			log.Error("subscription record not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.DomainError(err))
		case errors.Is(err, models.ErrNoActiveSubscription):
			log.Error("no active subscription to cancel")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.DomainError(err))
		default:
			log.Error("failed to cancel subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not cancel subscription"))
		}
		return
	}

	log.Info("subscription cancelled")
	render.JSON(w, r, response.OKWithData(nil))
}
