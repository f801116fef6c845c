// Package subscribe реализует HTTP-обработчик оформления подписки.
//
// Handler принимает JSON с идентификатором плана, валидирует его, извлекает UID
// пользователя из контекста и вызывает бизнес-логику оформления подписки:
// списание цены плана со счета пользователя в пул и создание записи подписки.
package subscribe

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/ivanshkirev/subscription-escrow/internal/http/middlewarectx"
	"github.com/ivanshkirev/subscription-escrow/internal/http/response"
	"github.com/ivanshkirev/subscription-escrow/internal/lib/sl"
	"github.com/ivanshkirev/subscription-escrow/internal/models"
)

// Handler управляет HTTP-запросами на оформление подписки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики оформления подписки.
type Service interface {
	Subscribe(ctx context.Context, userUID string, planID uint32) (*models.Subscription, error)
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
// @Summary Оформить подписку
// @Description Списывает цену плана со счета пользователя в пул и создает запись подписки.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DummySubscribe true "Идентификатор плана"
// @Success 200 {object} map[string]any "Созданная подписка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.ErrorResponse "Не хватает средств на счете"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Failure 409 {object} response.ErrorResponse "План неактивен или подписка уже существует"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.escrow.subscribe"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummySubscribe
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

	sub, err := h.service.Subscribe(r.Context(), userUID, req.PlanID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidPlanID), errors.Is(err, models.ErrRecordNotFound):
			log.Error("plan not found", slog.Any("plan_id", req.PlanID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.DomainError(err))
		case errors.Is(err, models.ErrPlanInactive):
			log.Error("plan is inactive", slog.Any("plan_id", req.PlanID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.DomainError(err))
		case errors.Is(err, models.ErrSubscriptionAlreadyExists):
			log.Error("subscription already exists")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.DomainError(err))
		case errors.Is(err, models.ErrPaymentFailed):
			log.Error("payment failed", sl.Err(err))
			w.WriteHeader(http.StatusPaymentRequired)
			render.JSON(w, r, response.DomainError(err))
		default:
			log.Error("failed to subscribe", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not subscribe"))
		}
		return
	}

	log.Info("subscription created", slog.Any("plan_id", sub.PlanID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"address":    sub.Address,
		"plan_id":    sub.PlanID,
		"start_time": sub.StartTime,
		"end_time":   sub.EndTime,
		"active":     sub.Active,
	}))
}
