// Package plancreate реализует HTTP-обработчик создания тарифного плана.
//
// Handler принимает JSON с ценой и длительностью, валидирует их и вызывает
// бизнес-логику создания плана. Операция доступна только владельцу реестра.
package plancreate

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

// Handler управляет HTTP-запросами на создание планов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания плана.
type Service interface {
	CreatePlan(ctx context.Context, callerUID string, price uint64, duration int64) (*models.Plan, error)
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
// @Summary Создать тарифный план
// @Description Создает новый план с очередным идентификатором. Доступно только владельцу реестра.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DummyPlan true "Цена и длительность плана"
// @Success 200 {object} map[string]any "Созданный план"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Вызывающий не владелец реестра"
// @Failure 404 {object} response.ErrorResponse "Реестр не инициализирован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /plans [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.escrow.plancreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPlan
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

	plan, err := h.service.CreatePlan(r.Context(), userUID, req.Price, req.Duration)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized):
			log.Error("caller is not the registry owner")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.DomainError(err))
		case errors.Is(err, models.ErrRecordNotFound):
			log.Error("registry is not initialized")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.DomainError(err))
		default:
			log.Error("failed to create plan", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create plan"))
		}
		return
	}

	log.Info("plan created", slog.Any("plan_id", plan.PlanID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"plan_id":  plan.PlanID,
		"address":  plan.Address,
		"price":    plan.Price,
		"duration": plan.Duration,
		"active":   plan.Active,
	}))
}
