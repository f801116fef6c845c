// Package deposit реализует HTTP-обработчик пополнения счета пользователя.
package deposit

import (
	"context"
	"encoding/json"
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

// Handler управляет HTTP-запросами на пополнение счета.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики пополнения счета.
type Service interface {
	Deposit(ctx context.Context, userUID string, amount uint64) (uint64, error)
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
// @Summary Пополнить счет
// @Description Зачисляет сумму на счет текущего пользователя и возвращает новый баланс.
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DummyDeposit true "Сумма пополнения"
// @Success 200 {object} map[string]any "Новый баланс счета"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /accounts/deposit [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.escrow.deposit"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyDeposit
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

	balance, err := h.service.Deposit(r.Context(), userUID, req.Amount)
	if err != nil {
		log.Error("failed to deposit", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not deposit"))
		return
	}

	log.Info("account credited", slog.Uint64("amount", req.Amount))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"balance": balance,
	}))
}
