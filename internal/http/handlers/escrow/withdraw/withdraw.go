// Package withdraw реализует HTTP-обработчик вывода средств из пула.
//
// Handler принимает JSON с суммой и вызывает бизнес-логику перевода из пула
// на счет владельца реестра. Операция доступна только владельцу.
package withdraw

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

// Handler управляет HTTP-запросами на вывод средств из пула.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики вывода средств.
type Service interface {
	Withdraw(ctx context.Context, callerUID string, amount uint64) error
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
// @Summary Вывести средства из пула
// @Description Переводит запрошенную сумму из пула на счет владельца реестра.
// @Tags Vault
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DummyWithdraw true "Сумма вывода"
// @Success 200 {object} response.Response "Средства выведены"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Вызывающий не владелец реестра"
// @Failure 404 {object} response.ErrorResponse "Реестр не инициализирован"
// @Failure 409 {object} response.ErrorResponse "Баланс пула не покрывает сумму"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /vault/withdraw [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.escrow.withdraw"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyWithdraw
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

	if err := h.service.Withdraw(r.Context(), userUID, req.Amount); err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized):
			log.Error("caller is not the registry owner")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.DomainError(err))
		case errors.Is(err, models.ErrRecordNotFound):
			log.Error("registry is not initialized")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.DomainError(err))
		case errors.Is(err, models.ErrInsufficientVaultBalance):
			log.Error("insufficient vault balance", slog.Uint64("amount", req.Amount))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.DomainError(err))
		default:
			log.Error("failed to withdraw", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not withdraw"))
		}
		return
	}

	log.Info("vault withdrawal complete", slog.Uint64("amount", req.Amount))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"amount": req.Amount,
	}))
}
