// Package vaultbalance реализует HTTP-обработчик чтения баланса пула.
package vaultbalance

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/ivanshkirev/subscription-escrow/internal/http/response"
	"github.com/ivanshkirev/subscription-escrow/internal/lib/sl"
	"github.com/ivanshkirev/subscription-escrow/internal/models"
)

// Handler управляет HTTP-запросами на чтение баланса пула.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения баланса пула.
type Service interface {
	VaultBalance(ctx context.Context) (uint64, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Баланс пула
// @Description Возвращает текущий баланс пула предоплаченных средств.
// @Tags Vault
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Баланс пула"
// @Failure 404 {object} response.ErrorResponse "Реестр не инициализирован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /vault [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.escrow.vaultbalance"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	balance, err := h.service.VaultBalance(r.Context())
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			log.Error("vault account not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.DomainError(err))
			return
		}
		log.Error("failed to read vault balance", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read vault balance"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"balance": balance,
	}))
}
