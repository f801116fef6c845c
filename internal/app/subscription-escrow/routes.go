package subscriptionescrow

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/ivanshkirev/subscription-escrow/internal/http/handlers/auth/login"
	"github.com/ivanshkirev/subscription-escrow/internal/http/handlers/auth/register"
	"github.com/ivanshkirev/subscription-escrow/internal/http/handlers/escrow/cancel"
	"github.com/ivanshkirev/subscription-escrow/internal/http/handlers/escrow/deposit"
	"github.com/ivanshkirev/subscription-escrow/internal/http/handlers/escrow/initialize"
	"github.com/ivanshkirev/subscription-escrow/internal/http/handlers/escrow/plancreate"
	"github.com/ivanshkirev/subscription-escrow/internal/http/handlers/escrow/status"
	"github.com/ivanshkirev/subscription-escrow/internal/http/handlers/escrow/subscribe"
	"github.com/ivanshkirev/subscription-escrow/internal/http/handlers/escrow/vaultbalance"
	"github.com/ivanshkirev/subscription-escrow/internal/http/handlers/escrow/withdraw"
	"github.com/ivanshkirev/subscription-escrow/internal/http/middlewarectx"
	authservice "github.com/ivanshkirev/subscription-escrow/internal/services/auth"
	escrowservice "github.com/ivanshkirev/subscription-escrow/internal/services/escrow"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, authService *authservice.Service, escrowService *escrowservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	limiter := rate.NewLimiter(10, 30)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(limiter, logger))
			r.Post("/registry", initialize.New(logger, escrowService).ServeHTTP)
			r.Post("/plans", plancreate.New(logger, escrowService).ServeHTTP)
			r.Post("/subscriptions", subscribe.New(logger, escrowService).ServeHTTP)
			r.Delete("/subscriptions", cancel.New(logger, escrowService).ServeHTTP)
			r.Get("/subscriptions/status", status.New(logger, escrowService).ServeHTTP)
			r.Post("/accounts/deposit", deposit.New(logger, escrowService).ServeHTTP)
			r.Get("/vault", vaultbalance.New(logger, escrowService).ServeHTTP)
			r.Post("/vault/withdraw", withdraw.New(logger, escrowService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
