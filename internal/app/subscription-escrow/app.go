// Package subscriptionescrow собирает приложение: хранилище, кеш, шину событий,
// сервисы и HTTP-сервер с маршрутами.
package subscriptionescrow

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/ivanshkirev/subscription-escrow/internal/cache"
	"github.com/ivanshkirev/subscription-escrow/internal/config"
	"github.com/ivanshkirev/subscription-escrow/internal/lib/jwt"
	"github.com/ivanshkirev/subscription-escrow/internal/migrations"
	"github.com/ivanshkirev/subscription-escrow/internal/rabbitmq"
	authservice "github.com/ivanshkirev/subscription-escrow/internal/services/auth"
	escrowservice "github.com/ivanshkirev/subscription-escrow/internal/services/escrow"
	"github.com/ivanshkirev/subscription-escrow/internal/storage/repository"
)

// App держит HTTP-сервер и ресурсы, которые нужно закрыть при остановке.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	rabbit *amqp.Connection
}

// New создает приложение: подключает Postgres, прогоняет миграции,
// поднимает Redis и RabbitMQ, собирает сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.AddressRabbit, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, err
	}
	rabbitCh, err := rabbitmq.SetupChannel(rabbitConn)
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(rabbitCh)

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.New(db, jwtMaker)
	escrowService := escrowservice.New(logger, db, cacheRedis, publisher,
		escrowservice.SystemClock{}, cfg.VaultSeed)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, escrowService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		rabbit: rabbitConn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
// Соединения с RabbitMQ и базой закрываются на любом пути выхода.
func (a *App) Run(ctx context.Context) error {
	defer a.closeResources()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	}
}

func (a *App) closeResources() {
	if a.rabbit != nil {
		_ = a.rabbit.Close()
	}
	if a.db != nil && a.db.DB != nil {
		_ = a.db.DB.Close()
	}
}
