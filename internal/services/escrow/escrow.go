// Package escrow реализует бизнес-логику реестра подписок:
// инициализацию, планы, подписки и вывод средств из пула.
package escrow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/ivanshkirev/subscription-escrow/internal/lib/addr"
	"github.com/ivanshkirev/subscription-escrow/internal/lib/sl"
	"github.com/ivanshkirev/subscription-escrow/internal/metrics"
	"github.com/ivanshkirev/subscription-escrow/internal/models"
	"github.com/ivanshkirev/subscription-escrow/internal/rabbitmq"
)

// Repository описывает операции хранилища, нужные сервису.
type Repository interface {
	CreateRegistry(ctx context.Context, reg *models.Registry) error
	GetRegistry(ctx context.Context) (*models.Registry, error)
	CreatePlan(ctx context.Context, price uint64, duration int64) (*models.Plan, error)
	GetPlan(ctx context.Context, planID uint32) (*models.Plan, error)
	CreateSubscription(ctx context.Context, sub *models.Subscription, payerAddress string, amount uint64) error
	GetSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
	DeactivateSubscription(ctx context.Context, address string) (bool, error)
	CreditAccount(ctx context.Context, address string, amount uint64) (uint64, error)
	GetAccount(ctx context.Context, address string) (*models.Account, error)
	WithdrawFromVault(ctx context.Context, toAddress string, amount uint64, vaultNonce string) error
}

// Cache хранит планы для сквозного чтения.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Publisher публикует доменные события.
type Publisher interface {
	Publish(routingKey string, event any) error
}

// Clock отдает текущее unix-время. Выделен в интерфейс ради тестов.
type Clock interface {
	Now() int64
}

// SystemClock — реализация Clock поверх time.Now.
type SystemClock struct{}

func (SystemClock) Now() int64 { return time.Now().Unix() }

const planCacheTTL = 10 * time.Minute

func planCacheKey(planID uint32) string {
	return fmt.Sprintf("plan:%d", planID)
}

// Service связывает хранилище, кеш и шину событий.
type Service struct {
	log       *slog.Logger
	repo      Repository
	cache     Cache
	publisher Publisher
	clock     Clock
	vaultSeed string
}

// New создает Service.
func New(log *slog.Logger, repo Repository, cache Cache, publisher Publisher, clock Clock, vaultSeed string) *Service {
	return &Service{
		log:       log,
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		clock:     clock,
		vaultSeed: vaultSeed,
	}
}

// deriveVaultNonce выводит нонс хранилища из секретного сида.
// Нонс сохраняется в реестре при инициализации и сверяется при выводе средств.
func deriveVaultNonce(seed string) string {
	sum := sha256.Sum256([]byte(seed + ":vault"))
	return hex.EncodeToString(sum[:])
}

// Initialize создает реестр с владельцем, счетчиком планов и нонсом хранилища.
// Повторный вызов возвращает models.ErrAlreadyInitialized.
func (s *Service) Initialize(ctx context.Context, ownerUID string) (*models.Registry, error) {
	const op = "services.escrow.Initialize"

	reg := &models.Registry{
		Address:    addr.Registry(),
		OwnerUID:   ownerUID,
		NextPlanID: 1,
		VaultNonce: deriveVaultNonce(s.vaultSeed),
	}
	if err := s.repo.CreateRegistry(ctx, reg); err != nil {
		metrics.IncError("initialize")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.IncOK("initialize")
	s.log.Info("registry initialized", slog.String("owner", ownerUID))
	return reg, nil
}

// CreatePlan создает новый план. Доступно только владельцу реестра.
func (s *Service) CreatePlan(ctx context.Context, callerUID string, price uint64, duration int64) (*models.Plan, error) {
	const op = "services.escrow.CreatePlan"

	reg, err := s.repo.GetRegistry(ctx)
	if err != nil {
		metrics.IncError("create_plan")
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if reg.OwnerUID != callerUID {
		metrics.IncError("create_plan")
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}

	plan, err := s.repo.CreatePlan(ctx, price, duration)
	if err != nil {
		metrics.IncError("create_plan")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(planCacheKey(plan.PlanID), plan, planCacheTTL); err != nil {
		s.log.Warn("failed to cache plan", sl.Err(err))
	}
	if err := s.publisher.Publish(rabbitmq.RoutingKeyPlanCreated, models.PlanCreated{
		PlanID:   plan.PlanID,
		Price:    plan.Price,
		Duration: plan.Duration,
	}); err != nil {
		s.log.Warn("failed to publish plan created event", sl.Err(err))
	}

	metrics.IncOK("create_plan")
	s.log.Info("plan created", slog.Any("plan_id", plan.PlanID))
	return plan, nil
}

// loadPlan читает план из кеша, при промахе — из хранилища.
func (s *Service) loadPlan(ctx context.Context, planID uint32) (*models.Plan, error) {
	var cached models.Plan
	found, err := s.cache.Get(planCacheKey(planID), &cached)
	if err != nil {
		s.log.Warn("plan cache read failed", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(planCacheKey(planID), plan, planCacheTTL); err != nil {
		s.log.Warn("failed to cache plan", sl.Err(err))
	}
	return plan, nil
}

// Subscribe оформляет подписку пользователя на план: списывает цену плана
// со счета пользователя в пул и создает запись подписки.
func (s *Service) Subscribe(ctx context.Context, userUID string, planID uint32) (*models.Subscription, error) {
	const op = "services.escrow.Subscribe"

	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		metrics.IncError("subscribe")
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if plan.PlanID != planID {
		metrics.IncError("subscribe")
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidPlanID)
	}
	if !plan.Active {
		metrics.IncError("subscribe")
		return nil, fmt.Errorf("%s: %w", op, models.ErrPlanInactive)
	}

	now := s.clock.Now()
	sub := &models.Subscription{
		Address:   addr.Subscription(userUID),
		UserUID:   userUID,
		PlanID:    planID,
		StartTime: now,
		EndTime:   now + plan.Duration,
		Active:    true,
	}
	if err := s.repo.CreateSubscription(ctx, sub, addr.Account(userUID), plan.Price); err != nil {
		metrics.IncError("subscribe")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.publisher.Publish(rabbitmq.RoutingKeySubscribed, models.Subscribed{
		UserUID: userUID,
		PlanID:  planID,
		EndTime: sub.EndTime,
	}); err != nil {
		s.log.Warn("failed to publish subscribed event", sl.Err(err))
	}

	metrics.IncOK("subscribe")
	s.log.Info("subscription created",
		slog.String("user", userUID),
		slog.Any("plan_id", planID))
	return sub, nil
}

// CancelSubscription деактивирует подписку пользователя. Средства не возвращаются.
func (s *Service) CancelSubscription(ctx context.Context, userUID string) error {
	const op = "services.escrow.CancelSubscription"

	sub, err := s.repo.GetSubscription(ctx, userUID)
	if err != nil {
		metrics.IncError("cancel_subscription")
		return fmt.Errorf("%s: %w", op, err)
	}
	if !sub.Active {
		metrics.IncError("cancel_subscription")
		return fmt.Errorf("%s: %w", op, models.ErrNoActiveSubscription)
	}

	ok, err := s.repo.DeactivateSubscription(ctx, sub.Address)
	if err != nil {
		metrics.IncError("cancel_subscription")
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		// Подписку успели деактивировать параллельно.
		metrics.IncError("cancel_subscription")
		return fmt.Errorf("%s: %w", op, models.ErrNoActiveSubscription)
	}

	if err := s.publisher.Publish(rabbitmq.RoutingKeySubscriptionCancelled, models.SubscriptionCancelled{
		UserUID: userUID,
	}); err != nil {
		s.log.Warn("failed to publish subscription cancelled event", sl.Err(err))
	}

	metrics.IncOK("cancel_subscription")
	s.log.Info("subscription cancelled", slog.String("user", userUID))
	return nil
}

// Withdraw переводит средства из пула на счет владельца реестра.
// Доступно только владельцу; нонс хранилища сверяется внутри транзакции.
func (s *Service) Withdraw(ctx context.Context, callerUID string, amount uint64) error {
	const op = "services.escrow.Withdraw"

	reg, err := s.repo.GetRegistry(ctx)
	if err != nil {
		metrics.IncError("withdraw")
		return fmt.Errorf("%s: %w", op, err)
	}
	if reg.OwnerUID != callerUID {
		metrics.IncError("withdraw")
		return fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}

	if err := s.repo.WithdrawFromVault(ctx, addr.Account(callerUID), amount, reg.VaultNonce); err != nil {
		metrics.IncError("withdraw")
		return fmt.Errorf("%s: %w", op, err)
	}

	metrics.IncOK("withdraw")
	s.log.Info("vault withdrawal",
		slog.String("owner", callerUID),
		slog.Uint64("amount", amount))
	return nil
}

// IsSubscriptionActive проверяет, активна ли подписка пользователя на текущий момент.
// Подписка активна, пока не отменена и текущее время не позже end_time включительно.
func (s *Service) IsSubscriptionActive(ctx context.Context, userUID string) (bool, error) {
	const op = "services.escrow.IsSubscriptionActive"

	sub, err := s.repo.GetSubscription(ctx, userUID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return sub.Active && s.clock.Now() <= sub.EndTime, nil
}

// Deposit пополняет счет пользователя и возвращает новый баланс.
func (s *Service) Deposit(ctx context.Context, userUID string, amount uint64) (uint64, error) {
	const op = "services.escrow.Deposit"

	balance, err := s.repo.CreditAccount(ctx, addr.Account(userUID), amount)
	if err != nil {
		metrics.IncError("deposit")
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	metrics.IncOK("deposit")
	return balance, nil
}

// VaultBalance возвращает текущий баланс пула.
func (s *Service) VaultBalance(ctx context.Context) (uint64, error) {
	const op = "services.escrow.VaultBalance"

	acc, err := s.repo.GetAccount(ctx, addr.Vault())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return acc.Balance, nil
}
