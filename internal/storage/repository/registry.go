package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ivanshkirev/subscription-escrow/internal/lib/addr"
	"github.com/ivanshkirev/subscription-escrow/internal/models"
)

// CreateRegistry создает единственную запись реестра и счет-хранилище с нулевым
// балансом в одной транзакции. Повторный вызов завершается ErrAlreadyInitialized:
// адрес реестра детерминирован, вставка по занятому адресу нарушает первичный ключ.
func (s *Storage) CreateRegistry(ctx context.Context, reg *models.Registry) error {
	const op = "storage.CreateRegistry"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO registry (address, owner_uid, next_plan_id, vault_nonce)
			  VALUES ($1, $2, $3, $4)`
	if _, err = tx.ExecContext(ctx, query,
		reg.Address, reg.OwnerUID, reg.NextPlanID, reg.VaultNonce); err != nil {
		if isUniqueViolation(err) {
			return models.ErrAlreadyInitialized
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	query = `INSERT INTO accounts (address, balance)
			 VALUES ($1, 0)
			 ON CONFLICT (address) DO NOTHING`
	if _, err = tx.ExecContext(ctx, query, addr.Vault()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetRegistry возвращает запись реестра или ErrRecordNotFound, если
// инициализация еще не выполнялась.
func (s *Storage) GetRegistry(ctx context.Context) (*models.Registry, error) {
	const op = "storage.GetRegistry"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT address, owner_uid, next_plan_id, vault_nonce
			  FROM registry
			  WHERE address = $1`
	row := s.DB.QueryRowContext(ctx, query, addr.Registry())

	var reg models.Registry
	if err := row.Scan(&reg.Address, &reg.OwnerUID, &reg.NextPlanID, &reg.VaultNonce); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &reg, nil
}

// CreatePlan атомарно выделяет plan_id из счетчика реестра и вставляет запись
// плана по адресу, выведенному из выделенного идентификатора. Блокировка строки
// реестра сериализует конкурентные создания планов: два вызова не могут получить
// один и тот же идентификатор.
func (s *Storage) CreatePlan(ctx context.Context, price uint64, duration int64) (*models.Plan, error) {
	const op = "storage.CreatePlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE registry
			  SET next_plan_id = next_plan_id + 1
			  WHERE address = $1
			  RETURNING next_plan_id - 1`
	var planID uint32
	if err = tx.QueryRowContext(ctx, query, addr.Registry()).Scan(&planID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	plan := models.Plan{
		Address:  addr.Plan(planID),
		PlanID:   planID,
		Price:    price,
		Duration: duration,
		Active:   true,
	}

	query = `INSERT INTO plans (address, plan_id, price, duration, active)
			 VALUES ($1, $2, $3, $4, $5)`
	if _, err = tx.ExecContext(ctx, query,
		plan.Address, plan.PlanID, plan.Price, plan.Duration, plan.Active); err != nil {
		if isUniqueViolation(err) {
			// При корректном счетчике недостижимо: адрес выводится из
			// свежевыделенного идентификатора.
			return nil, fmt.Errorf("%s: plan address collision: %w", op, err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &plan, nil
}

// GetPlan возвращает план по идентификатору через детерминированный адрес.
func (s *Storage) GetPlan(ctx context.Context, planID uint32) (*models.Plan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT address, plan_id, price, duration, active
			  FROM plans
			  WHERE address = $1`
	row := s.DB.QueryRowContext(ctx, query, addr.Plan(planID))

	var plan models.Plan
	if err := row.Scan(&plan.Address, &plan.PlanID, &plan.Price, &plan.Duration, &plan.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &plan, nil
}
