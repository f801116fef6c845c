package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ivanshkirev/subscription-escrow/internal/lib/addr"
	"github.com/ivanshkirev/subscription-escrow/internal/models"
)

// CreateSubscription в одной транзакции переводит оплату со счета плательщика
// в хранилище и вставляет запись подписки. Любой сбой откатывает всю операцию:
// при нехватке средств запись не создается, при занятом адресе подписки
// списание не сохраняется.
func (s *Storage) CreateSubscription(ctx context.Context, sub *models.Subscription, payerAddress string, amount uint64) error {
	const op = "storage.CreateSubscription"
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

	if amount > 0 {
		if err = debitTx(ctx, tx, payerAddress, amount); err != nil {
			if errors.Is(err, errInsufficientBalance) {
				return models.ErrPaymentFailed
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		if err = creditTx(ctx, tx, addr.Vault(), amount); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	query := `INSERT INTO subscriptions (address, user_uid, plan_id, start_time, end_time, active)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err = tx.ExecContext(ctx, query,
		sub.Address, sub.UserUID, sub.PlanID, sub.StartTime, sub.EndTime, sub.Active); err != nil {
		if isUniqueViolation(err) {
			return models.ErrSubscriptionAlreadyExists
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetSubscription возвращает запись подписки пользователя по адресу,
// выведенному из его UID, или ErrRecordNotFound.
func (s *Storage) GetSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT address, user_uid, plan_id, start_time, end_time, active
			  FROM subscriptions
			  WHERE address = $1`
	row := s.DB.QueryRowContext(ctx, query, addr.Subscription(userUID))

	var sub models.Subscription
	if err := row.Scan(&sub.Address, &sub.UserUID, &sub.PlanID,
		&sub.StartTime, &sub.EndTime, &sub.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// DeactivateSubscription условно гасит подписку: строка меняется только если
// она еще активна. Возвращает false, когда гасить было нечего — конкурентная
// отмена по той же записи получает false и завершается ErrNoActiveSubscription.
func (s *Storage) DeactivateSubscription(ctx context.Context, address string) (bool, error) {
	const op = "storage.DeactivateSubscription"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET active = false
			  WHERE address = $1 AND active = true`
	result, err := s.DB.ExecContext(ctx, query, address)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected == 1, nil
}
