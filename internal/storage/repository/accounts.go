package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ivanshkirev/subscription-escrow/internal/lib/addr"
	"github.com/ivanshkirev/subscription-escrow/internal/models"
)

// errInsufficientBalance — внутренний маркер неудачного условного списания;
// наружу транслируется в ErrPaymentFailed либо ErrInsufficientVaultBalance
// в зависимости от того, чей счет списывался.
var errInsufficientBalance = errors.New("insufficient balance")

// debitTx условно списывает amount со счета внутри транзакции. Ноль измененных
// строк означает, что счета нет или баланс не покрывает сумму.
func debitTx(ctx context.Context, tx *sql.Tx, address string, amount uint64) error {
	query := `UPDATE accounts
			  SET balance = balance - $2
			  WHERE address = $1 AND balance >= $2`
	result, err := tx.ExecContext(ctx, query, address, amount)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errInsufficientBalance
	}
	return nil
}

// creditTx зачисляет amount на счет внутри транзакции, создавая счет при
// первом зачислении.
func creditTx(ctx context.Context, tx *sql.Tx, address string, amount uint64) error {
	query := `INSERT INTO accounts (address, balance)
			  VALUES ($1, $2)
			  ON CONFLICT (address) DO UPDATE SET balance = accounts.balance + $2`
	_, err := tx.ExecContext(ctx, query, address, amount)
	return err
}

// CreditAccount пополняет счет и возвращает новый баланс.
func (s *Storage) CreditAccount(ctx context.Context, address string, amount uint64) (uint64, error) {
	const op = "storage.CreditAccount"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO accounts (address, balance)
			  VALUES ($1, $2)
			  ON CONFLICT (address) DO UPDATE SET balance = accounts.balance + $2
			  RETURNING balance`
	var balance uint64
	if err := s.DB.QueryRowContext(ctx, query, address, amount).Scan(&balance); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return balance, nil
}

// GetAccount возвращает счет по адресу или ErrRecordNotFound.
func (s *Storage) GetAccount(ctx context.Context, address string) (*models.Account, error) {
	const op = "storage.GetAccount"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT address, balance FROM accounts WHERE address = $1`
	var acc models.Account
	if err := s.DB.QueryRowContext(ctx, query, address).Scan(&acc.Address, &acc.Balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &acc, nil
}

// WithdrawFromVault переводит amount из хранилища на счет получателя.
// Списание авторизуется нонсом, хранящимся в реестре: перевод инициирует сама
// система, а не внешний подписант, поэтому нонс сверяется с записью реестра
// в той же транзакции, что и движение средств.
func (s *Storage) WithdrawFromVault(ctx context.Context, toAddress string, amount uint64, vaultNonce string) error {
	const op = "storage.WithdrawFromVault"
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

	var storedNonce string
	query := `SELECT vault_nonce FROM registry WHERE address = $1`
	if err = tx.QueryRowContext(ctx, query, addr.Registry()).Scan(&storedNonce); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrRecordNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if storedNonce != vaultNonce {
		return models.ErrUnauthorized
	}

	if err = debitTx(ctx, tx, addr.Vault(), amount); err != nil {
		if errors.Is(err, errInsufficientBalance) {
			return models.ErrInsufficientVaultBalance
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = creditTx(ctx, tx, toAddress, amount); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
