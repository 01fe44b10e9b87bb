package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/meridianbank/banking/account-service/internal/domain"
	"github.com/meridianbank/banking/shared/errs"
	"github.com/meridianbank/banking/shared/money"
)

// AccountWriteRepository handles all state-mutating operations for accounts.
// It operates exclusively against the PostgreSQL write store (source of truth).
type AccountWriteRepository struct {
	db *sql.DB
}

func NewAccountWriteRepository(db *sql.DB) *AccountWriteRepository {
	return &AccountWriteRepository{db: db}
}

const accountColumns = `id, account_number, owner_id, account_type, status,
	balance, available_balance, currency, daily_limit, monthly_limit,
	created_at, updated_at, closed_at`

func (r *AccountWriteRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, account_number, owner_id, account_type, status,
			balance, available_balance, currency, daily_limit, monthly_limit,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.AccountNumber, account.OwnerID,
		string(account.AccountType), string(account.Status),
		account.Balance.Amount(), account.AvailableBalance.Amount(),
		account.Balance.Currency(), account.DailyLimit, account.MonthlyLimit,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *AccountWriteRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("account", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (r *AccountWriteRepository) ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)`,
		accountNumber,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account number: %w", err)
	}
	return exists, nil
}

// Mutate loads the account row under a row lock, applies fn, and persists
// the result — all inside one storage transaction. Concurrent mutations on
// the same account serialize on the row lock; different accounts proceed in
// parallel. Any error from fn rolls the transaction back untouched.
func (r *AccountWriteRepository) Mutate(ctx context.Context, id string, fn func(*domain.Account) error) (*domain.Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	account, err := scanAccount(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("account", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}

	if err := fn(account); err != nil {
		return nil, err
	}

	update := `
		UPDATE accounts
		SET status = $2, balance = $3, available_balance = $4,
			updated_at = $5, closed_at = $6
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, update,
		account.ID, string(account.Status),
		account.Balance.Amount(), account.AvailableBalance.Amount(),
		account.UpdatedAt, account.ClosedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit account update: %w", err)
	}
	return account, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		account             domain.Account
		accountType, status string
		balance, available  decimal.Decimal
		currency            string
		closedAt            sql.NullTime
	)
	err := row.Scan(
		&account.ID, &account.AccountNumber, &account.OwnerID,
		&accountType, &status, &balance, &available, &currency,
		&account.DailyLimit, &account.MonthlyLimit,
		&account.CreatedAt, &account.UpdatedAt, &closedAt,
	)
	if err != nil {
		return nil, err
	}

	account.AccountType = domain.AccountType(accountType)
	account.Status = domain.AccountStatus(status)
	if account.Balance, err = money.New(balance, currency); err != nil {
		return nil, fmt.Errorf("corrupt balance row: %w", err)
	}
	if account.AvailableBalance, err = money.New(available, currency); err != nil {
		return nil, fmt.Errorf("corrupt balance row: %w", err)
	}
	if closedAt.Valid {
		t := closedAt.Time
		account.ClosedAt = &t
	}
	return &account, nil
}
