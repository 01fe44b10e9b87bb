// Package repository persists transactions in PostgreSQL and serves read
// models through Redis.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/meridianbank/banking/shared/errs"
	"github.com/meridianbank/banking/shared/money"
	"github.com/meridianbank/banking/transaction-service/internal/domain"
)

// TransactionWriteRepository owns all writes to the transactions table.
type TransactionWriteRepository struct {
	db *sql.DB
}

func NewTransactionWriteRepository(db *sql.DB) *TransactionWriteRepository {
	return &TransactionWriteRepository{db: db}
}

const transactionColumns = `id, reference, transaction_type, status, amount, currency,
	source_account_id, target_account_id, description, external_reference,
	owner_id, failure_reason, created_at, updated_at, processed_at`

func (r *TransactionWriteRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID, tx.Reference, tx.Type, tx.Status,
		tx.Amount.Amount(), tx.Amount.Currency(),
		nullable(tx.SourceAccountID), nullable(tx.TargetAccountID),
		tx.Description, tx.ExternalReference,
		tx.OwnerID, tx.FailureReason,
		tx.CreatedAt, tx.UpdatedAt, tx.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *TransactionWriteRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("transaction", id)
	}
	return tx, err
}

// Mutate loads the transaction under a row lock, applies fn and persists the
// result in one database transaction. Concurrent lifecycle operations on the
// same transaction serialize here.
func (r *TransactionWriteRepository) Mutate(ctx context.Context, id string, fn func(*domain.Transaction) error) (*domain.Transaction, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`
	tx, err := scanTransaction(dbTx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("transaction", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		return nil, err
	}

	update := `
		UPDATE transactions
		SET status = $2, failure_reason = $3, external_reference = $4,
		    updated_at = $5, processed_at = $6
		WHERE id = $1`
	if _, err := dbTx.ExecContext(ctx, update,
		tx.ID, tx.Status, tx.FailureReason, tx.ExternalReference,
		tx.UpdatedAt, tx.ProcessedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return tx, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		tx          domain.Transaction
		amount      decimal.Decimal
		currency    string
		source      sql.NullString
		target      sql.NullString
		processedAt sql.NullTime
	)
	err := row.Scan(
		&tx.ID, &tx.Reference, &tx.Type, &tx.Status, &amount, &currency,
		&source, &target, &tx.Description, &tx.ExternalReference,
		&tx.OwnerID, &tx.FailureReason,
		&tx.CreatedAt, &tx.UpdatedAt, &processedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.Amount, err = money.New(amount, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to restore amount: %w", err)
	}
	tx.SourceAccountID = source.String
	tx.TargetAccountID = target.String
	if processedAt.Valid {
		t := processedAt.Time
		tx.ProcessedAt = &t
	}
	return &tx, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
