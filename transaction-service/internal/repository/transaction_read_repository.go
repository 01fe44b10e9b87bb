package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"

	"github.com/meridianbank/banking/shared/errs"
	"github.com/meridianbank/banking/shared/models"
	sharedredis "github.com/meridianbank/banking/shared/redis"
)

const transactionViewKeyPrefix = "transaction:view:"

// TransactionReadRepository serves transaction read models. Single-record
// lookups go through Redis; list queries always hit PostgreSQL.
type TransactionReadRepository struct {
	db    *sql.DB
	cache *sharedredis.ViewCache[models.TransactionView]
}

func NewTransactionReadRepository(db *sql.DB, redisClient *goredis.Client) *TransactionReadRepository {
	return &TransactionReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[models.TransactionView](redisClient, 0),
	}
}

func (r *TransactionReadRepository) GetByID(ctx context.Context, id string) (*models.TransactionView, error) {
	if view, ok := r.cache.Get(ctx, transactionViewKeyPrefix+id); ok {
		return view, nil
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	view, err := r.scanView(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("transaction", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	r.CacheTransactionView(ctx, view)
	return view, nil
}

// GetByReference resolves the display reference. The cache is keyed by ID,
// so reference lookups always go to PostgreSQL and warm the ID key.
func (r *TransactionReadRepository) GetByReference(ctx context.Context, reference string) (*models.TransactionView, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reference = $1`
	view, err := r.scanView(r.db.QueryRowContext(ctx, query, reference))
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("transaction", reference)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	r.CacheTransactionView(ctx, view)
	return view, nil
}

// ListByAccount pages transactions where the account is source or target,
// newest first.
func (r *TransactionReadRepository) ListByAccount(ctx context.Context, accountID string, page, pageSize int) ([]models.TransactionView, error) {
	query := `
		SELECT ` + transactionColumns + ` FROM transactions
		WHERE source_account_id = $1 OR target_account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	return r.list(ctx, query, accountID, pageSize, page*pageSize)
}

// ListByAccounts pages transactions touching any of the given accounts,
// newest first. Used for owner history after resolving the owner's accounts.
func (r *TransactionReadRepository) ListByAccounts(ctx context.Context, accountIDs []string, page, pageSize int) ([]models.TransactionView, error) {
	if len(accountIDs) == 0 {
		return []models.TransactionView{}, nil
	}
	query := `
		SELECT ` + transactionColumns + ` FROM transactions
		WHERE source_account_id = ANY($1) OR target_account_id = ANY($1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	return r.list(ctx, query, pq.Array(accountIDs), pageSize, page*pageSize)
}

// ListByStatus returns all transactions in a status, oldest first.
func (r *TransactionReadRepository) ListByStatus(ctx context.Context, status string) ([]models.TransactionView, error) {
	query := `
		SELECT ` + transactionColumns + ` FROM transactions
		WHERE status = $1
		ORDER BY created_at ASC`
	return r.list(ctx, query, status)
}

// ListStalePending returns PENDING transactions created more than the given
// number of hours ago, oldest first.
func (r *TransactionReadRepository) ListStalePending(ctx context.Context, olderThanHours int) ([]models.TransactionView, error) {
	query := `
		SELECT ` + transactionColumns + ` FROM transactions
		WHERE status = 'PENDING' AND created_at < NOW() - make_interval(hours => $1)
		ORDER BY created_at ASC`
	return r.list(ctx, query, olderThanHours)
}

func (r *TransactionReadRepository) list(ctx context.Context, query string, args ...any) ([]models.TransactionView, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	views := []models.TransactionView{}
	for rows.Next() {
		view, err := r.scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		views = append(views, *view)
	}
	return views, rows.Err()
}

// CacheTransactionView stores or refreshes the Redis read model entry.
func (r *TransactionReadRepository) CacheTransactionView(ctx context.Context, view *models.TransactionView) {
	r.cache.Set(ctx, transactionViewKeyPrefix+view.ID, view)
}

func (r *TransactionReadRepository) scanView(row rowScanner) (*models.TransactionView, error) {
	var (
		view        models.TransactionView
		source      sql.NullString
		target      sql.NullString
		processedAt sql.NullTime
	)
	err := row.Scan(
		&view.ID, &view.Reference, &view.Type, &view.Status,
		&view.Amount, &view.Currency,
		&source, &target, &view.Description, &view.ExternalReference,
		&view.OwnerID, &view.FailureReason,
		&view.CreatedAt, &view.UpdatedAt, &processedAt,
	)
	if err != nil {
		return nil, err
	}
	view.SourceAccountID = source.String
	view.TargetAccountID = target.String
	if processedAt.Valid {
		t := processedAt.Time
		view.ProcessedAt = &t
	}
	return &view, nil
}
