package repository

import (
	"context"
	"database/sql"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/meridianbank/banking/shared/errs"
	"github.com/meridianbank/banking/shared/models"
	sharedredis "github.com/meridianbank/banking/shared/redis"
)

const accountViewKeyPrefix = "account:view:"

// AccountReadRepository handles all read operations for accounts.
// It treats Redis as the primary read store and falls back to PostgreSQL
// transparently, warming the cache on every cold read.
type AccountReadRepository struct {
	db    *sql.DB
	cache *sharedredis.ViewCache[models.AccountView]
}

func NewAccountReadRepository(db *sql.DB, redisClient *goredis.Client) *AccountReadRepository {
	return &AccountReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[models.AccountView](redisClient, 0),
	}
}

const accountViewColumns = `id, account_number, owner_id, account_type, status,
	balance, available_balance, currency, daily_limit, monthly_limit,
	created_at, updated_at, closed_at`

// GetByID returns an AccountView, trying Redis first then PostgreSQL.
func (r *AccountReadRepository) GetByID(ctx context.Context, id string) (*models.AccountView, error) {
	if view, ok := r.cache.Get(ctx, accountViewKeyPrefix+id); ok {
		return view, nil
	}

	query := `SELECT ` + accountViewColumns + ` FROM accounts WHERE id = $1`
	view, err := r.scanView(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("account", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	r.CacheAccountView(ctx, view)
	return view, nil
}

// GetByNumber looks the account up by account number. The cache is keyed by
// ID, so number lookups always go to PostgreSQL and warm the ID key.
func (r *AccountReadRepository) GetByNumber(ctx context.Context, accountNumber string) (*models.AccountView, error) {
	query := `SELECT ` + accountViewColumns + ` FROM accounts WHERE account_number = $1`
	view, err := r.scanView(r.db.QueryRowContext(ctx, query, accountNumber))
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("account", accountNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	r.CacheAccountView(ctx, view)
	return view, nil
}

// ListByOwner returns all AccountViews for the given owner from PostgreSQL.
func (r *AccountReadRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.AccountView, error) {
	query := `SELECT ` + accountViewColumns + ` FROM accounts WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	views := []models.AccountView{}
	for rows.Next() {
		view, err := r.scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		views = append(views, *view)
	}
	return views, rows.Err()
}

// CacheAccountView stores or refreshes the Redis read model for an account.
// Called by the command service after every mutation to keep the read model
// current.
func (r *AccountReadRepository) CacheAccountView(ctx context.Context, view *models.AccountView) {
	r.cache.Set(ctx, accountViewKeyPrefix+view.ID, view)
}

// InvalidateAccountView removes the Redis read model entry for an account.
func (r *AccountReadRepository) InvalidateAccountView(ctx context.Context, id string) {
	r.cache.Delete(ctx, accountViewKeyPrefix+id)
}

func (r *AccountReadRepository) scanView(row rowScanner) (*models.AccountView, error) {
	var (
		view     models.AccountView
		closedAt sql.NullTime
	)
	err := row.Scan(
		&view.ID, &view.AccountNumber, &view.OwnerID,
		&view.AccountType, &view.Status,
		&view.Balance, &view.AvailableBalance, &view.Currency,
		&view.DailyLimit, &view.MonthlyLimit,
		&view.CreatedAt, &view.UpdatedAt, &closedAt,
	)
	if err != nil {
		return nil, err
	}
	if closedAt.Valid {
		t := closedAt.Time
		view.ClosedAt = &t
	}
	return &view, nil
}
