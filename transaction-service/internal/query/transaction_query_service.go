// Package query implements the read side of the transaction service.
package query

import (
	"context"
	"log"

	"github.com/meridianbank/banking/shared/cqrs"
	"github.com/meridianbank/banking/shared/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type TransactionReader interface {
	GetByID(ctx context.Context, id string) (*models.TransactionView, error)
	GetByReference(ctx context.Context, reference string) (*models.TransactionView, error)
	ListByAccount(ctx context.Context, accountID string, page, pageSize int) ([]models.TransactionView, error)
	ListByAccounts(ctx context.Context, accountIDs []string, page, pageSize int) ([]models.TransactionView, error)
	ListByStatus(ctx context.Context, status string) ([]models.TransactionView, error)
	ListStalePending(ctx context.Context, olderThanHours int) ([]models.TransactionView, error)
}

// AccountResolver resolves an owner's accounts through the account service.
type AccountResolver interface {
	GetAccountsByOwner(ctx context.Context, ownerID string) ([]models.AccountView, error)
}

// TransactionQueryService serves transaction read models.
type TransactionQueryService struct {
	reader   TransactionReader
	accounts AccountResolver
}

func NewTransactionQueryService(reader TransactionReader, accounts AccountResolver) *TransactionQueryService {
	return &TransactionQueryService{reader: reader, accounts: accounts}
}

func (s *TransactionQueryService) GetTransaction(ctx context.Context, q cqrs.GetTransactionQuery) (*models.TransactionView, error) {
	return s.reader.GetByID(ctx, q.TransactionID)
}

func (s *TransactionQueryService) GetTransactionByReference(ctx context.Context, q cqrs.GetTransactionByReferenceQuery) (*models.TransactionView, error) {
	return s.reader.GetByReference(ctx, q.Reference)
}

func (s *TransactionQueryService) ListTransactionsByAccount(ctx context.Context, q cqrs.ListTransactionsByAccountQuery) ([]models.TransactionView, error) {
	page, pageSize := clampPaging(q.Page, q.PageSize)
	return s.reader.ListByAccount(ctx, q.AccountID, page, pageSize)
}

// ListTransactionsByOwner resolves the owner's accounts through the account
// service, then lists transactions touching any of them. If the account
// service is unreachable the result is empty rather than an error.
func (s *TransactionQueryService) ListTransactionsByOwner(ctx context.Context, q cqrs.ListTransactionsByOwnerQuery) ([]models.TransactionView, error) {
	accounts, err := s.accounts.GetAccountsByOwner(ctx, q.OwnerID)
	if err != nil {
		log.Printf("Failed to resolve accounts for owner %s: %v", q.OwnerID, err)
		return []models.TransactionView{}, nil
	}

	accountIDs := make([]string, len(accounts))
	for i, account := range accounts {
		accountIDs[i] = account.ID
	}

	page, pageSize := clampPaging(q.Page, q.PageSize)
	return s.reader.ListByAccounts(ctx, accountIDs, page, pageSize)
}

func (s *TransactionQueryService) ListTransactionsByStatus(ctx context.Context, q cqrs.ListTransactionsByStatusQuery) ([]models.TransactionView, error) {
	return s.reader.ListByStatus(ctx, q.Status)
}

func (s *TransactionQueryService) ListStalePendingTransactions(ctx context.Context, q cqrs.ListStalePendingTransactionsQuery) ([]models.TransactionView, error) {
	olderThanHours := q.OlderThanHours
	if olderThanHours <= 0 {
		olderThanHours = 24
	}
	return s.reader.ListStalePending(ctx, olderThanHours)
}

func clampPaging(page, pageSize int) (int, int) {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
