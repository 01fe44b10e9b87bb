// Package query implements the read side of the account service.
package query

import (
	"context"

	"github.com/meridianbank/banking/shared/cqrs"
	"github.com/meridianbank/banking/shared/models"
)

type AccountReader interface {
	GetByID(ctx context.Context, id string) (*models.AccountView, error)
	GetByNumber(ctx context.Context, accountNumber string) (*models.AccountView, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.AccountView, error)
}

// AccountQueryService serves account read models. All reads go through the
// read repository, which prefers Redis and falls back to PostgreSQL.
type AccountQueryService struct {
	reader AccountReader
}

func NewAccountQueryService(reader AccountReader) *AccountQueryService {
	return &AccountQueryService{reader: reader}
}

func (s *AccountQueryService) GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error) {
	return s.reader.GetByID(ctx, q.AccountID)
}

func (s *AccountQueryService) GetAccountByNumber(ctx context.Context, q cqrs.GetAccountByNumberQuery) (*models.AccountView, error) {
	return s.reader.GetByNumber(ctx, q.AccountNumber)
}

func (s *AccountQueryService) ListAccountsByOwner(ctx context.Context, q cqrs.ListAccountsByOwnerQuery) ([]models.AccountView, error) {
	views, err := s.reader.ListByOwner(ctx, q.OwnerID)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []models.AccountView{}
	}
	return views, nil
}

// GetBalance returns the balance projection for an account.
func (s *AccountQueryService) GetBalance(ctx context.Context, q cqrs.GetBalanceQuery) (*models.BalanceView, error) {
	view, err := s.reader.GetByID(ctx, q.AccountID)
	if err != nil {
		return nil, err
	}
	return &models.BalanceView{
		AccountID:        view.ID,
		Balance:          view.Balance,
		AvailableBalance: view.AvailableBalance,
		Currency:         view.Currency,
	}, nil
}
