package query

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/meridianbank/banking/shared/cqrs"
	"github.com/meridianbank/banking/shared/errs"
	"github.com/meridianbank/banking/shared/models"
)

type readerMock struct {
	getFn  func(id string) (*models.AccountView, error)
	listFn func(ownerID string) ([]models.AccountView, error)
}

func (m *readerMock) GetByID(_ context.Context, id string) (*models.AccountView, error) {
	return m.getFn(id)
}

func (m *readerMock) GetByNumber(_ context.Context, accountNumber string) (*models.AccountView, error) {
	return nil, errs.NotFound("account", accountNumber)
}

func (m *readerMock) ListByOwner(_ context.Context, ownerID string) ([]models.AccountView, error) {
	return m.listFn(ownerID)
}

func TestListAccountsByOwnerNeverReturnsNil(t *testing.T) {
	service := NewAccountQueryService(&readerMock{
		listFn: func(string) ([]models.AccountView, error) { return nil, nil },
	})

	views, err := service.ListAccountsByOwner(context.Background(), cqrs.ListAccountsByOwnerQuery{OwnerID: "owner-1"})
	if err != nil {
		t.Fatalf("ListAccountsByOwner: %v", err)
	}
	if views == nil {
		t.Fatal("expected empty slice for an owner with no accounts, got nil")
	}
	if len(views) != 0 {
		t.Errorf("expected no accounts, got %d", len(views))
	}
}

func TestGetBalanceProjectsAvailableBalance(t *testing.T) {
	service := NewAccountQueryService(&readerMock{
		getFn: func(id string) (*models.AccountView, error) {
			return &models.AccountView{
				ID:               id,
				Balance:          decimal.RequireFromString("100.00"),
				AvailableBalance: decimal.RequireFromString("70.00"),
				Currency:         "USD",
			}, nil
		},
	})

	balance, err := service.GetBalance(context.Background(), cqrs.GetBalanceQuery{AccountID: "acc-1"})
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if balance.AccountID != "acc-1" || balance.Currency != "USD" {
		t.Errorf("unexpected balance view: %+v", balance)
	}
	if !balance.Balance.Equal(decimal.RequireFromString("100.00")) ||
		!balance.AvailableBalance.Equal(decimal.RequireFromString("70.00")) {
		t.Errorf("unexpected amounts: %+v", balance)
	}
}
