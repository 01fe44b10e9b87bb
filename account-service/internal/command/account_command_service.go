// Package command implements the write side of the account service.
package command

import (
	"context"
	"log"

	"github.com/meridianbank/banking/account-service/internal/client"
	"github.com/meridianbank/banking/account-service/internal/domain"
	"github.com/meridianbank/banking/shared/cqrs"
	"github.com/meridianbank/banking/shared/errs"
	"github.com/meridianbank/banking/shared/events"
	"github.com/meridianbank/banking/shared/models"
	"github.com/meridianbank/banking/shared/money"
	"github.com/meridianbank/banking/shared/utils"
)

// maxNumberDraws bounds the redraw loop for account number collisions.
const maxNumberDraws = 10

type AccountStore interface {
	Create(ctx context.Context, account *domain.Account) error
	ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error)
	Mutate(ctx context.Context, id string, fn func(*domain.Account) error) (*domain.Account, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType, partitionKey string, data any) error
}

// TransactionRecorder asks the transaction service to create a record of a
// balance movement. Implementations must not block the caller and must not
// surface failures to it.
type TransactionRecorder interface {
	Record(record client.TransactionRecord)
}

type ViewCache interface {
	CacheAccountView(ctx context.Context, view *models.AccountView)
	InvalidateAccountView(ctx context.Context, id string)
}

// AccountCommandService executes account mutations. Each mutation commits
// first, then fans out: refresh the read model, publish events, and for
// credits and debits ask the transaction service to record the movement.
// Everything after the commit is best-effort and cannot fail the mutation.
type AccountCommandService struct {
	store     AccountStore
	views     ViewCache
	publisher EventPublisher
	recorder  TransactionRecorder
}

func NewAccountCommandService(store AccountStore, views ViewCache, publisher EventPublisher, recorder TransactionRecorder) *AccountCommandService {
	return &AccountCommandService{
		store:     store,
		views:     views,
		publisher: publisher,
		recorder:  recorder,
	}
}

// CreateAccount opens an account and activates it immediately. Account
// numbers are drawn at random and redrawn on collision.
func (s *AccountCommandService) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (*domain.Account, error) {
	accountNumber, err := s.drawAccountNumber(ctx)
	if err != nil {
		return nil, err
	}

	account, err := domain.NewAccount(accountNumber, cmd.OwnerID, domain.AccountType(cmd.AccountType), cmd.Currency)
	if err != nil {
		return nil, err
	}
	if err := account.Activate(); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, account); err != nil {
		return nil, err
	}

	s.views.CacheAccountView(ctx, toView(account))
	s.publish(ctx, events.AccountEventsStream, events.AccountCreated, account.ID, events.AccountCreatedEvent{
		AccountID:      account.ID,
		OwnerID:        account.OwnerID,
		AccountNumber:  account.AccountNumber,
		AccountType:    string(account.AccountType),
		InitialBalance: account.Balance.Amount(),
		Currency:       account.Balance.Currency(),
	})

	return account, nil
}

func (s *AccountCommandService) drawAccountNumber(ctx context.Context) (string, error) {
	for i := 0; i < maxNumberDraws; i++ {
		candidate := utils.GenerateAccountNumber()
		taken, err := s.store.ExistsByAccountNumber(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", errs.Validation("could not allocate a unique account number")
}

// Credit deposits money into an account. After the commit it publishes a
// MONEY_DEPOSITED event and asks the transaction service to record a
// DEPOSIT; neither outcome affects the returned account.
func (s *AccountCommandService) Credit(ctx context.Context, cmd cqrs.CreditAccountCommand) (*domain.Account, error) {
	amount, err := money.New(cmd.Amount, cmd.Currency)
	if err != nil {
		return nil, err
	}

	account, err := s.store.Mutate(ctx, cmd.AccountID, func(a *domain.Account) error {
		return a.Credit(amount)
	})
	if err != nil {
		return nil, err
	}

	s.views.CacheAccountView(ctx, toView(account))
	moved := events.MoneyMovedEvent{
		AccountID:    account.ID,
		OwnerID:      account.OwnerID,
		Amount:       amount.Amount(),
		Currency:     amount.Currency(),
		BalanceAfter: account.Balance.Amount(),
		Description:  cmd.Description,
	}
	s.publish(ctx, events.AccountEventsStream, events.MoneyDeposited, account.ID, moved)
	s.publish(ctx, events.TransactionEventsStream, events.MoneyDeposited, account.ID, moved)
	s.publish(ctx, events.FraudDetectionStream, events.MoneyDeposited, account.ID, moved)
	s.recorder.Record(client.TransactionRecord{
		Type:            "DEPOSIT",
		Amount:          amount.Amount(),
		Currency:        amount.Currency(),
		TargetAccountID: account.ID,
		OwnerID:         account.OwnerID,
		Description:     cmd.Description,
		Status:          "COMPLETED",
	})

	return account, nil
}

// Debit withdraws money from an account. Fan-out mirrors Credit with a
// MONEY_WITHDRAWN event and a WITHDRAWAL record.
func (s *AccountCommandService) Debit(ctx context.Context, cmd cqrs.DebitAccountCommand) (*domain.Account, error) {
	amount, err := money.New(cmd.Amount, cmd.Currency)
	if err != nil {
		return nil, err
	}

	account, err := s.store.Mutate(ctx, cmd.AccountID, func(a *domain.Account) error {
		return a.Debit(amount)
	})
	if err != nil {
		return nil, err
	}

	s.views.CacheAccountView(ctx, toView(account))
	moved := events.MoneyMovedEvent{
		AccountID:    account.ID,
		OwnerID:      account.OwnerID,
		Amount:       amount.Amount(),
		Currency:     amount.Currency(),
		BalanceAfter: account.Balance.Amount(),
		Description:  cmd.Description,
	}
	s.publish(ctx, events.AccountEventsStream, events.MoneyWithdrawn, account.ID, moved)
	s.publish(ctx, events.TransactionEventsStream, events.MoneyWithdrawn, account.ID, moved)
	s.publish(ctx, events.FraudDetectionStream, events.MoneyWithdrawn, account.ID, moved)
	s.recorder.Record(client.TransactionRecord{
		Type:            "WITHDRAWAL",
		Amount:          amount.Amount(),
		Currency:        amount.Currency(),
		SourceAccountID: account.ID,
		OwnerID:         account.OwnerID,
		Description:     cmd.Description,
		Status:          "COMPLETED",
	})

	return account, nil
}

// BlockFunds places a hold on part of the available balance.
func (s *AccountCommandService) BlockFunds(ctx context.Context, cmd cqrs.BlockFundsCommand) (*domain.Account, error) {
	amount, err := money.New(cmd.Amount, cmd.Currency)
	if err != nil {
		return nil, err
	}

	account, err := s.store.Mutate(ctx, cmd.AccountID, func(a *domain.Account) error {
		return a.BlockFunds(amount)
	})
	if err != nil {
		return nil, err
	}

	s.views.CacheAccountView(ctx, toView(account))
	s.publish(ctx, events.AccountEventsStream, events.FundsBlocked, account.ID, events.MoneyMovedEvent{
		AccountID:    account.ID,
		OwnerID:      account.OwnerID,
		Amount:       amount.Amount(),
		Currency:     amount.Currency(),
		BalanceAfter: account.Balance.Amount(),
		Description:  cmd.Description,
	})

	return account, nil
}

// ReleaseFunds returns previously blocked funds to the available balance.
func (s *AccountCommandService) ReleaseFunds(ctx context.Context, cmd cqrs.ReleaseFundsCommand) (*domain.Account, error) {
	amount, err := money.New(cmd.Amount, cmd.Currency)
	if err != nil {
		return nil, err
	}

	account, err := s.store.Mutate(ctx, cmd.AccountID, func(a *domain.Account) error {
		return a.ReleaseFunds(amount)
	})
	if err != nil {
		return nil, err
	}

	s.views.CacheAccountView(ctx, toView(account))
	s.publish(ctx, events.AccountEventsStream, events.FundsReleased, account.ID, events.MoneyMovedEvent{
		AccountID:    account.ID,
		OwnerID:      account.OwnerID,
		Amount:       amount.Amount(),
		Currency:     amount.Currency(),
		BalanceAfter: account.Balance.Amount(),
		Description:  cmd.Description,
	})

	return account, nil
}

// Suspend freezes all mutations on an account until it is reactivated
// through support channels.
func (s *AccountCommandService) Suspend(ctx context.Context, cmd cqrs.SuspendAccountCommand) (*domain.Account, error) {
	account, err := s.store.Mutate(ctx, cmd.AccountID, func(a *domain.Account) error {
		return a.Suspend()
	})
	if err != nil {
		return nil, err
	}

	s.views.CacheAccountView(ctx, toView(account))
	s.publish(ctx, events.AccountEventsStream, events.AccountSuspended, account.ID, events.AccountStatusChangedEvent{
		AccountID: account.ID,
		OwnerID:   account.OwnerID,
		Status:    string(account.Status),
	})

	return account, nil
}

// Close permanently closes a zero-balance account.
func (s *AccountCommandService) Close(ctx context.Context, cmd cqrs.CloseAccountCommand) (*domain.Account, error) {
	account, err := s.store.Mutate(ctx, cmd.AccountID, func(a *domain.Account) error {
		return a.Close()
	})
	if err != nil {
		return nil, err
	}

	s.views.InvalidateAccountView(ctx, account.ID)
	s.publish(ctx, events.AccountEventsStream, events.AccountClosed, account.ID, events.AccountStatusChangedEvent{
		AccountID: account.ID,
		OwnerID:   account.OwnerID,
		Status:    string(account.Status),
	})

	return account, nil
}

func (s *AccountCommandService) publish(ctx context.Context, stream, eventType, key string, data any) {
	if err := s.publisher.Publish(ctx, stream, eventType, key, data); err != nil {
		log.Printf("Failed to publish %s: %v", eventType, err)
	}
}

func toView(account *domain.Account) *models.AccountView {
	return &models.AccountView{
		ID:               account.ID,
		AccountNumber:    account.AccountNumber,
		OwnerID:          account.OwnerID,
		AccountType:      string(account.AccountType),
		Status:           string(account.Status),
		Balance:          account.Balance.Amount(),
		AvailableBalance: account.AvailableBalance.Amount(),
		Currency:         account.Balance.Currency(),
		DailyLimit:       account.DailyLimit,
		MonthlyLimit:     account.MonthlyLimit,
		CreatedAt:        account.CreatedAt,
		UpdatedAt:        account.UpdatedAt,
		ClosedAt:         account.ClosedAt,
	}
}
