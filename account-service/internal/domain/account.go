// Package domain holds the account aggregate. Every balance rule and
// lifecycle rule lives here; repositories persist whatever the aggregate
// decided, and never apply rules of their own.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridianbank/banking/shared/errs"
	"github.com/meridianbank/banking/shared/money"
)

type AccountType string

const (
	TypeChecking AccountType = "CHECKING"
	TypeSavings  AccountType = "SAVINGS"
	TypeBusiness AccountType = "BUSINESS"
	TypeJoint    AccountType = "JOINT"
	TypeStudent  AccountType = "STUDENT"
	TypePremium  AccountType = "PREMIUM"
)

var accountTypes = map[AccountType]struct{}{
	TypeChecking: {}, TypeSavings: {}, TypeBusiness: {},
	TypeJoint: {}, TypeStudent: {}, TypePremium: {},
}

type AccountStatus string

const (
	StatusPending   AccountStatus = "PENDING"
	StatusActive    AccountStatus = "ACTIVE"
	StatusSuspended AccountStatus = "SUSPENDED"
	StatusClosed    AccountStatus = "CLOSED"
	StatusFrozen    AccountStatus = "FROZEN"
)

// Account is the aggregate owning the balance invariants. Balance is the
// settled total and the single source of truth for funds; AvailableBalance
// is what remains spendable after holds. AvailableBalance never exceeds
// Balance, and both share one currency fixed at creation.
//
// DailyLimit and MonthlyLimit are stored and reported but enforced by no
// operation, matching the system this replaces.
type Account struct {
	ID               string
	AccountNumber    string
	OwnerID          string
	AccountType      AccountType
	Status           AccountStatus
	Balance          money.Money
	AvailableBalance money.Money
	DailyLimit       decimal.Decimal
	MonthlyLimit     decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ClosedAt         *time.Time
}

// NewAccount creates a PENDING account with a zero balance in the given
// currency. The caller is responsible for account number uniqueness.
func NewAccount(accountNumber, ownerID string, accountType AccountType, currency string) (*Account, error) {
	if ownerID == "" {
		return nil, errs.Validation("owner id cannot be empty")
	}
	if _, ok := accountTypes[accountType]; !ok {
		return nil, errs.Validation("invalid account type: %s", accountType)
	}
	zero, err := money.Zero(currency)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Account{
		ID:               uuid.NewString(),
		AccountNumber:    accountNumber,
		OwnerID:          ownerID,
		AccountType:      accountType,
		Status:           StatusPending,
		Balance:          zero,
		AvailableBalance: zero,
		DailyLimit:       decimal.NewFromInt(5000),
		MonthlyLimit:     decimal.NewFromInt(50000),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Activate moves a PENDING account to ACTIVE.
func (a *Account) Activate() error {
	if a.Status != StatusPending {
		return errs.InvalidTransition("account", "activated", string(a.Status))
	}
	a.Status = StatusActive
	a.touch()
	return nil
}

// Suspend moves an ACTIVE or already SUSPENDED account to SUSPENDED.
func (a *Account) Suspend() error {
	if a.Status != StatusActive && a.Status != StatusSuspended {
		return errs.InvalidTransition("account", "suspended", string(a.Status))
	}
	a.Status = StatusSuspended
	a.touch()
	return nil
}

// Close moves an ACTIVE account with a zero balance to CLOSED and stamps
// ClosedAt. A closed account accepts no further mutations.
func (a *Account) Close() error {
	if a.Status != StatusActive || !a.Balance.IsZero() {
		return errs.InvalidTransition("account", "closed", string(a.Status))
	}
	a.Status = StatusClosed
	now := time.Now().UTC()
	a.ClosedAt = &now
	a.touch()
	return nil
}

// Credit adds amount to both balances. No upper bound is enforced.
func (a *Account) Credit(amount money.Money) error {
	if err := a.guard(amount); err != nil {
		return err
	}
	a.Balance, _ = a.Balance.Add(amount)
	a.AvailableBalance, _ = a.AvailableBalance.Add(amount)
	a.touch()
	return nil
}

// Debit removes amount from both balances. The settled balance must cover
// the full amount.
func (a *Account) Debit(amount money.Money) error {
	if err := a.guard(amount); err != nil {
		return err
	}
	if covered, _ := a.Balance.GreaterThanOrEqual(amount); !covered {
		return &errs.InsufficientFundsError{}
	}
	a.Balance, _ = a.Balance.Subtract(amount)
	a.AvailableBalance, _ = a.AvailableBalance.Subtract(amount)
	a.touch()
	return nil
}

// BlockFunds reserves amount for a pending movement: the available balance
// drops, the settled balance does not.
func (a *Account) BlockFunds(amount money.Money) error {
	if err := a.guard(amount); err != nil {
		return err
	}
	if covered, _ := a.AvailableBalance.GreaterThanOrEqual(amount); !covered {
		return &errs.InsufficientAvailableFundsError{}
	}
	a.AvailableBalance, _ = a.AvailableBalance.Subtract(amount)
	a.touch()
	return nil
}

// ReleaseFunds returns previously blocked funds. The amount may not exceed
// what is currently blocked, so the available balance can never climb above
// the settled balance.
func (a *Account) ReleaseFunds(amount money.Money) error {
	if err := a.guard(amount); err != nil {
		return err
	}
	blocked, _ := a.Balance.Subtract(a.AvailableBalance)
	if over, _ := amount.GreaterThan(blocked); over {
		return errs.Validation("cannot release more funds than blocked")
	}
	a.AvailableBalance, _ = a.AvailableBalance.Add(amount)
	a.touch()
	return nil
}

// BlockedFunds is the difference between settled and available balance.
func (a *Account) BlockedFunds() money.Money {
	blocked, _ := a.Balance.Subtract(a.AvailableBalance)
	return blocked
}

// guard runs the checks shared by every mutation, in fixed order: status,
// then currency, then amount sign.
func (a *Account) guard(amount money.Money) error {
	if a.Status != StatusActive {
		return errs.InvalidTransition("account", "mutated", string(a.Status))
	}
	if !a.Balance.SameCurrency(amount) {
		return errs.CurrencyMismatch(amount.Currency(), a.Balance.Currency())
	}
	if !amount.IsPositive() {
		return errs.Validation("amount must be greater than zero")
	}
	return nil
}

func (a *Account) touch() {
	a.UpdatedAt = time.Now().UTC()
}
