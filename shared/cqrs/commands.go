package cqrs

import "github.com/shopspring/decimal"

// ---------- Account commands ----------

type CreateAccountCommand struct {
	OwnerID     string
	AccountType string
	Currency    string
}

type CreditAccountCommand struct {
	AccountID   string
	Amount      decimal.Decimal
	Currency    string
	Description string
}

type DebitAccountCommand struct {
	AccountID   string
	Amount      decimal.Decimal
	Currency    string
	Description string
}

// BlockFundsCommand reserves funds: available balance drops, settled
// balance does not move.
type BlockFundsCommand struct {
	AccountID   string
	Amount      decimal.Decimal
	Currency    string
	Description string
}

// ReleaseFundsCommand returns previously blocked funds to the available
// balance.
type ReleaseFundsCommand struct {
	AccountID   string
	Amount      decimal.Decimal
	Currency    string
	Description string
}

type SuspendAccountCommand struct {
	AccountID string
}

type CloseAccountCommand struct {
	AccountID string
}

// ---------- Transaction commands ----------

type CreateTransactionCommand struct {
	Type              string
	Amount            decimal.Decimal
	Currency          string
	SourceAccountID   string
	TargetAccountID   string
	OwnerID           string
	Description       string
	ExternalReference string
}

type ProcessTransactionCommand struct {
	TransactionID string
}

type CompleteTransactionCommand struct {
	TransactionID string
}

type FailTransactionCommand struct {
	TransactionID string
	Reason        string
}

type CancelTransactionCommand struct {
	TransactionID string
}

type ReverseTransactionCommand struct {
	TransactionID string
}
