package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	AccountCreated   = "ACCOUNT_CREATED"
	AccountSuspended = "ACCOUNT_SUSPENDED"
	AccountClosed    = "ACCOUNT_CLOSED"
	MoneyDeposited   = "MONEY_DEPOSITED"
	MoneyWithdrawn   = "MONEY_WITHDRAWN"
	FundsBlocked     = "FUNDS_BLOCKED"
	FundsReleased    = "FUNDS_RELEASED"

	TransactionCreated    = "TRANSACTION_CREATED"
	TransactionProcessing = "TRANSACTION_PROCESSING"
	TransactionCompleted  = "TRANSACTION_COMPLETED"
	TransactionFailed     = "TRANSACTION_FAILED"
	TransactionCancelled  = "TRANSACTION_CANCELLED"
	TransactionReversed   = "TRANSACTION_REVERSED"
)

// Stream names
const (
	AccountEventsStream     = "banking.account.events"
	TransactionEventsStream = "banking.transaction.events"
	FraudDetectionStream    = "banking.fraud.detection"
)

// Event is the serialized envelope for every published domain event.
// Delivery is at-least-once; ordering is guaranteed only among events that
// share a PartitionKey (the account ID for all current event types).
// Consumers must dedupe by EventID.
type Event struct {
	EventID      string    `json:"eventId"`
	Type         string    `json:"eventType"`
	PartitionKey string    `json:"partitionKey"`
	Timestamp    time.Time `json:"timestamp"`
	Data         any       `json:"data"`
}

// Account events

type AccountCreatedEvent struct {
	AccountID      string          `json:"accountId"`
	OwnerID        string          `json:"ownerId"`
	AccountNumber  string          `json:"accountNumber"`
	AccountType    string          `json:"accountType"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Currency       string          `json:"currency"`
}

type AccountStatusChangedEvent struct {
	AccountID string `json:"accountId"`
	OwnerID   string `json:"ownerId"`
	Status    string `json:"status"`
}

// MoneyMovedEvent is published for deposits, withdrawals, holds and
// releases. BalanceAfter is the settled balance after the mutation.
type MoneyMovedEvent struct {
	AccountID    string          `json:"accountId"`
	OwnerID      string          `json:"ownerId"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	Description  string          `json:"description,omitempty"`
}

// Transaction events

type TransactionLifecycleEvent struct {
	TransactionID   string          `json:"transactionId"`
	Reference       string          `json:"reference"`
	Type            string          `json:"type"`
	Status          string          `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	SourceAccountID string          `json:"sourceAccountId,omitempty"`
	TargetAccountID string          `json:"targetAccountId,omitempty"`
	OwnerID         string          `json:"ownerId"`
	FailureReason   string          `json:"failureReason,omitempty"`
}
