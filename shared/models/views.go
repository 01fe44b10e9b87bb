// Package models holds the read-optimised projections that cross service
// boundaries: they are what the HTTP APIs serialize and what the Redis read
// models cache. The write models with behaviour live in each service's
// internal/domain package.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountView is the read-optimised projection of an account.
type AccountView struct {
	ID               string          `json:"id"`
	AccountNumber    string          `json:"accountNumber"`
	OwnerID          string          `json:"ownerId"`
	AccountType      string          `json:"accountType"`
	Status           string          `json:"status"`
	Balance          decimal.Decimal `json:"balance"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	Currency         string          `json:"currency"`
	DailyLimit       decimal.Decimal `json:"dailyLimit"`
	MonthlyLimit     decimal.Decimal `json:"monthlyLimit"`
	CreatedAt        time.Time       `json:"createdTimestamp"`
	UpdatedAt        time.Time       `json:"updatedTimestamp"`
	ClosedAt         *time.Time      `json:"closedTimestamp,omitempty"`
}

// BalanceView is the projection returned by the balance endpoint.
type BalanceView struct {
	AccountID        string          `json:"accountId"`
	Balance          decimal.Decimal `json:"balance"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	Currency         string          `json:"currency"`
}

// TransactionView is the read-optimised projection of a transaction.
type TransactionView struct {
	ID                string          `json:"id"`
	Reference         string          `json:"reference"`
	Type              string          `json:"type"`
	Status            string          `json:"status"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	SourceAccountID   string          `json:"sourceAccountId,omitempty"`
	TargetAccountID   string          `json:"targetAccountId,omitempty"`
	Description       string          `json:"description,omitempty"`
	ExternalReference string          `json:"externalReference,omitempty"`
	OwnerID           string          `json:"ownerId"`
	FailureReason     string          `json:"failureReason,omitempty"`
	CreatedAt         time.Time       `json:"createdTimestamp"`
	UpdatedAt         time.Time       `json:"updatedTimestamp"`
	ProcessedAt       *time.Time      `json:"processedTimestamp,omitempty"`
}
