// Package domain holds the transaction aggregate. The lifecycle rules live
// here; the aggregate tracks and classifies money movements but never moves
// money itself.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/meridianbank/banking/shared/errs"
	"github.com/meridianbank/banking/shared/money"
	"github.com/meridianbank/banking/shared/utils"
)

type TransactionType string

const (
	TypeDeposit    TransactionType = "DEPOSIT"
	TypeWithdrawal TransactionType = "WITHDRAWAL"
	TypeTransfer   TransactionType = "TRANSFER"
	TypePayment    TransactionType = "PAYMENT"
	TypeRefund     TransactionType = "REFUND"
	TypeFee        TransactionType = "FEE"
	TypeInterest   TransactionType = "INTEREST"
	TypeAdjustment TransactionType = "ADJUSTMENT"
)

// IsDebit reports whether the type moves money out of the source account.
func (t TransactionType) IsDebit() bool {
	return t == TypeWithdrawal || t == TypeTransfer || t == TypePayment || t == TypeFee
}

// IsCredit reports whether the type moves money into the target account.
func (t TransactionType) IsCredit() bool {
	return t == TypeDeposit || t == TypeRefund || t == TypeInterest
}

type TransactionStatus string

const (
	StatusPending    TransactionStatus = "PENDING"
	StatusProcessing TransactionStatus = "PROCESSING"
	StatusCompleted  TransactionStatus = "COMPLETED"
	StatusFailed     TransactionStatus = "FAILED"
	StatusCancelled  TransactionStatus = "CANCELLED"
	StatusReversed   TransactionStatus = "REVERSED"
)

// IsFinal reports whether no further transition is allowed, except that a
// COMPLETED transaction may still be reversed.
func (s TransactionStatus) IsFinal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled || s == StatusReversed
}

const maxExternalReferenceLen = 100

// Transaction records one money movement. Source and target roles are fixed
// at construction by the transaction type and never change afterward.
type Transaction struct {
	ID                string
	Reference         string
	Type              TransactionType
	Status            TransactionStatus
	Amount            money.Money
	SourceAccountID   string
	TargetAccountID   string
	Description       string
	ExternalReference string
	OwnerID           string
	FailureReason     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ProcessedAt       *time.Time
}

// NewTransaction creates a PENDING transaction with a fresh reference.
// Account roles follow the type: a DEPOSIT only has a target, a WITHDRAWAL
// only a source, TRANSFER and PAYMENT need both; the remaining types keep
// the accounts as supplied.
func NewTransaction(txType TransactionType, amount money.Money, sourceAccountID, targetAccountID, ownerID, description string) (*Transaction, error) {
	if ownerID == "" {
		return nil, errs.Validation("owner id cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, errs.Validation("amount must be greater than zero")
	}

	tx := &Transaction{
		ID:          uuid.NewString(),
		Reference:   utils.NewTransactionReference(),
		Type:        txType,
		Status:      StatusPending,
		Amount:      amount,
		Description: description,
		OwnerID:     ownerID,
	}

	switch txType {
	case TypeDeposit:
		if targetAccountID == "" {
			targetAccountID = sourceAccountID
		}
		if targetAccountID == "" {
			return nil, errs.Validation("deposit requires a receiving account")
		}
		tx.TargetAccountID = targetAccountID
	case TypeWithdrawal:
		if sourceAccountID == "" {
			return nil, errs.Validation("withdrawal requires a source account")
		}
		tx.SourceAccountID = sourceAccountID
	case TypeTransfer, TypePayment:
		if sourceAccountID == "" || targetAccountID == "" {
			return nil, errs.Validation("%s requires both source and target accounts", txType)
		}
		tx.SourceAccountID = sourceAccountID
		tx.TargetAccountID = targetAccountID
	case TypeRefund, TypeFee, TypeInterest, TypeAdjustment:
		tx.SourceAccountID = sourceAccountID
		tx.TargetAccountID = targetAccountID
	default:
		return nil, errs.Validation("invalid transaction type: %s", txType)
	}

	now := time.Now().UTC()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	return tx, nil
}

// SetExternalReference attaches an external system's identifier.
func (t *Transaction) SetExternalReference(externalReference string) error {
	if len(externalReference) > maxExternalReferenceLen {
		return errs.Validation("external reference cannot exceed %d characters", maxExternalReferenceLen)
	}
	t.ExternalReference = externalReference
	return nil
}

// Process moves a PENDING transaction to PROCESSING.
func (t *Transaction) Process() error {
	if t.Status != StatusPending {
		return errs.InvalidTransition("transaction", "processed", string(t.Status))
	}
	t.Status = StatusProcessing
	t.touch()
	return nil
}

// Complete moves a PROCESSING transaction to COMPLETED and stamps
// ProcessedAt.
func (t *Transaction) Complete() error {
	if t.Status != StatusProcessing {
		return errs.InvalidTransition("transaction", "completed", string(t.Status))
	}
	t.Status = StatusCompleted
	t.stampProcessed()
	t.touch()
	return nil
}

// Fail moves a PENDING or PROCESSING transaction to FAILED with a reason.
func (t *Transaction) Fail(reason string) error {
	if t.Status != StatusPending && t.Status != StatusProcessing {
		return errs.InvalidTransition("transaction", "failed", string(t.Status))
	}
	t.Status = StatusFailed
	t.FailureReason = reason
	t.stampProcessed()
	t.touch()
	return nil
}

// Cancel moves a PENDING transaction to CANCELLED.
func (t *Transaction) Cancel() error {
	if t.Status != StatusPending {
		return errs.InvalidTransition("transaction", "cancelled", string(t.Status))
	}
	t.Status = StatusCancelled
	t.stampProcessed()
	t.touch()
	return nil
}

// Reverse marks a COMPLETED transaction as REVERSED. Reversal is a
// bookkeeping status only; compensating balance movements are the caller's
// responsibility.
func (t *Transaction) Reverse() error {
	if t.Status != StatusCompleted {
		return errs.InvalidTransition("transaction", "reversed", string(t.Status))
	}
	t.Status = StatusReversed
	t.touch()
	return nil
}

// IsTransfer reports whether this transaction moves money between two
// tracked accounts.
func (t *Transaction) IsTransfer() bool {
	return t.Type == TypeTransfer && t.TargetAccountID != ""
}

func (t *Transaction) stampProcessed() {
	now := time.Now().UTC()
	t.ProcessedAt = &now
}

func (t *Transaction) touch() {
	t.UpdatedAt = time.Now().UTC()
}
