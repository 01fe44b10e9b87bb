package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/meridianbank/banking/shared/errs"
	"github.com/meridianbank/banking/shared/money"
)

func usd(t *testing.T, amount string) money.Money {
	t.Helper()
	return money.MustNew(amount, "USD")
}

func newPending(t *testing.T, txType TransactionType) *Transaction {
	t.Helper()
	tx, err := NewTransaction(txType, usd(t, "100.00"), "acc-src", "acc-dst", "owner-1", "test")
	if err != nil {
		t.Fatalf("NewTransaction(%s): %v", txType, err)
	}
	return tx
}

func TestNewTransactionRoles(t *testing.T) {
	tests := []struct {
		name       string
		txType     TransactionType
		source     string
		target     string
		wantSource string
		wantTarget string
		wantErr    bool
	}{
		{name: "deposit keeps only target", txType: TypeDeposit, target: "acc-1", wantTarget: "acc-1"},
		{name: "deposit remaps source to target", txType: TypeDeposit, source: "acc-1", wantTarget: "acc-1"},
		{name: "deposit without account", txType: TypeDeposit, wantErr: true},
		{name: "withdrawal keeps only source", txType: TypeWithdrawal, source: "acc-1", wantSource: "acc-1"},
		{name: "withdrawal without source", txType: TypeWithdrawal, target: "acc-1", wantErr: true},
		{name: "transfer needs both", txType: TypeTransfer, source: "acc-1", wantErr: true},
		{name: "transfer keeps both", txType: TypeTransfer, source: "acc-1", target: "acc-2", wantSource: "acc-1", wantTarget: "acc-2"},
		{name: "payment needs both", txType: TypePayment, target: "acc-2", wantErr: true},
		{name: "refund as supplied", txType: TypeRefund, source: "acc-1", wantSource: "acc-1"},
		{name: "fee as supplied", txType: TypeFee, source: "acc-1", target: "acc-2", wantSource: "acc-1", wantTarget: "acc-2"},
		{name: "unknown type", txType: TransactionType("GIFT"), source: "acc-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := NewTransaction(tt.txType, usd(t, "10.00"), tt.source, tt.target, "owner-1", "")
			if tt.wantErr {
				var validation *errs.ValidationError
				if !errors.As(err, &validation) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTransaction: %v", err)
			}
			if tx.SourceAccountID != tt.wantSource || tx.TargetAccountID != tt.wantTarget {
				t.Errorf("roles = (%q, %q), want (%q, %q)",
					tx.SourceAccountID, tx.TargetAccountID, tt.wantSource, tt.wantTarget)
			}
		})
	}
}

func TestNewTransactionDefaults(t *testing.T) {
	tx := newPending(t, TypeTransfer)

	if tx.Status != StatusPending {
		t.Errorf("expected PENDING, got %s", tx.Status)
	}
	if !strings.HasPrefix(tx.Reference, "TXN-") || len(tx.Reference) != 16 {
		t.Errorf("unexpected reference %q", tx.Reference)
	}
	if tx.Reference[4:] != strings.ToUpper(tx.Reference[4:]) {
		t.Errorf("reference must be uppercase, got %q", tx.Reference)
	}
	if tx.ID == "" || tx.OwnerID != "owner-1" {
		t.Errorf("unexpected identity: %+v", tx)
	}
	if tx.ProcessedAt != nil {
		t.Error("new transaction must not have ProcessedAt")
	}
}

func TestNewTransactionRejectsNonPositiveAmount(t *testing.T) {
	_, err := NewTransaction(TypeDeposit, money.MustNew("0.00", "USD"), "", "acc-1", "owner-1", "")
	var validation *errs.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestExternalReferenceLimit(t *testing.T) {
	tx := newPending(t, TypeDeposit)

	if err := tx.SetExternalReference(strings.Repeat("x", 100)); err != nil {
		t.Fatalf("100 chars must be accepted: %v", err)
	}
	err := tx.SetExternalReference(strings.Repeat("x", 101))
	var validation *errs.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestHappyPathLifecycle(t *testing.T) {
	tx := newPending(t, TypeTransfer)

	if err := tx.Process(); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if tx.Status != StatusProcessing {
		t.Fatalf("expected PROCESSING, got %s", tx.Status)
	}
	if err := tx.Complete(); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if tx.Status != StatusCompleted || tx.ProcessedAt == nil {
		t.Fatalf("expected COMPLETED with ProcessedAt, got %s %v", tx.Status, tx.ProcessedAt)
	}
	if err := tx.Reverse(); err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if tx.Status != StatusReversed {
		t.Fatalf("expected REVERSED, got %s", tx.Status)
	}
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(*Transaction)
		attempt func(*Transaction) error
	}{
		{
			name:    "complete from pending",
			prepare: func(tx *Transaction) {},
			attempt: func(tx *Transaction) error { return tx.Complete() },
		},
		{
			name:    "cancel after processing",
			prepare: func(tx *Transaction) { tx.Process() },
			attempt: func(tx *Transaction) error { return tx.Cancel() },
		},
		{
			name:    "process twice",
			prepare: func(tx *Transaction) { tx.Process() },
			attempt: func(tx *Transaction) error { return tx.Process() },
		},
		{
			name:    "reverse before completion",
			prepare: func(tx *Transaction) { tx.Process() },
			attempt: func(tx *Transaction) error { return tx.Reverse() },
		},
		{
			name: "reverse twice",
			prepare: func(tx *Transaction) {
				tx.Process()
				tx.Complete()
				tx.Reverse()
			},
			attempt: func(tx *Transaction) error { return tx.Reverse() },
		},
		{
			name: "fail a completed transaction",
			prepare: func(tx *Transaction) {
				tx.Process()
				tx.Complete()
			},
			attempt: func(tx *Transaction) error { return tx.Fail("too late") },
		},
		{
			name:    "cancel twice",
			prepare: func(tx *Transaction) { tx.Cancel() },
			attempt: func(tx *Transaction) error { return tx.Cancel() },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := newPending(t, TypeTransfer)
			tt.prepare(tx)
			before := tx.Status

			err := tt.attempt(tx)
			var transition *errs.InvalidStateTransitionError
			if !errors.As(err, &transition) {
				t.Fatalf("expected InvalidStateTransitionError, got %v", err)
			}
			if !strings.Contains(err.Error(), string(before)) {
				t.Errorf("error must name current status %s: %v", before, err)
			}
			if tx.Status != before {
				t.Errorf("status moved from %s to %s on failed transition", before, tx.Status)
			}
		})
	}
}

func TestFailRecordsReason(t *testing.T) {
	tx := newPending(t, TypePayment)
	if err := tx.Process(); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if err := tx.Fail("card declined"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if tx.Status != StatusFailed || tx.FailureReason != "card declined" || tx.ProcessedAt == nil {
		t.Errorf("unexpected failed state: %+v", tx)
	}
}

func TestTypeClassification(t *testing.T) {
	if !TypeWithdrawal.IsDebit() || !TypeFee.IsDebit() || TypeDeposit.IsDebit() {
		t.Error("debit classification wrong")
	}
	if !TypeDeposit.IsCredit() || !TypeInterest.IsCredit() || TypePayment.IsCredit() {
		t.Error("credit classification wrong")
	}
	if !newPending(t, TypeTransfer).IsTransfer() {
		t.Error("transfer with target must report IsTransfer")
	}
}
