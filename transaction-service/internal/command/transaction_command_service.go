// Package command implements the write side of the transaction service.
package command

import (
	"context"
	"log"

	"github.com/meridianbank/banking/shared/cqrs"
	"github.com/meridianbank/banking/shared/events"
	"github.com/meridianbank/banking/shared/models"
	"github.com/meridianbank/banking/shared/money"
	"github.com/meridianbank/banking/transaction-service/internal/domain"
)

type TransactionStore interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	Mutate(ctx context.Context, id string, fn func(*domain.Transaction) error) (*domain.Transaction, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType, partitionKey string, data any) error
}

type ViewCache interface {
	CacheTransactionView(ctx context.Context, view *models.TransactionView)
}

// TransactionCommandService executes transaction lifecycle operations. Every
// operation commits first, then refreshes the read model and publishes a
// lifecycle event; publication failures are logged and swallowed. No
// operation here ever moves money.
type TransactionCommandService struct {
	store     TransactionStore
	views     ViewCache
	publisher EventPublisher
}

func NewTransactionCommandService(store TransactionStore, views ViewCache, publisher EventPublisher) *TransactionCommandService {
	return &TransactionCommandService{
		store:     store,
		views:     views,
		publisher: publisher,
	}
}

// CreateTransaction records a new PENDING transaction.
func (s *TransactionCommandService) CreateTransaction(ctx context.Context, cmd cqrs.CreateTransactionCommand) (*domain.Transaction, error) {
	amount, err := money.New(cmd.Amount, cmd.Currency)
	if err != nil {
		return nil, err
	}

	tx, err := domain.NewTransaction(
		domain.TransactionType(cmd.Type), amount,
		cmd.SourceAccountID, cmd.TargetAccountID,
		cmd.OwnerID, cmd.Description,
	)
	if err != nil {
		return nil, err
	}
	if cmd.ExternalReference != "" {
		if err := tx.SetExternalReference(cmd.ExternalReference); err != nil {
			return nil, err
		}
	}

	if err := s.store.Create(ctx, tx); err != nil {
		return nil, err
	}

	s.fanOut(ctx, events.TransactionCreated, tx)
	return tx, nil
}

// Process moves a PENDING transaction to PROCESSING.
func (s *TransactionCommandService) Process(ctx context.Context, cmd cqrs.ProcessTransactionCommand) (*domain.Transaction, error) {
	return s.transition(ctx, cmd.TransactionID, events.TransactionProcessing, func(tx *domain.Transaction) error {
		return tx.Process()
	})
}

// Complete moves a PROCESSING transaction to COMPLETED.
func (s *TransactionCommandService) Complete(ctx context.Context, cmd cqrs.CompleteTransactionCommand) (*domain.Transaction, error) {
	return s.transition(ctx, cmd.TransactionID, events.TransactionCompleted, func(tx *domain.Transaction) error {
		return tx.Complete()
	})
}

// Fail moves a PENDING or PROCESSING transaction to FAILED.
func (s *TransactionCommandService) Fail(ctx context.Context, cmd cqrs.FailTransactionCommand) (*domain.Transaction, error) {
	return s.transition(ctx, cmd.TransactionID, events.TransactionFailed, func(tx *domain.Transaction) error {
		return tx.Fail(cmd.Reason)
	})
}

// Cancel moves a PENDING transaction to CANCELLED.
func (s *TransactionCommandService) Cancel(ctx context.Context, cmd cqrs.CancelTransactionCommand) (*domain.Transaction, error) {
	return s.transition(ctx, cmd.TransactionID, events.TransactionCancelled, func(tx *domain.Transaction) error {
		return tx.Cancel()
	})
}

// Reverse marks a COMPLETED transaction as REVERSED. The compensating
// balance movement, if any, is composed by the caller.
func (s *TransactionCommandService) Reverse(ctx context.Context, cmd cqrs.ReverseTransactionCommand) (*domain.Transaction, error) {
	return s.transition(ctx, cmd.TransactionID, events.TransactionReversed, func(tx *domain.Transaction) error {
		return tx.Reverse()
	})
}

func (s *TransactionCommandService) transition(ctx context.Context, id, eventType string, fn func(*domain.Transaction) error) (*domain.Transaction, error) {
	tx, err := s.store.Mutate(ctx, id, fn)
	if err != nil {
		return nil, err
	}

	s.fanOut(ctx, eventType, tx)
	return tx, nil
}

func (s *TransactionCommandService) fanOut(ctx context.Context, eventType string, tx *domain.Transaction) {
	s.views.CacheTransactionView(ctx, ToView(tx))

	// Events are keyed by the account whose history they belong to.
	key := tx.SourceAccountID
	if key == "" {
		key = tx.TargetAccountID
	}
	err := s.publisher.Publish(ctx, events.TransactionEventsStream, eventType, key, events.TransactionLifecycleEvent{
		TransactionID:   tx.ID,
		Reference:       tx.Reference,
		Type:            string(tx.Type),
		Status:          string(tx.Status),
		Amount:          tx.Amount.Amount(),
		Currency:        tx.Amount.Currency(),
		SourceAccountID: tx.SourceAccountID,
		TargetAccountID: tx.TargetAccountID,
		OwnerID:         tx.OwnerID,
		FailureReason:   tx.FailureReason,
	})
	if err != nil {
		log.Printf("Failed to publish %s: %v", eventType, err)
	}
}

// ToView projects the aggregate onto its read model.
func ToView(tx *domain.Transaction) *models.TransactionView {
	return &models.TransactionView{
		ID:                tx.ID,
		Reference:         tx.Reference,
		Type:              string(tx.Type),
		Status:            string(tx.Status),
		Amount:            tx.Amount.Amount(),
		Currency:          tx.Amount.Currency(),
		SourceAccountID:   tx.SourceAccountID,
		TargetAccountID:   tx.TargetAccountID,
		Description:       tx.Description,
		ExternalReference: tx.ExternalReference,
		OwnerID:           tx.OwnerID,
		FailureReason:     tx.FailureReason,
		CreatedAt:         tx.CreatedAt,
		UpdatedAt:         tx.UpdatedAt,
		ProcessedAt:       tx.ProcessedAt,
	}
}
