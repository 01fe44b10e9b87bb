// Package errs defines the failure taxonomy shared by both services.
// Handlers map these to HTTP statuses; everything else stays a 500.
package errs

import "fmt"

// ValidationError reports malformed input: an unknown currency or
// transaction type, a non-positive amount, oversized text.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown account or transaction.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func NotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// InvalidStateTransitionError reports an operation attempted outside the
// entity's transition table. Current always names the state the entity was
// in when the operation was rejected.
type InvalidStateTransitionError struct {
	Entity    string
	Operation string
	Current   string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("%s cannot be %s in current status: %s", e.Entity, e.Operation, e.Current)
}

func InvalidTransition(entity, operation, current string) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{Entity: entity, Operation: operation, Current: current}
}

// InsufficientFundsError reports a debit exceeding the settled balance.
type InsufficientFundsError struct{}

func (e *InsufficientFundsError) Error() string { return "insufficient funds" }

// InsufficientAvailableFundsError reports a hold exceeding the spendable balance.
type InsufficientAvailableFundsError struct{}

func (e *InsufficientAvailableFundsError) Error() string { return "insufficient available funds" }

// CurrencyMismatchError reports operands in different currencies.
type CurrencyMismatchError struct {
	Have string
	Want string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("currency mismatch: %s vs %s", e.Have, e.Want)
}

func CurrencyMismatch(have, want string) *CurrencyMismatchError {
	return &CurrencyMismatchError{Have: have, Want: want}
}

// DownstreamUnavailableError reports that a best-effort remote call or
// publication failed. It is never surfaced to the caller of a successful
// mutation; it only reaches logs and result sinks.
type DownstreamUnavailableError struct {
	Target string
	Err    error
}

func (e *DownstreamUnavailableError) Error() string {
	return fmt.Sprintf("downstream %s unavailable: %v", e.Target, e.Err)
}

func (e *DownstreamUnavailableError) Unwrap() error { return e.Err }

func DownstreamUnavailable(target string, err error) *DownstreamUnavailableError {
	return &DownstreamUnavailableError{Target: target, Err: err}
}
