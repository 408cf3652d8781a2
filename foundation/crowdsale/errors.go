package crowdsale

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/crowdsale/foundation/account"
)

// Set of reasons an operation is rejected. A rejected operation never leaves
// a change behind.
var (
	ErrWrongStatus         = errors.New("operation not allowed in the current status")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrZeroValue           = errors.New("value must be greater than zero")
	ErrUnauthorized        = errors.New("caller is not authorized")
	ErrInvalidAccount      = errors.New("account is not properly formatted")
	ErrOverflow            = errors.New("amount overflow")
	ErrTransfer            = errors.New("value transfer failed")
)

// CallError represents a rejected operation.
type CallError struct {
	Op     Op
	Caller account.ID
	Status Status
	Err    error
}

// Error implements the error interface.
func (ce *CallError) Error() string {
	return fmt.Sprintf("%s rejected, caller %s, status %s: %s", ce.Op, ce.Caller, ce.Status, ce.Err)
}

// Unwrap returns the reason for the rejection.
func (ce *CallError) Unwrap() error {
	return ce.Err
}

// IsCallError checks if an error of type CallError exists.
func IsCallError(err error) bool {
	var ce *CallError
	return errors.As(err, &ce)
}
