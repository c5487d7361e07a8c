package order

import (
	"errors"
	"fmt"

	domain "github.com/Zhima-Mochi/ecom-compositor/internal/domain/order"
)

var (
	ErrInvalidState         = errors.New("order is not awaiting payment")
	ErrCompletionInProgress = errors.New("order completion already in progress")
)

// InvalidStateError reports a completion attempt on an order that is not PENDING_PAYMENT.
type InvalidStateError struct {
	OrderID int64
	Status  domain.Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("Order %d is not awaiting payment (status: %s)", e.OrderID, e.Status)
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

func newValidation(msg string) error {
	return fmt.Errorf("validation: %w", errors.New(msg))
}
