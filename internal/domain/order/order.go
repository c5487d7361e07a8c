package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity        = errors.New("order: quantity must be greater than zero")
	ErrInvalidAmount          = errors.New("order: amount must be zero or greater")
	ErrInvalidStateTransition = errors.New("order: invalid state transition")
)

type Status string

const (
	StatusPendingPayment   Status = "PENDING_PAYMENT"
	StatusPaymentCompleted Status = "PAYMENT_COMPLETED"
)

// Order mirrors the order service record. ID is zero until the order service assigns one.
type Order struct {
	ID          int64
	ProductID   int64
	Quantity    int
	CustomerID  int64
	OrderDate   time.Time
	Status      Status
	TotalAmount decimal.Decimal
}

// New builds a pending order. totalAmount is fixed here and never recomputed.
func New(productID int64, quantity int, customerID int64, totalAmount decimal.Decimal, now time.Time) (*Order, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if totalAmount.IsNegative() {
		return nil, ErrInvalidAmount
	}
	return &Order{
		ProductID:   productID,
		Quantity:    quantity,
		CustomerID:  customerID,
		OrderDate:   now,
		Status:      StatusPendingPayment,
		TotalAmount: totalAmount,
	}, nil
}

func (o *Order) IsPendingPayment() bool {
	return o.Status == StatusPendingPayment
}

// CompletePayment moves the order to PAYMENT_COMPLETED.
func (o *Order) CompletePayment() error {
	next, err := stateOf(o.Status).OnPaymentCompleted(o)
	if err != nil {
		return err
	}
	o.Status = next.Status()
	return nil
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}
