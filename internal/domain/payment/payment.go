package payment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidStateTransition = errors.New("payment: invalid state transition")

type Status string

const (
	StatusPendingPayment   Status = "PENDING_PAYMENT"
	StatusPaymentCompleted Status = "PAYMENT_COMPLETED"
)

const MethodOnline = "ONLINE"

type Payment struct {
	ID          int64
	OrderID     int64
	PaymentDate time.Time
	Amount      decimal.Decimal
	Method      string
	Status      Status
}

// New builds the pending online payment for an order.
func New(orderID int64, amount decimal.Decimal) *Payment {
	return &Payment{
		OrderID: orderID,
		Amount:  amount,
		Method:  MethodOnline,
		Status:  StatusPendingPayment,
	}
}

// Complete marks the payment settled at now. An already completed payment is
// re-stamped so a completion interrupted after this step can be re-driven.
func (p *Payment) Complete(now time.Time) error {
	if p.Status != StatusPendingPayment && p.Status != StatusPaymentCompleted {
		return ErrInvalidStateTransition
	}
	p.Status = StatusPaymentCompleted
	p.PaymentDate = now
	return nil
}

func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
