package payment

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewPaymentIsPendingOnline(t *testing.T) {
	p := New(5, decimal.RequireFromString("30.00"))
	if p.Method != MethodOnline || p.Status != StatusPendingPayment || p.OrderID != 5 {
		t.Fatalf("payment = %+v", p)
	}
	if !p.PaymentDate.IsZero() {
		t.Fatal("payment date set before completion")
	}
}

func TestComplete(t *testing.T) {
	now := time.Now()
	p := New(5, decimal.NewFromInt(1))
	if err := p.Complete(now); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if p.Status != StatusPaymentCompleted || !p.PaymentDate.Equal(now) {
		t.Fatalf("payment = %+v", p)
	}
	later := now.Add(time.Minute)
	if err := p.Complete(later); err != nil || !p.PaymentDate.Equal(later) {
		t.Fatalf("re-completion: err=%v date=%v", err, p.PaymentDate)
	}

	refunded := &Payment{Status: Status("REFUNDED")}
	if err := refunded.Complete(now); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}
