package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/gateway"
	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/payment"
)

var _ gateway.PaymentGateway = (*Payments)(nil)

type Payments struct {
	mu      sync.RWMutex
	byID    map[int64]*payment.Payment
	byOrder map[int64]int64 // order id -> payment id
	seq     int64
}

func NewPayments() *Payments {
	return &Payments{
		byID:    make(map[int64]*payment.Payment),
		byOrder: make(map[int64]int64),
	}
}

// Put stores p under its own id, e.g. to seed fixtures.
func (s *Payments) Put(p *payment.Payment) {
	if p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[p.ID] = p.Clone()
	s.byOrder[p.OrderID] = p.ID
	s.seq = max(s.seq, p.ID)
}

func (s *Payments) CreatePayment(ctx context.Context, p *payment.Payment) (*payment.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("payment: record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	stored := p.Clone()
	stored.ID = s.seq
	s.byID[stored.ID] = stored
	s.byOrder[stored.OrderID] = stored.ID
	return stored.Clone(), nil
}

func (s *Payments) FetchPaymentByOrder(ctx context.Context, orderID int64) (*payment.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byOrder[orderID]
	if !ok {
		return nil, fmt.Errorf("payment for order %d: %w", orderID, gateway.ErrNotFound)
	}
	return s.byID[id].Clone(), nil
}

func (s *Payments) UpdatePayment(ctx context.Context, paymentID int64, p *payment.Payment) (*payment.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("payment %d: record is required", paymentID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[paymentID]; !ok {
		return nil, fmt.Errorf("payment %d: %w", paymentID, gateway.ErrNotFound)
	}
	stored := p.Clone()
	stored.ID = paymentID
	s.byID[paymentID] = stored
	s.byOrder[stored.OrderID] = paymentID
	return stored.Clone(), nil
}
