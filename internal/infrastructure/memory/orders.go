package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/gateway"
	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/order"
)

var _ gateway.OrderGateway = (*Orders)(nil)

type Orders struct {
	mu     sync.RWMutex
	orders map[int64]*order.Order
	seq    int64
}

func NewOrders() *Orders {
	return &Orders{orders: make(map[int64]*order.Order)}
}

// Put stores o under its own id, e.g. to seed fixtures.
func (s *Orders) Put(o *order.Order) {
	if o == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o.Clone()
	s.seq = max(s.seq, o.ID)
}

// CreateOrder assigns the next id, like the order service does.
func (s *Orders) CreateOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("order: record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	stored := o.Clone()
	stored.ID = s.seq
	s.orders[stored.ID] = stored
	return stored.Clone(), nil
}

func (s *Orders) FetchOrder(ctx context.Context, orderID int64) (*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", orderID, gateway.ErrNotFound)
	}
	return o.Clone(), nil
}

func (s *Orders) UpdateOrder(ctx context.Context, orderID int64, o *order.Order) (*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("order %d: record is required", orderID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[orderID]; !ok {
		return nil, fmt.Errorf("order %d: %w", orderID, gateway.ErrNotFound)
	}
	stored := o.Clone()
	stored.ID = orderID
	s.orders[orderID] = stored
	return stored.Clone(), nil
}
