package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/gateway"
	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/inventory"
)

var _ gateway.InventoryGateway = (*Inventory)(nil)

type Inventory struct {
	mu        sync.RWMutex
	byID      map[int64]*inventory.Record
	byProduct map[int64]int64 // product id -> inventory id
	seq       int64
}

func NewInventory() *Inventory {
	return &Inventory{
		byID:      make(map[int64]*inventory.Record),
		byProduct: make(map[int64]int64),
	}
}

// Seed stores stock for a product and returns the stored record.
func (s *Inventory) Seed(productID int64, quantity int) *inventory.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byProduct[productID]
	if !ok {
		s.seq++
		id = s.seq
		s.byProduct[productID] = id
	}
	rec := &inventory.Record{ID: id, ProductID: productID, Quantity: quantity, LastUpdated: time.Now()}
	s.byID[id] = rec
	return rec.Clone()
}

func (s *Inventory) FetchInventory(ctx context.Context, productID int64) (*inventory.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byProduct[productID]
	if !ok {
		return nil, fmt.Errorf("inventory for product %d: %w", productID, gateway.ErrNotFound)
	}
	return s.byID[id].Clone(), nil
}

func (s *Inventory) UpdateInventory(ctx context.Context, inventoryID int64, rec *inventory.Record) (*inventory.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("inventory %d: record is required", inventoryID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[inventoryID]; !ok {
		return nil, fmt.Errorf("inventory %d: %w", inventoryID, gateway.ErrNotFound)
	}
	stored := rec.Clone()
	stored.ID = inventoryID
	s.byID[inventoryID] = stored
	s.byProduct[stored.ProductID] = inventoryID
	return stored.Clone(), nil
}
