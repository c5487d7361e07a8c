// Package memory provides in-process stand-ins for the downstream services.
// Records are cloned on every read and write so callers never share state.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/catalog"
	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/gateway"
)

var _ gateway.CatalogGateway = (*Catalog)(nil)

type Catalog struct {
	mu       sync.RWMutex
	products map[int64]*catalog.Product
}

func NewCatalog(products ...*catalog.Product) *Catalog {
	c := &Catalog{products: make(map[int64]*catalog.Product, len(products))}
	for _, p := range products {
		c.Put(p)
	}
	return c
}

// Put inserts or replaces a product.
func (c *Catalog) Put(p *catalog.Product) {
	if p == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p.Clone()
}

func (c *Catalog) FetchProduct(ctx context.Context, productID int64) (*catalog.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[productID]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", productID, gateway.ErrNotFound)
	}
	return p.Clone(), nil
}

// ListProducts yields a snapshot taken when iteration starts, ordered by id.
func (c *Catalog) ListProducts(ctx context.Context) iter.Seq2[*catalog.Product, error] {
	return func(yield func(*catalog.Product, error) bool) {
		c.mu.RLock()
		snapshot := make([]*catalog.Product, 0, len(c.products))
		for _, p := range c.products {
			snapshot = append(snapshot, p.Clone())
		}
		c.mu.RUnlock()
		slices.SortFunc(snapshot, func(a, b *catalog.Product) int { return cmp.Compare(a.ID, b.ID) })

		for _, p := range snapshot {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}
