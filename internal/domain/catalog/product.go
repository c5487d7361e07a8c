package catalog

import (
	"time"

	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry as served by the catalog service.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Total is the price of quantity units, computed exactly.
func (p *Product) Total(quantity int) decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(quantity)))
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

// Row pairs a product with its inventory record.
type Row struct {
	Product   *Product
	Inventory *inventory.Record
}
