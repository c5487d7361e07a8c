// Package wire holds the JSON shapes exchanged with the downstream services
// and served by the catalog endpoint. Decoding is strict about presence:
// a record missing a field the compositor relies on is rejected.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/catalog"
	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/inventory"
	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/order"
	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/payment"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingField = errors.New("missing required field")
	ErrInvalidField = errors.New("invalid field")
)

func missing(record, field string) error {
	return fmt.Errorf("%w: %s.%s", ErrMissingField, record, field)
}

func ptr[T any](v T) *T { return &v }

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// amount keeps the scale the value was read or computed with, so 60.00 stays 60.00.
func amount(d decimal.Decimal) *json.Number {
	return ptr(json.Number(d.StringFixed(max(0, -d.Exponent()))))
}

func parseAmount(record, field string, n *json.Number) (decimal.Decimal, error) {
	if n == nil {
		return decimal.Zero, missing(record, field)
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s.%s: %v", ErrInvalidField, record, field, err)
	}
	return d, nil
}

type Product struct {
	ProductID   *int64         `json:"productId"`
	ProductName *string        `json:"productName"`
	Description *string        `json:"description"`
	Price       *json.Number   `json:"price"`
	Category    *string        `json:"category"`
	CreatedAt   *LocalDateTime `json:"createdAt"`
	UpdatedAt   *LocalDateTime `json:"updatedAt"`
}

func FromProduct(p *catalog.Product) Product {
	return Product{
		ProductID:   ptr(p.ID),
		ProductName: ptr(p.Name),
		Description: ptr(p.Description),
		Price:       amount(p.Price),
		Category:    ptr(p.Category),
		CreatedAt:   NewLocalDateTime(p.CreatedAt),
		UpdatedAt:   NewLocalDateTime(p.UpdatedAt),
	}
}

func (p Product) Domain() (*catalog.Product, error) {
	if p.ProductID == nil {
		return nil, missing("product", "productId")
	}
	price, err := parseAmount("product", "price", p.Price)
	if err != nil {
		return nil, err
	}
	return &catalog.Product{
		ID:          *p.ProductID,
		Name:        deref(p.ProductName),
		Description: deref(p.Description),
		Price:       price,
		Category:    deref(p.Category),
		CreatedAt:   p.CreatedAt.value(),
		UpdatedAt:   p.UpdatedAt.value(),
	}, nil
}

type Inventory struct {
	InventoryID *int64         `json:"inventoryId"`
	ProductID   *int64         `json:"productId"`
	Quantity    *int           `json:"quantity"`
	LastUpdated *LocalDateTime `json:"lastUpdated"`
}

func FromInventory(r *inventory.Record) Inventory {
	return Inventory{
		InventoryID: ptr(r.ID),
		ProductID:   ptr(r.ProductID),
		Quantity:    ptr(r.Quantity),
		LastUpdated: NewLocalDateTime(r.LastUpdated),
	}
}

func (i Inventory) Domain() (*inventory.Record, error) {
	switch {
	case i.InventoryID == nil:
		return nil, missing("inventory", "inventoryId")
	case i.ProductID == nil:
		return nil, missing("inventory", "productId")
	case i.Quantity == nil:
		return nil, missing("inventory", "quantity")
	}
	return &inventory.Record{
		ID:          *i.InventoryID,
		ProductID:   *i.ProductID,
		Quantity:    *i.Quantity,
		LastUpdated: i.LastUpdated.value(),
	}, nil
}

type Order struct {
	OrderID     *int64         `json:"orderId"`
	ProductID   *int64         `json:"productId"`
	Quantity    *int           `json:"quantity"`
	CustomerID  *int64         `json:"customerId"`
	OrderDate   *LocalDateTime `json:"orderDate"`
	Status      *string        `json:"status"`
	TotalAmount *json.Number   `json:"totalAmount"`
}

// FromOrder encodes o; an unassigned id is sent as null.
func FromOrder(o *order.Order) Order {
	out := Order{
		ProductID:   ptr(o.ProductID),
		Quantity:    ptr(o.Quantity),
		CustomerID:  ptr(o.CustomerID),
		OrderDate:   NewLocalDateTime(o.OrderDate),
		Status:      ptr(string(o.Status)),
		TotalAmount: amount(o.TotalAmount),
	}
	if o.ID != 0 {
		out.OrderID = ptr(o.ID)
	}
	return out
}

func (o Order) Domain() (*order.Order, error) {
	switch {
	case o.OrderID == nil:
		return nil, missing("order", "orderId")
	case o.ProductID == nil:
		return nil, missing("order", "productId")
	case o.Quantity == nil:
		return nil, missing("order", "quantity")
	case o.CustomerID == nil:
		return nil, missing("order", "customerId")
	case o.Status == nil:
		return nil, missing("order", "status")
	}
	total, err := parseAmount("order", "totalAmount", o.TotalAmount)
	if err != nil {
		return nil, err
	}
	return &order.Order{
		ID:          *o.OrderID,
		ProductID:   *o.ProductID,
		Quantity:    *o.Quantity,
		CustomerID:  *o.CustomerID,
		OrderDate:   o.OrderDate.value(),
		Status:      order.Status(*o.Status),
		TotalAmount: total,
	}, nil
}

type Payment struct {
	PaymentID     *int64         `json:"paymentId"`
	OrderID       *int64         `json:"orderId"`
	PaymentDate   *LocalDateTime `json:"paymentDate"`
	Amount        *json.Number   `json:"amount"`
	PaymentMethod *string        `json:"paymentMethod"`
	Status        *string        `json:"status"`
}

// FromPayment encodes p; an unassigned id is sent as null.
func FromPayment(p *payment.Payment) Payment {
	out := Payment{
		OrderID:       ptr(p.OrderID),
		PaymentDate:   NewLocalDateTime(p.PaymentDate),
		Amount:        amount(p.Amount),
		PaymentMethod: ptr(p.Method),
		Status:        ptr(string(p.Status)),
	}
	if p.ID != 0 {
		out.PaymentID = ptr(p.ID)
	}
	return out
}

func (p Payment) Domain() (*payment.Payment, error) {
	switch {
	case p.PaymentID == nil:
		return nil, missing("payment", "paymentId")
	case p.OrderID == nil:
		return nil, missing("payment", "orderId")
	case p.PaymentMethod == nil:
		return nil, missing("payment", "paymentMethod")
	case p.Status == nil:
		return nil, missing("payment", "status")
	}
	amt, err := parseAmount("payment", "amount", p.Amount)
	if err != nil {
		return nil, err
	}
	return &payment.Payment{
		ID:          *p.PaymentID,
		OrderID:     *p.OrderID,
		PaymentDate: p.PaymentDate.value(),
		Amount:      amt,
		Method:      *p.PaymentMethod,
		Status:      payment.Status(*p.Status),
	}, nil
}

// CatalogRow is one element of the product catalog listing.
type CatalogRow struct {
	Product   Product   `json:"product"`
	Inventory Inventory `json:"inventory"`
}

func FromCatalogRow(r catalog.Row) CatalogRow {
	return CatalogRow{
		Product:   FromProduct(r.Product),
		Inventory: FromInventory(r.Inventory),
	}
}
