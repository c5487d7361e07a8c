// Package gateway declares the ports to the four downstream services and the
// errors they report. Callers decide policy; gateways never retry.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/catalog"
	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/inventory"
	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/order"
	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/payment"
)

const (
	ServiceCatalog   = "catalog"
	ServiceInventory = "inventory"
	ServiceOrder     = "order"
	ServicePayment   = "payment"
)

var ErrNotFound = errors.New("gateway: resource not found")

// TransportError covers unreachable services, non-2xx answers other than 404,
// and bodies that do not decode into a complete record.
type TransportError struct {
	Service string
	Status  int
	Body    string
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status != 0 && e.Body != "":
		return fmt.Sprintf("%s service: HTTP %d: %s", e.Service, e.Status, e.Body)
	case e.Status != 0:
		return fmt.Sprintf("%s service: HTTP %d", e.Service, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s service: %v", e.Service, e.Err)
	default:
		return e.Service + " service: transport failure"
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

type CatalogGateway interface {
	FetchProduct(ctx context.Context, productID int64) (*catalog.Product, error)
	// ListProducts yields each product once; a failure is the final element.
	ListProducts(ctx context.Context) iter.Seq2[*catalog.Product, error]
}

type InventoryGateway interface {
	FetchInventory(ctx context.Context, productID int64) (*inventory.Record, error)
	UpdateInventory(ctx context.Context, inventoryID int64, rec *inventory.Record) (*inventory.Record, error)
}

type OrderGateway interface {
	CreateOrder(ctx context.Context, o *order.Order) (*order.Order, error)
	FetchOrder(ctx context.Context, orderID int64) (*order.Order, error)
	UpdateOrder(ctx context.Context, orderID int64, o *order.Order) (*order.Order, error)
}

type PaymentGateway interface {
	CreatePayment(ctx context.Context, p *payment.Payment) (*payment.Payment, error)
	FetchPaymentByOrder(ctx context.Context, orderID int64) (*payment.Payment, error)
	UpdatePayment(ctx context.Context, paymentID int64, p *payment.Payment) (*payment.Payment, error)
}
