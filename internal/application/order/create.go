package order

import (
	"context"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/gateway"
	domain "github.com/Zhima-Mochi/ecom-compositor/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/ecom-compositor/internal/domain/outbox"
	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/payment"
	"github.com/Zhima-Mochi/ecom-compositor/internal/observability"
	"github.com/Zhima-Mochi/ecom-compositor/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const useCaseOrderCreate = "order.create"

type CreateOrderInput struct {
	ProductID  int64
	Quantity   int
	CustomerID int64
}

type CreateOrderResult struct {
	Order   *domain.Order
	Payment *payment.Payment
}

// CreateOrderSaga checks stock, prices the order, then creates the order and
// its pending payment. Nothing is rolled back when a later step fails.
type CreateOrderSaga struct {
	saga
	catalog   gateway.CatalogGateway
	inventory gateway.InventoryGateway
	orders    gateway.OrderGateway
	payments  gateway.PaymentGateway
}

func NewCreateOrderSaga(
	catalog gateway.CatalogGateway,
	inventory gateway.InventoryGateway,
	orders gateway.OrderGateway,
	payments gateway.PaymentGateway,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *CreateOrderSaga {
	return &CreateOrderSaga{
		saga:      newSaga(publisher, tel),
		catalog:   catalog,
		inventory: inventory,
		orders:    orders,
		payments:  payments,
	}
}

func (uc *CreateOrderSaga) Execute(ctx context.Context, cmd CreateOrderInput) (_ *CreateOrderResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(observability.F("use_case", useCaseOrderCreate))
	ctx = logctx.With(ctx, logger)

	var orderID int64

	ctx, span := uc.tel.Tracer().Start(ctx, spanPrefix+"CreateOrderSaga",
		attribute.String("use_case", useCaseOrderCreate),
		attribute.Int64("order.product_id", cmd.ProductID),
		attribute.Int64("order.customer_id", cmd.CustomerID),
		attribute.Int("order.quantity", cmd.Quantity),
	)
	start := time.Now()
	outcome, statusText := outcomeSuccess, statusOK

	defer func() {
		uc.finish(ctx, span, logger, useCaseOrderCreate, start, outcome, statusText, err,
			observability.F("order_id", orderID),
		)
	}()

	if cmd.Quantity <= 0 {
		outcome, statusText = outcomeError, "QUANTITY_INVALID"
		return nil, newValidation("quantity must be greater than zero")
	}

	stock, err := uc.inventory.FetchInventory(ctx, cmd.ProductID)
	if err != nil {
		outcome, statusText = outcomeError, "INVENTORY_LOOKUP_FAILED"
		return nil, fmt.Errorf("check inventory for product %d: %w", cmd.ProductID, err)
	}
	if err := stock.EnsureCovers(cmd.Quantity); err != nil {
		outcome, statusText = outcomeError, "INSUFFICIENT_INVENTORY"
		return nil, err
	}

	product, err := uc.catalog.FetchProduct(ctx, cmd.ProductID)
	if err != nil {
		outcome, statusText = outcomeError, "PRODUCT_LOOKUP_FAILED"
		return nil, fmt.Errorf("fetch product %d: %w", cmd.ProductID, err)
	}

	draft, err := domain.New(cmd.ProductID, cmd.Quantity, cmd.CustomerID, product.Total(cmd.Quantity), time.Now())
	if err != nil {
		outcome, statusText = outcomeError, "DOMAIN_CONSTRUCTION_FAILED"
		return nil, fmt.Errorf("order: construct: %w", err)
	}

	created, err := uc.createOrder(ctx, draft)
	if err != nil {
		outcome, statusText = outcomeError, "ORDER_CREATE_FAILED"
		return nil, fmt.Errorf("create order: %w", err)
	}
	orderID = created.ID
	span.AddEvent("order.created", trace.WithAttributes(attribute.Int64("order.id", orderID)))

	pay, err := uc.createPayment(ctx, payment.New(created.ID, created.TotalAmount))
	if err != nil {
		outcome, statusText = outcomeError, "PAYMENT_CREATE_FAILED"
		return nil, fmt.Errorf("create payment for order %d: %w", created.ID, err)
	}
	span.AddEvent("payment.created", trace.WithAttributes(attribute.Int64("payment.id", pay.ID)))

	return &CreateOrderResult{Order: created, Payment: pay}, nil
}

// createOrder publishes ORDER CREATED keyed by the assigned id, or with an
// empty principal when the order service never assigned one.
func (uc *CreateOrderSaga) createOrder(ctx context.Context, draft *domain.Order) (created *domain.Order, err error) {
	defer func() {
		var id int64
		if created != nil {
			id = created.ID
		}
		uc.publish(ctx, principal(id), domoutbox.OrderCreated)
	}()
	return uc.orders.CreateOrder(ctx, draft)
}

func (uc *CreateOrderSaga) createPayment(ctx context.Context, p *payment.Payment) (*payment.Payment, error) {
	defer uc.publish(ctx, principal(p.OrderID), domoutbox.PaymentCreated)
	return uc.payments.CreatePayment(ctx, p)
}

