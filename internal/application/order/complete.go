package order

import (
	"context"
	"errors"
	"fmt"
	"strconv"
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

const useCaseOrderComplete = "order.complete"

type CompleteOrderInput struct {
	OrderID int64
}

type CompleteOrderResult struct {
	OrderID int64
	Status  domain.Status
}

// CompleteOrderSaga debits stock, settles the payment and completes the order,
// strictly in that order. A failed step leaves earlier steps applied.
type CompleteOrderSaga struct {
	saga
	inventory gateway.InventoryGateway
	orders    gateway.OrderGateway
	payments  gateway.PaymentGateway
	locker    Locker
}

// NewCompleteOrderSaga wires the saga; locker may be nil, in which case
// concurrent completions of one order are not serialised.
func NewCompleteOrderSaga(
	inventory gateway.InventoryGateway,
	orders gateway.OrderGateway,
	payments gateway.PaymentGateway,
	publisher domoutbox.Publisher,
	locker Locker,
	tel observability.Observability,
) *CompleteOrderSaga {
	return &CompleteOrderSaga{
		saga:      newSaga(publisher, tel),
		inventory: inventory,
		orders:    orders,
		payments:  payments,
		locker:    locker,
	}
}

func (uc *CompleteOrderSaga) Execute(ctx context.Context, cmd CompleteOrderInput) (_ *CompleteOrderResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(
		observability.F("use_case", useCaseOrderComplete),
		observability.F("order_id", cmd.OrderID),
	)
	ctx = logctx.With(ctx, logger)

	ctx, span := uc.tel.Tracer().Start(ctx, spanPrefix+"CompleteOrderSaga",
		attribute.String("use_case", useCaseOrderComplete),
		attribute.Int64("order.id", cmd.OrderID),
	)
	start := time.Now()
	outcome, statusText := outcomeSuccess, statusOK

	defer func() {
		uc.finish(ctx, span, logger, useCaseOrderComplete, start, outcome, statusText, err)
	}()

	if uc.locker != nil {
		release, ok, lerr := uc.locker.TryAcquire(ctx, "order:"+strconv.FormatInt(cmd.OrderID, 10))
		if lerr != nil {
			outcome, statusText = outcomeError, "LOCK_FAILED"
			return nil, fmt.Errorf("lock order %d: %w", cmd.OrderID, lerr)
		}
		if !ok {
			outcome, statusText = outcomeError, "COMPLETION_IN_PROGRESS"
			return nil, fmt.Errorf("order %d: %w", cmd.OrderID, ErrCompletionInProgress)
		}
		defer release()
	}

	current, err := uc.orders.FetchOrder(ctx, cmd.OrderID)
	if err != nil {
		outcome, statusText = outcomeError, "ORDER_LOOKUP_FAILED"
		return nil, fmt.Errorf("fetch order %d: %w", cmd.OrderID, err)
	}
	if !current.IsPendingPayment() {
		outcome, statusText = outcomeError, "INVALID_STATE"
		return nil, &InvalidStateError{OrderID: current.ID, Status: current.Status}
	}

	stock, err := uc.inventory.FetchInventory(ctx, current.ProductID)
	if err != nil {
		outcome, statusText = outcomeError, "INVENTORY_LOOKUP_FAILED"
		return nil, fmt.Errorf("check inventory for product %d: %w", current.ProductID, err)
	}
	if err := stock.EnsureCovers(current.Quantity); err != nil {
		outcome, statusText = outcomeError, "INSUFFICIENT_INVENTORY"
		return nil, err
	}

	if statusText, err = uc.debitInventory(ctx, current); err != nil {
		outcome = outcomeError
		return nil, err
	}
	span.AddEvent("inventory.debited")

	if statusText, err = uc.completePayment(ctx, current.ID); err != nil {
		outcome = outcomeError
		return nil, err
	}
	span.AddEvent("payment.completed")

	if statusText, err = uc.completeOrder(ctx, current.ID); err != nil {
		outcome = outcomeError
		return nil, err
	}
	span.AddEvent("order.completed", trace.WithAttributes(attribute.Int64("order.id", current.ID)))

	return &CompleteOrderResult{OrderID: current.ID, Status: domain.StatusPaymentCompleted}, nil
}

// debitInventory re-reads the record right before writing it back.
func (uc *CompleteOrderSaga) debitInventory(ctx context.Context, o *domain.Order) (string, error) {
	rec, err := uc.inventory.FetchInventory(ctx, o.ProductID)
	if err != nil {
		return "INVENTORY_LOOKUP_FAILED", fmt.Errorf("fetch inventory for product %d: %w", o.ProductID, err)
	}
	if err := rec.Deduct(o.Quantity, time.Now()); err != nil {
		return "INSUFFICIENT_INVENTORY", err
	}
	if _, err := uc.inventory.UpdateInventory(ctx, rec.ID, rec); err != nil {
		return "INVENTORY_UPDATE_FAILED", fmt.Errorf("update inventory %d: %w", rec.ID, err)
	}
	return statusOK, nil
}

func (uc *CompleteOrderSaga) completePayment(ctx context.Context, orderID int64) (string, error) {
	p, err := uc.payments.FetchPaymentByOrder(ctx, orderID)
	if err != nil {
		return "PAYMENT_LOOKUP_FAILED", fmt.Errorf("fetch payment for order %d: %w", orderID, err)
	}
	if err := p.Complete(time.Now()); err != nil {
		return "PAYMENT_INVALID_STATE", fmt.Errorf("payment %d: %w", p.ID, err)
	}
	if err := uc.updatePayment(ctx, orderID, p.ID, p); err != nil {
		return "PAYMENT_UPDATE_FAILED", fmt.Errorf("update payment %d: %w", p.ID, err)
	}
	return statusOK, nil
}

func (uc *CompleteOrderSaga) completeOrder(ctx context.Context, orderID int64) (string, error) {
	o, err := uc.orders.FetchOrder(ctx, orderID)
	if err != nil {
		return "ORDER_LOOKUP_FAILED", fmt.Errorf("fetch order %d: %w", orderID, err)
	}
	if err := o.CompletePayment(); err != nil {
		if errors.Is(err, domain.ErrInvalidStateTransition) {
			return "INVALID_STATE", &InvalidStateError{OrderID: o.ID, Status: o.Status}
		}
		return "INVALID_STATE", err
	}
	if err := uc.updateOrder(ctx, o); err != nil {
		return "ORDER_UPDATE_FAILED", fmt.Errorf("update order %d: %w", orderID, err)
	}
	return statusOK, nil
}

// updatePayment publishes PAYMENT COMPLETED however the write ends.
func (uc *CompleteOrderSaga) updatePayment(ctx context.Context, orderID, paymentID int64, p *payment.Payment) error {
	defer uc.publish(ctx, principal(orderID), domoutbox.PaymentCompleted)
	_, err := uc.payments.UpdatePayment(ctx, paymentID, p)
	return err
}

// updateOrder publishes ORDER COMPLETED however the write ends.
func (uc *CompleteOrderSaga) updateOrder(ctx context.Context, o *domain.Order) error {
	defer uc.publish(ctx, principal(o.ID), domoutbox.OrderCompleted)
	_, err := uc.orders.UpdateOrder(ctx, o.ID, o)
	return err
}
