package order

import (
	"context"
	"sync"
	"testing"

	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/catalog"
	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/inventory"
	domain "github.com/Zhima-Mochi/ecom-compositor/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/ecom-compositor/internal/domain/outbox"
	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/payment"
	"github.com/Zhima-Mochi/ecom-compositor/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
)

// journal records gateway calls and injects failures per operation name.
type journal struct {
	mu     sync.Mutex
	calls  []string
	faults map[string]error
	hooks  map[string]func()
}

func (j *journal) record(op string) error {
	j.mu.Lock()
	j.calls = append(j.calls, op)
	hook, err := j.hooks[op], j.faults[op]
	j.mu.Unlock()
	if hook != nil {
		hook()
	}
	return err
}

// on runs fn whenever op is called, before the call reaches the store.
func (j *journal) on(op string, fn func()) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.hooks == nil {
		j.hooks = make(map[string]func())
	}
	j.hooks[op] = fn
}

func (j *journal) fail(op string, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.faults == nil {
		j.faults = make(map[string]error)
	}
	j.faults[op] = err
}

var writeOps = map[string]bool{
	"UpdateInventory": true,
	"CreateOrder":     true,
	"UpdateOrder":     true,
	"CreatePayment":   true,
	"UpdatePayment":   true,
}

func (j *journal) writes() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []string
	for _, c := range j.calls {
		if writeOps[c] {
			out = append(out, c)
		}
	}
	return out
}

func (j *journal) snapshot() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.calls...)
}

type catalogStub struct {
	*memory.Catalog
	j *journal
}

func (c catalogStub) FetchProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	if err := c.j.record("FetchProduct"); err != nil {
		return nil, err
	}
	return c.Catalog.FetchProduct(ctx, id)
}

type inventoryStub struct {
	*memory.Inventory
	j *journal
}

func (s inventoryStub) FetchInventory(ctx context.Context, productID int64) (*inventory.Record, error) {
	if err := s.j.record("FetchInventory"); err != nil {
		return nil, err
	}
	return s.Inventory.FetchInventory(ctx, productID)
}

func (s inventoryStub) UpdateInventory(ctx context.Context, id int64, rec *inventory.Record) (*inventory.Record, error) {
	if err := s.j.record("UpdateInventory"); err != nil {
		return nil, err
	}
	return s.Inventory.UpdateInventory(ctx, id, rec)
}

type ordersStub struct {
	*memory.Orders
	j *journal
}

func (s ordersStub) CreateOrder(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	if err := s.j.record("CreateOrder"); err != nil {
		return nil, err
	}
	return s.Orders.CreateOrder(ctx, o)
}

func (s ordersStub) FetchOrder(ctx context.Context, id int64) (*domain.Order, error) {
	if err := s.j.record("FetchOrder"); err != nil {
		return nil, err
	}
	return s.Orders.FetchOrder(ctx, id)
}

func (s ordersStub) UpdateOrder(ctx context.Context, id int64, o *domain.Order) (*domain.Order, error) {
	if err := s.j.record("UpdateOrder"); err != nil {
		return nil, err
	}
	return s.Orders.UpdateOrder(ctx, id, o)
}

type paymentsStub struct {
	*memory.Payments
	j *journal
}

func (s paymentsStub) CreatePayment(ctx context.Context, p *payment.Payment) (*payment.Payment, error) {
	if err := s.j.record("CreatePayment"); err != nil {
		return nil, err
	}
	return s.Payments.CreatePayment(ctx, p)
}

func (s paymentsStub) FetchPaymentByOrder(ctx context.Context, orderID int64) (*payment.Payment, error) {
	if err := s.j.record("FetchPaymentByOrder"); err != nil {
		return nil, err
	}
	return s.Payments.FetchPaymentByOrder(ctx, orderID)
}

func (s paymentsStub) UpdatePayment(ctx context.Context, id int64, p *payment.Payment) (*payment.Payment, error) {
	if err := s.j.record("UpdatePayment"); err != nil {
		return nil, err
	}
	return s.Payments.UpdatePayment(ctx, id, p)
}

type recordingPublisher struct {
	mu      sync.Mutex
	events  []domoutbox.LifecycleEvent
	ctxErrs []error
	err     error
}

func (p *recordingPublisher) Publish(ctx context.Context, e domoutbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if le, ok := e.(domoutbox.LifecycleEvent); ok {
		p.events = append(p.events, le)
		p.ctxErrs = append(p.ctxErrs, ctx.Err())
	}
	return p.err
}

// deadContexts counts publishes that were handed an already finished context.
func (p *recordingPublisher) deadContexts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, err := range p.ctxErrs {
		if err != nil {
			n++
		}
	}
	return n
}

func (p *recordingPublisher) descriptions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Description+"@"+e.Principal)
	}
	return out
}

type fixture struct {
	j         *journal
	catalog   *memory.Catalog
	inventory *memory.Inventory
	orders    *memory.Orders
	payments  *memory.Payments
	events    *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		j:         &journal{},
		catalog:   memory.NewCatalog(),
		inventory: memory.NewInventory(),
		orders:    memory.NewOrders(),
		payments:  memory.NewPayments(),
		events:    &recordingPublisher{},
	}
}

func (f *fixture) product(id int64, price string, stock int) {
	f.catalog.Put(&catalog.Product{ID: id, Name: "product", Price: decimal.RequireFromString(price)})
	f.inventory.Seed(id, stock)
}

func (f *fixture) createSaga() *CreateOrderSaga {
	return NewCreateOrderSaga(
		catalogStub{f.catalog, f.j},
		inventoryStub{f.inventory, f.j},
		ordersStub{f.orders, f.j},
		paymentsStub{f.payments, f.j},
		f.events,
		nil,
	)
}

func (f *fixture) completeSaga(locker Locker) *CompleteOrderSaga {
	return NewCompleteOrderSaga(
		inventoryStub{f.inventory, f.j},
		ordersStub{f.orders, f.j},
		paymentsStub{f.payments, f.j},
		f.events,
		locker,
		nil,
	)
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
