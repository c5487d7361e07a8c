package catalog

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	domain "github.com/Zhima-Mochi/ecom-compositor/internal/domain/catalog"
	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/inventory"
	"github.com/Zhima-Mochi/ecom-compositor/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
)

// slowInventory delays lookups and tracks the peak number in flight.
type slowInventory struct {
	*memory.Inventory
	delay    time.Duration
	failFor  int64
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func (s *slowInventory) FetchInventory(ctx context.Context, productID int64) (*inventory.Record, error) {
	s.calls.Add(1)
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}

	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if productID == s.failFor {
		return nil, fmt.Errorf("inventory service: HTTP 500")
	}
	return s.Inventory.FetchInventory(ctx, productID)
}

func seed(n int) (*memory.Catalog, *memory.Inventory) {
	cat := memory.NewCatalog()
	inv := memory.NewInventory()
	for i := 1; i <= n; i++ {
		cat.Put(&domain.Product{ID: int64(i), Name: fmt.Sprintf("p%d", i), Price: decimal.NewFromInt(int64(i))})
		inv.Seed(int64(i), i*10)
	}
	return cat, inv
}

func collect(t *testing.T, uc *ListCatalogUseCase) ([]int64, error) {
	t.Helper()
	var ids []int64
	for row, err := range uc.Execute(context.Background()) {
		if err != nil {
			return ids, err
		}
		if row.Inventory.ProductID != row.Product.ID {
			t.Fatalf("row mismatched: product %d inventory for %d", row.Product.ID, row.Inventory.ProductID)
		}
		ids = append(ids, row.Product.ID)
	}
	return ids, nil
}

func TestListCatalogJoinsEveryProduct(t *testing.T) {
	cat, inv := seed(20)
	uc := NewListCatalogUseCase(cat, inv, 4, nil)

	first, err := collect(t, uc)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := collect(t, uc)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	slices.Sort(first)
	slices.Sort(second)
	if len(first) != 20 || !slices.Equal(first, second) {
		t.Fatalf("first=%v second=%v", first, second)
	}
}

func TestListCatalogEmpty(t *testing.T) {
	uc := NewListCatalogUseCase(memory.NewCatalog(), memory.NewInventory(), 0, nil)

	ids, err := collect(t, uc)
	if err != nil || len(ids) != 0 {
		t.Fatalf("ids=%v err=%v", ids, err)
	}
}

func TestListCatalogBoundsConcurrency(t *testing.T) {
	cat, base := seed(24)
	inv := &slowInventory{Inventory: base, delay: 5 * time.Millisecond}
	uc := NewListCatalogUseCase(cat, inv, 3, nil)

	ids, err := collect(t, uc)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(ids) != 24 {
		t.Fatalf("rows = %d", len(ids))
	}
	if peak := inv.peak.Load(); peak > 3 {
		t.Fatalf("peak in-flight lookups = %d, limit 3", peak)
	}
}

func TestListCatalogLookupFailureEndsSequence(t *testing.T) {
	cat, base := seed(10)
	inv := &slowInventory{Inventory: base, delay: time.Millisecond, failFor: 3}
	uc := NewListCatalogUseCase(cat, inv, 2, nil)

	var errs int
	var last error
	for _, err := range uc.Execute(context.Background()) {
		if err != nil {
			errs++
			last = err
		}
	}
	if errs != 1 || last == nil {
		t.Fatalf("errors yielded = %d, last = %v", errs, last)
	}
	if inv.inFlight.Load() != 0 {
		t.Fatal("lookups still in flight after iteration ended")
	}
}

func TestListCatalogMissingInventory(t *testing.T) {
	cat, inv := seed(3)
	cat.Put(&domain.Product{ID: 99, Price: decimal.NewFromInt(1)})
	uc := NewListCatalogUseCase(cat, inv, 2, nil)

	if _, err := collect(t, uc); err == nil {
		t.Fatal("expected error for product without inventory")
	}
}

func TestListCatalogEarlyStopLeavesNoGoroutines(t *testing.T) {
	cat, base := seed(50)
	inv := &slowInventory{Inventory: base, delay: 2 * time.Millisecond}
	uc := NewListCatalogUseCase(cat, inv, 4, nil)
	before := runtime.NumGoroutine()

	got := 0
	for _, err := range uc.Execute(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got++
		if got == 2 {
			break
		}
	}
	if inv.inFlight.Load() != 0 {
		t.Fatal("lookups still in flight after break")
	}
	if calls := inv.calls.Load(); calls >= 50 {
		t.Fatalf("lookups kept running after break: %d", calls)
	}

	deadline := time.Now().Add(time.Second)
	for runtime.NumGoroutine() > before && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := runtime.NumGoroutine(); n > before {
		t.Fatalf("goroutines: before=%d after=%d", before, n)
	}
}

func TestListCatalogParentCancel(t *testing.T) {
	cat, base := seed(30)
	inv := &slowInventory{Inventory: base, delay: 2 * time.Millisecond}
	uc := NewListCatalogUseCase(cat, inv, 2, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var once sync.Once
	var last error
	for _, err := range uc.Execute(ctx) {
		if err != nil {
			last = err
			break
		}
		once.Do(cancel)
	}
	if !errors.Is(last, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", last)
	}
}
