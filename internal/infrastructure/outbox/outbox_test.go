package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domoutbox "github.com/Zhima-Mochi/ecom-compositor/internal/domain/outbox"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus := NewBus(nil, Options{})
	got := make(chan domoutbox.LifecycleEvent, 1)
	bus.Subscribe(domoutbox.LifecycleEventName, func(ctx context.Context, e domoutbox.Event) error {
		got <- e.(domoutbox.LifecycleEvent)
		return nil
	})
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	if err := bus.Publish(context.Background(), domoutbox.NewLifecycleEvent("12", domoutbox.OrderCreated)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case e := <-got:
		if e.Principal != "12" || e.Description != domoutbox.OrderCreated || e.Type != domoutbox.TypeUpdate {
			t.Fatalf("event = %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestHandlerContextOutlivesPublisher(t *testing.T) {
	bus := NewBus(nil, Options{})
	errs := make(chan error, 1)
	bus.Subscribe(domoutbox.LifecycleEventName, func(ctx context.Context, e domoutbox.Event) error {
		errs <- ctx.Err()
		return nil
	})
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	if err := bus.Publish(ctx, domoutbox.NewLifecycleEvent("1", domoutbox.OrderCreated)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	cancel()

	select {
	case err := <-errs:
		if err != nil {
			t.Fatalf("handler context already done: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestHandlerPanicDoesNotStopBus(t *testing.T) {
	bus := NewBus(nil, Options{})
	var mu sync.Mutex
	calls := 0
	delivered := make(chan struct{}, 2)
	bus.Subscribe(domoutbox.LifecycleEventName, func(ctx context.Context, e domoutbox.Event) error {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		delivered <- struct{}{}
		if n == 1 {
			panic("sink exploded")
		}
		return nil
	})
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	for i := 0; i < 2; i++ {
		if err := bus.Publish(context.Background(), domoutbox.NewLifecycleEvent("1", domoutbox.OrderCreated)); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		select {
		case <-delivered:
		case <-time.After(2 * time.Second):
			t.Fatalf("delivery %d missing", i+1)
		}
	}
}

func TestStopDrainsQueue(t *testing.T) {
	bus := NewBus(nil, Options{})
	var mu sync.Mutex
	delivered := 0
	bus.Subscribe(domoutbox.LifecycleEventName, func(ctx context.Context, e domoutbox.Event) error {
		mu.Lock()
		delivered++
		mu.Unlock()
		return nil
	})
	bus.Start(context.Background())

	for i := 0; i < 10; i++ {
		_ = bus.Publish(context.Background(), domoutbox.NewLifecycleEvent("1", domoutbox.PaymentCreated))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	bus.Stop(ctx)

	mu.Lock()
	defer mu.Unlock()
	if delivered != 10 {
		t.Fatalf("delivered %d of 10", delivered)
	}
	if err := bus.Publish(context.Background(), domoutbox.NewLifecycleEvent("1", domoutbox.PaymentCreated)); !errors.Is(err, ErrClosed) {
		t.Fatalf("publish after stop: %v", err)
	}
}

func TestPublishOnFullQueueHonoursContext(t *testing.T) {
	bus := NewBus(nil, Options{QueueSize: 1})
	// not started: the single slot fills and stays full
	if err := bus.Publish(context.Background(), domoutbox.NewLifecycleEvent("1", domoutbox.OrderCreated)); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := bus.Publish(ctx, domoutbox.NewLifecycleEvent("1", domoutbox.OrderCreated)); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
