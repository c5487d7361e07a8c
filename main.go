package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Zhima-Mochi/ecom-compositor/internal/application/catalog"
	appOrder "github.com/Zhima-Mochi/ecom-compositor/internal/application/order"
	"github.com/Zhima-Mochi/ecom-compositor/internal/config"
	domcatalog "github.com/Zhima-Mochi/ecom-compositor/internal/domain/catalog"
	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/gateway"
	domoutbox "github.com/Zhima-Mochi/ecom-compositor/internal/domain/outbox"
	"github.com/Zhima-Mochi/ecom-compositor/internal/infrastructure/eventsink"
	httptransport "github.com/Zhima-Mochi/ecom-compositor/internal/infrastructure/http"
	"github.com/Zhima-Mochi/ecom-compositor/internal/infrastructure/lock"
	"github.com/Zhima-Mochi/ecom-compositor/internal/infrastructure/memory"
	infraobs "github.com/Zhima-Mochi/ecom-compositor/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/ecom-compositor/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/ecom-compositor/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/ecom-compositor/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/ecom-compositor/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/ecom-compositor/internal/observability"
	httppresentation "github.com/Zhima-Mochi/ecom-compositor/internal/presentation/http"
	workerpresentation "github.com/Zhima-Mochi/ecom-compositor/internal/presentation/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type gateways struct {
	catalog   gateway.CatalogGateway
	inventory gateway.InventoryGateway
	orders    gateway.OrderGateway
	payments  gateway.PaymentGateway
}

func main() {
	cfg := config.Load()

	baseLogger, err := zaplogger.New(zaplogger.Options{
		Service: cfg.ServiceName,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger.Zap())

	oteltrace.InstallPropagator()
	registry := prometrics.New(prometheus.DefaultRegisterer, "")
	counters, histograms := registry.Instruments(observability.CounterSpecs, observability.HistogramSpecs)
	tel := infraobs.New(oteltrace.New(cfg.ServiceName), baseLogger, counters, histograms)

	systemLogger := baseLogger.With(observability.F("component", "main"))

	var rdb redis.UniversalClient
	if cfg.NeedsRedis() {
		addr := cfg.RedisAddr
		if addr == "" {
			addr = "localhost:6379"
		}
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		defer func() { _ = rdb.Close() }()
	}

	gw := newGateways(cfg, tel)

	var sink interface {
		domoutbox.Sink
		Channel() string
	}
	switch cfg.EventSink {
	case config.SinkRedis:
		sink = eventsink.NewRedisSink(rdb, cfg.EventChannel, baseLogger)
	default:
		sink = eventsink.NewLogSink(cfg.EventChannel, baseLogger)
	}

	// In-memory bus decouples lifecycle publishing from the event sink.
	bus := outbox.NewBus(baseLogger, outbox.Options{QueueSize: cfg.EventQueueSize})
	bus.Subscribe(domoutbox.LifecycleEventName, workerpresentation.LifecycleHandler(sink, sink.Channel(), tel))
	bus.Start(context.Background())

	var locker appOrder.Locker
	switch cfg.CompletionLock {
	case config.LockLocal:
		locker = lock.NewLocal()
	case config.LockRedis:
		locker = lock.NewRedis(rdb, cfg.CompletionLockTTL)
	}

	createOrder := appOrder.NewCreateOrderSaga(gw.catalog, gw.inventory, gw.orders, gw.payments, bus, tel)
	completeOrder := appOrder.NewCompleteOrderSaga(gw.inventory, gw.orders, gw.payments, bus, locker, tel)
	listCatalog := catalog.NewListCatalogUseCase(gw.catalog, gw.inventory, cfg.CatalogLookups, tel)

	var opts []httppresentation.Option
	if rdb != nil {
		opts = append(opts, httppresentation.WithHealthCheck(redisPinger{rdb}))
	}
	handler := httppresentation.NewHandler(createOrder, completeOrder, listCatalog, tel, opts...)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		systemLogger.Info("http_server_start",
			observability.F("addr", server.Addr),
			observability.F("downstream_mode", cfg.DownstreamMode),
			observability.F("event_sink", cfg.EventSink),
			observability.F("completion_lock", cfg.CompletionLock),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("http_server_error", observability.Err(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error", observability.Err(err))
	} else {
		systemLogger.Info("http_server_stopped")
	}
	bus.Stop(shutdownCtx)
}

func newGateways(cfg config.Config, tel observability.Observability) gateways {
	if cfg.DownstreamMode == config.DownstreamMemory {
		return memoryGateways()
	}
	hc := &http.Client{Timeout: cfg.DownstreamTimeout}
	return gateways{
		catalog:   httptransport.NewCatalogClient(cfg.CatalogURL, hc, tel),
		inventory: httptransport.NewInventoryClient(cfg.InventoryURL, hc, tel),
		orders:    httptransport.NewOrderClient(cfg.OrderURL, hc, tel),
		payments:  httptransport.NewPaymentClient(cfg.PaymentURL, hc, tel),
	}
}

// memoryGateways seeds a small catalog for local runs without the downstream services.
func memoryGateways() gateways {
	now := time.Now()
	cat := memory.NewCatalog()
	inv := memory.NewInventory()
	for i, name := range []string{"Desk Lamp", "Notebook", "Headphones"} {
		id := int64(i + 1)
		cat.Put(&domcatalog.Product{
			ID:        id,
			Name:      name,
			Price:     decimal.New(int64(1999*(i+1)), -2),
			Category:  "demo",
			CreatedAt: now,
			UpdatedAt: now,
		})
		inv.Seed(id, 10*(i+1))
	}
	return gateways{
		catalog:   cat,
		inventory: inv,
		orders:    memory.NewOrders(),
		payments:  memory.NewPayments(),
	}
}

type redisPinger struct{ c redis.UniversalClient }

func (p redisPinger) Ping(ctx context.Context) error { return p.c.Ping(ctx).Err() }
