package catalog

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"

	domain "github.com/Zhima-Mochi/ecom-compositor/internal/domain/catalog"
	"github.com/Zhima-Mochi/ecom-compositor/internal/domain/gateway"
	"github.com/Zhima-Mochi/ecom-compositor/internal/observability"
	"github.com/Zhima-Mochi/ecom-compositor/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	catalogService     = "catalog-aggregator"
	useCaseCatalogList = "catalog.list"
	spanPrefix         = "UC."

	DefaultConcurrency = 16
)

// ListCatalogUseCase joins the product listing with per-product inventory lookups.
type ListCatalogUseCase struct {
	catalog     gateway.CatalogGateway
	inventory   gateway.InventoryGateway
	concurrency int
	tel         observability.Observability

	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
}

// NewListCatalogUseCase bounds in-flight inventory lookups to concurrency
// (DefaultConcurrency when <= 0).
func NewListCatalogUseCase(
	catalog gateway.CatalogGateway,
	inventory gateway.InventoryGateway,
	concurrency int,
	tel observability.Observability,
) *ListCatalogUseCase {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if tel == nil {
		tel = observability.Nop()
	}
	return &ListCatalogUseCase{
		catalog:      catalog,
		inventory:    inventory,
		concurrency:  concurrency,
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", catalogService)),
		reqCounter:   tel.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: tel.Metrics().Histogram(observability.MUsecaseDuration),
	}
}

type lookup struct {
	row domain.Row
	err error
}

// Execute returns a single-use sequence of catalog rows in completion order.
// The first failure is yielded last and cancels the lookups still in flight;
// stopping early does the same. No goroutine outlives the iteration.
func (uc *ListCatalogUseCase) Execute(ctx context.Context) iter.Seq2[domain.Row, error] {
	return func(yield func(domain.Row, error) bool) {
		logger := logctx.FromOr(ctx, uc.log).With(observability.F("use_case", useCaseCatalogList))
		ctx, span := uc.tel.Tracer().Start(logctx.With(ctx, logger), spanPrefix+"ListCatalog",
			attribute.String("use_case", useCaseCatalogList),
			attribute.Int("catalog.concurrency", uc.concurrency),
		)
		start := time.Now()
		outcome, statusText := "success", "OK"
		rows := 0
		var err error

		defer func() {
			lat := time.Since(start).Seconds()
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, statusText)
			}
			span.SetAttributes(attribute.Int("catalog.rows", rows))
			span.End()
			uc.reqCounter.Add(1,
				observability.L("use_case", useCaseCatalogList),
				observability.L("outcome", outcome),
			)
			uc.durHistogram.Observe(lat, observability.L("use_case", useCaseCatalogList))

			fields := []observability.Field{
				observability.F("outcome", outcome),
				observability.F("status", statusText),
				observability.F("rows", rows),
				observability.F("latency_seconds", lat),
			}
			if err != nil {
				fields = append(fields, observability.Err(err))
			}
			logger.Info("use_case_done", fields...)
		}()

		ctx, cancel := context.WithCancel(ctx)
		results := uc.fanOut(ctx)
		defer func() {
			cancel()
			for range results {
			}
		}()

		for r := range results {
			if r.err != nil {
				err = r.err
				outcome, statusText = "error", "LOOKUP_FAILED"
				yield(domain.Row{}, r.err)
				return
			}
			rows++
			if !yield(r.row, nil) {
				outcome, statusText = "success", "CONSUMER_STOPPED"
				return
			}
		}
		if cerr := ctx.Err(); cerr != nil {
			err = cerr
			outcome, statusText = "error", "CONTEXT_CANCELED"
			yield(domain.Row{}, cerr)
		}
	}
}

// fanOut streams products and runs at most uc.concurrency inventory lookups
// at a time. The returned channel closes once every goroutine has exited.
func (uc *ListCatalogUseCase) fanOut(ctx context.Context) <-chan lookup {
	results := make(chan lookup)
	send := func(l lookup) bool {
		select {
		case results <- l:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		var wg sync.WaitGroup
		defer func() {
			wg.Wait()
			close(results)
		}()

		sem := make(chan struct{}, uc.concurrency)
		for p, err := range uc.catalog.ListProducts(ctx) {
			if err != nil {
				send(lookup{err: fmt.Errorf("list products: %w", err)})
				return
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			wg.Add(1)
			go func() {
				defer func() {
					<-sem
					wg.Done()
				}()
				rec, err := uc.inventory.FetchInventory(ctx, p.ID)
				if err != nil {
					send(lookup{err: fmt.Errorf("inventory for product %d: %w", p.ID, err)})
					return
				}
				send(lookup{row: domain.Row{Product: p, Inventory: rec}})
			}()
		}
	}()

	return results
}
