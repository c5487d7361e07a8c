package order

import (
	"context"
	"strconv"
	"time"

	domoutbox "github.com/Zhima-Mochi/ecom-compositor/internal/domain/outbox"
	"github.com/Zhima-Mochi/ecom-compositor/internal/observability"
	"github.com/Zhima-Mochi/ecom-compositor/internal/observability/logctx"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService   = "order-orchestrator"
	spanPrefix     = "UC."
	publishPeer    = "outbox"
	publishTimeout = 300 * time.Millisecond
	outcomeSuccess = "success"
	outcomeError   = "error"
	statusOK       = "OK"
)

// saga carries the observability plumbing and event publishing shared by both sagas.
type saga struct {
	publisher domoutbox.Publisher
	tel       observability.Observability

	log observability.Logger
	// RED metrics (resolved once at construction).
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func newSaga(publisher domoutbox.Publisher, tel observability.Observability) saga {
	if tel == nil {
		tel = observability.Nop()
	}
	metrics := tel.Metrics()
	return saga{
		publisher:    publisher,
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", orderService)),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
		extCounter:   metrics.Counter(observability.MExternalRequests),
		extHistogram: metrics.Histogram(observability.MExternalRequestDuration),
	}
}

// finish ends the span, records RED metrics and writes the use_case_done line.
func (s *saga) finish(
	ctx context.Context,
	span trace.Span,
	logger observability.Logger,
	useCase string,
	start time.Time,
	outcome, statusText string,
	err error,
	extra ...observability.Field,
) {
	lat := time.Since(start).Seconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, statusText)
	} else {
		span.SetStatus(codes.Ok, statusText)
	}
	span.End()

	s.reqCounter.Add(1,
		observability.L("use_case", useCase),
		observability.L("outcome", outcome),
	)
	s.durHistogram.Observe(lat, observability.L("use_case", useCase))

	fields := append([]observability.Field{
		observability.F("outcome", outcome),
		observability.F("status", statusText),
		observability.F("latency_seconds", lat),
	}, extra...)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	if err != nil {
		fields = append(fields, observability.Err(err))
	}
	logger.Info("use_case_done", fields...)
}

// publish emits one lifecycle event. It is meant to be deferred by the step
// that performs the write, so it runs whether the write succeeded, failed or
// was cancelled. Failures are logged and counted, never returned.
func (s *saga) publish(ctx context.Context, principal, description string) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	start := time.Now()
	outcome := outcomeSuccess
	err := s.publisher.Publish(pubCtx, domoutbox.NewLifecycleEvent(principal, description))
	if err != nil {
		outcome = outcomeError
		logctx.FromOr(ctx, s.log).Warn("event_publish_failed",
			observability.F("description", description),
			observability.F("principal", principal),
			observability.Err(err),
		)
	}

	s.extCounter.Add(1,
		observability.L("peer", publishPeer),
		observability.L("endpoint", description),
		observability.L("outcome", outcome),
	)
	s.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", publishPeer),
		observability.L("endpoint", description),
	)
}

// principal renders an order id for events; an unassigned id is empty.
func principal(orderID int64) string {
	if orderID == 0 {
		return ""
	}
	return strconv.FormatInt(orderID, 10)
}
