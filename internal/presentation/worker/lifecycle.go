// Package workerpresentation adapts bus deliveries into sink calls with the
// same logging, tracing and metrics conventions as HTTP requests.
package workerpresentation

import (
	"context"
	"fmt"
	"time"

	domoutbox "github.com/Zhima-Mochi/ecom-compositor/internal/domain/outbox"
	"github.com/Zhima-Mochi/ecom-compositor/internal/observability"
	"github.com/Zhima-Mochi/ecom-compositor/internal/observability/logctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const peerEventSink = "event_sink"

// LifecycleHandler returns the bus handler that forwards lifecycle events to sink.
func LifecycleHandler(sink domoutbox.Sink, channel string, tel observability.Observability) domoutbox.Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	base := tel.Logger().With(observability.F("component", "lifecycle_worker"))
	extCounter := tel.Metrics().Counter(observability.MExternalRequests)
	extHistogram := tel.Metrics().Histogram(observability.MExternalRequestDuration)

	return func(ctx context.Context, e domoutbox.Event) (err error) {
		evt, ok := e.(domoutbox.LifecycleEvent)
		if !ok {
			return fmt.Errorf("lifecycle handler: unexpected event %T", e)
		}

		ctx = WithEventContext(ctx, logctx.FromOr(ctx, base), map[string]string{
			"event_id":    evt.ObjectID,
			"event":       evt.EventName(),
			"description": evt.Description,
		})
		ctx, span := tel.Tracer().Start(ctx, "Event.Deliver",
			attribute.String("messaging.destination", channel),
			attribute.String("event.description", evt.Description),
			attribute.String("event.principal", evt.Principal),
		)
		start := time.Now()
		outcome := "success"

		defer func() {
			if err != nil {
				outcome = "error"
				span.RecordError(err)
				span.SetStatus(codes.Error, "EVENT_DELIVERY_FAILED")
				logctx.FromOr(ctx, base).Warn("event_publish_failed", observability.Err(err))
			}
			span.End()
			extCounter.Add(1,
				observability.L("peer", peerEventSink),
				observability.L("endpoint", channel),
				observability.L("outcome", outcome),
			)
			extHistogram.Observe(time.Since(start).Seconds(),
				observability.L("peer", peerEventSink),
				observability.L("endpoint", channel),
			)
		}()

		return sink.Deliver(ctx, evt)
	}
}
