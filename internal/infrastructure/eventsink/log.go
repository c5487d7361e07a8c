package eventsink

import (
	"context"
	"encoding/json"
	"fmt"

	domoutbox "github.com/Zhima-Mochi/ecom-compositor/internal/domain/outbox"
	"github.com/Zhima-Mochi/ecom-compositor/internal/observability"
	"github.com/Zhima-Mochi/ecom-compositor/internal/observability/logctx"
	"github.com/Zhima-Mochi/ecom-compositor/internal/pkg/wire"
)

// LogSink only logs the message; used when no broker is configured.
type LogSink struct {
	channel string
	log     observability.Logger
}

func NewLogSink(channel string, logger observability.Logger) *LogSink {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &LogSink{
		channel: channel,
		log:     logger.With(observability.F("component", componentSink), observability.F("channel", channel)),
	}
}

func (s *LogSink) Channel() string { return s.channel }

func (s *LogSink) Deliver(ctx context.Context, e domoutbox.LifecycleEvent) error {
	payload, err := json.Marshal(wire.FromLifecycleEvent(e))
	if err != nil {
		return fmt.Errorf("event sink: encode: %w", err)
	}
	logctx.FromOr(ctx, s.log).Info("event_produced", observability.F("message", string(payload)))
	return nil
}
