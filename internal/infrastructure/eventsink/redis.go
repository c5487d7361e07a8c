// Package eventsink delivers lifecycle events to the external event channel.
package eventsink

import (
	"context"
	"encoding/json"
	"fmt"

	domoutbox "github.com/Zhima-Mochi/ecom-compositor/internal/domain/outbox"
	"github.com/Zhima-Mochi/ecom-compositor/internal/observability"
	"github.com/Zhima-Mochi/ecom-compositor/internal/observability/logctx"
	"github.com/Zhima-Mochi/ecom-compositor/internal/pkg/wire"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultChannel = "ecom-order-events"

	componentSink = "event_sink"
)

var (
	_ domoutbox.Sink = (*RedisSink)(nil)
	_ domoutbox.Sink = (*LogSink)(nil)
)

// RedisSink publishes each event as one JSON message on a pub/sub channel.
type RedisSink struct {
	client  redis.UniversalClient
	channel string
	log     observability.Logger
}

func NewRedisSink(client redis.UniversalClient, channel string, logger observability.Logger) *RedisSink {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &RedisSink{
		client:  client,
		channel: channel,
		log:     logger.With(observability.F("component", componentSink), observability.F("channel", channel)),
	}
}

func (s *RedisSink) Channel() string { return s.channel }

func (s *RedisSink) Deliver(ctx context.Context, e domoutbox.LifecycleEvent) error {
	payload, err := json.Marshal(wire.FromLifecycleEvent(e))
	if err != nil {
		return fmt.Errorf("event sink: encode: %w", err)
	}
	logctx.FromOr(ctx, s.log).Info("event_produced", observability.F("message", string(payload)))

	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("event sink: publish to %s: %w", s.channel, err)
	}
	return nil
}
