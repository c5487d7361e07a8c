package eventsink

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	domoutbox "github.com/Zhima-Mochi/ecom-compositor/internal/domain/outbox"
	"github.com/Zhima-Mochi/ecom-compositor/internal/infrastructure/observability/zaplogger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogSinkProducesLocalTimestamp(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sink := NewLogSink("", zaplogger.Wrap(zap.New(core)))

	if err := sink.Deliver(context.Background(), domoutbox.NewLifecycleEvent("9", domoutbox.OrderCreated)); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	entries := logs.FilterMessage("event_produced").All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	raw, _ := entries[0].ContextMap()["message"].(string)
	var got map[string]any
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("message %q: %v", raw, err)
	}
	ts, _ := got["timestamp"].(string)
	if _, err := time.ParseInLocation("2006-01-02T15:04:05", ts, time.Local); err != nil {
		t.Fatalf("timestamp %q is not a local date-time: %v", ts, err)
	}
}
