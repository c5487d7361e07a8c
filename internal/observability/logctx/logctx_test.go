package logctx

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/ecom-compositor/internal/observability"
)

type recordingLogger struct {
	observability.Logger
	fields []observability.Field
}

func (r *recordingLogger) With(fields ...observability.Field) observability.Logger {
	return &recordingLogger{Logger: observability.NopLogger(), fields: append(append([]observability.Field{}, r.fields...), fields...)}
}

func TestFromOrFallsBack(t *testing.T) {
	fallback := &recordingLogger{Logger: observability.NopLogger()}
	if got := FromOr(context.Background(), fallback); got != fallback {
		t.Fatal("expected fallback logger")
	}
	if got := FromOr(context.Background(), nil); got == nil {
		t.Fatal("expected nop logger for nil fallback")
	}
}

func TestEnrichAppendsFields(t *testing.T) {
	base := &recordingLogger{Logger: observability.NopLogger()}
	ctx := With(context.Background(), base.With(observability.F("request_id", "r-1")))
	ctx = Enrich(ctx, nil, observability.F("order_id", "42"))

	got, ok := From(ctx).(*recordingLogger)
	if !ok {
		t.Fatalf("unexpected logger type %T", From(ctx))
	}
	if len(got.fields) != 2 || got.fields[0].Key != "request_id" || got.fields[1].Key != "order_id" {
		t.Fatalf("fields = %+v", got.fields)
	}
}
