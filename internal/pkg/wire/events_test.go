package wire

import (
	"encoding/json"
	"testing"
	"time"

	domoutbox "github.com/Zhima-Mochi/ecom-compositor/internal/domain/outbox"
)

func TestLifecycleEventUsesLocalDateTime(t *testing.T) {
	e := domoutbox.LifecycleEvent{
		ObjectID:    "0b6f6c1e-4f1c-4a52-9a8e-6a1d3c2f9e10",
		Type:        domoutbox.TypeUpdate,
		Principal:   "42",
		Description: domoutbox.OrderCompleted,
		Timestamp:   time.Date(2024, 5, 1, 10, 15, 30, 250000000, time.Local),
	}
	b, err := json.Marshal(FromLifecycleEvent(e))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"objectId":"0b6f6c1e-4f1c-4a52-9a8e-6a1d3c2f9e10","type":"UPDATE","principal":"42",` +
		`"description":"ORDER COMPLETED","timestamp":"2024-05-01T10:15:30.25"}`
	if string(b) != want {
		t.Fatalf("got  %s\nwant %s", b, want)
	}
}
