package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Local date-times carry no zone; they are read and written in time.Local.
const (
	localLayout       = "2006-01-02T15:04:05"
	localLayoutOutput = "2006-01-02T15:04:05.999999999"
)

// LocalDateTime is an ISO-8601 date-time without offset, e.g. "2024-05-01T10:15:30".
// Fractional seconds are accepted on input and emitted only when non-zero.
type LocalDateTime struct {
	time.Time
}

func NewLocalDateTime(t time.Time) *LocalDateTime {
	if t.IsZero() {
		return nil
	}
	return &LocalDateTime{Time: t}
}

func (t LocalDateTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.In(time.Local).Format(localLayoutOutput) + `"`), nil
}

func (t *LocalDateTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("local date-time: %w", err)
	}
	parsed, err := time.ParseInLocation(localLayout, s, time.Local)
	if err != nil {
		return fmt.Errorf("local date-time: %w", err)
	}
	t.Time = parsed
	return nil
}

// value unwraps an optional date-time into a plain time.
func (t *LocalDateTime) value() time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.Time
}
