package wire

import (
	domoutbox "github.com/Zhima-Mochi/ecom-compositor/internal/domain/outbox"
)

// LifecycleEvent is the message published to the event channel. Its timestamp
// is a local date-time like every other timestamp in the contract.
type LifecycleEvent struct {
	ObjectID    string         `json:"objectId"`
	Type        string         `json:"type"`
	Principal   string         `json:"principal"`
	Description string         `json:"description"`
	Timestamp   *LocalDateTime `json:"timestamp"`
}

func FromLifecycleEvent(e domoutbox.LifecycleEvent) LifecycleEvent {
	return LifecycleEvent{
		ObjectID:    e.ObjectID,
		Type:        e.Type,
		Principal:   e.Principal,
		Description: e.Description,
		Timestamp:   NewLocalDateTime(e.Timestamp),
	}
}
