package outbox

import (
	"time"

	"github.com/google/uuid"
)

const (
	// LifecycleEventName is the bus name every lifecycle notification is published under.
	LifecycleEventName = "order.lifecycle"

	TypeUpdate = "UPDATE"

	OrderCreated     = "ORDER CREATED"
	PaymentCreated   = "PAYMENT CREATED"
	PaymentCompleted = "PAYMENT COMPLETED"
	OrderCompleted   = "ORDER COMPLETED"
)

// LifecycleEvent is the notification emitted after each state-changing saga step.
type LifecycleEvent struct {
	ObjectID    string    `json:"objectId"`
	Type        string    `json:"type"`
	Principal   string    `json:"principal"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

func (LifecycleEvent) EventName() string { return LifecycleEventName }

// NewLifecycleEvent stamps a fresh correlation token and the current time.
func NewLifecycleEvent(principal, description string) LifecycleEvent {
	return LifecycleEvent{
		ObjectID:    uuid.NewString(),
		Type:        TypeUpdate,
		Principal:   principal,
		Description: description,
		Timestamp:   time.Now(),
	}
}
