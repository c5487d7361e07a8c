package outbox

import "context"

// Event is any domain event with a name identifier.
type Event interface {
	EventName() string
}

// Handler processes a published event.
type Handler func(ctx context.Context, e Event) error

// Publisher hands events to the bus. Implementations must not block longer than ctx allows.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber registers handlers for event names.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}

// Sink delivers lifecycle events to the external event channel.
type Sink interface {
	Deliver(ctx context.Context, e LifecycleEvent) error
}
