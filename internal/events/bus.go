package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish delivers ev to every subscriber of its concrete type.
// Usage: bus.Publish(ProfilesReceivedEvent{...})
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case ProfilesPublishedEvent:
		event.Publish(b.dispatcher, e)
	case ProfilesReceivedEvent:
		event.Publish(b.dispatcher, e)
	case ProfileRejectedEvent:
		event.Publish(b.dispatcher, e)
	case CatalogReloadedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe registers handler for the event type named by its parameter and
// returns an unsubscribe function. Unknown handler types get a no-op.
// Usage: unsub := bus.Subscribe(func(e ProfileRejectedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(ProfilesPublishedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ProfilesReceivedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ProfileRejectedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(CatalogReloadedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
