package ports

import (
	"github.com/tejashwikalptaru/tunebox/internal/domain"
)

// EventBus carries media notifications from the player into the playback
// controller and state changes from the services out to the UI.
//
// Implementations must be safe for concurrent use. Publishers never know who
// is listening:
//
//	bus.Publish(domain.NewTrackChangedEvent(track, index))
//
//	id := bus.Subscribe(domain.EventTrackChanged, func(e domain.Event) {
//	    changed := e.(domain.TrackChangedEvent)
//	    view.UpdateTrackInfo(changed.Track)
//	})
//	defer bus.Unsubscribe(id)
type EventBus interface {
	// Publish hands event to every handler subscribed to its type.
	// Handlers should return quickly; slow work belongs on another goroutine.
	Publish(event domain.Event)

	// Subscribe registers handler for one event type and returns an ID for
	// Unsubscribe. Subscribing the same handler twice delivers twice.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a subscription. Unknown IDs are ignored.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers handler for every event type.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// HasSubscribers reports whether anyone would receive an event of eventType.
	HasSubscribers(eventType domain.EventType) bool

	// Close drops all subscriptions. Publishing afterwards is a no-op.
	Close() error
}

// EventFilter decides whether a subscriber sees an event.
type EventFilter func(event domain.Event) bool

// FilteringEventBus adds filtered subscriptions. The playback controller uses
// it to ignore media notifications for anything but the current locator:
//
//	bus.SubscribeFiltered(domain.EventMediaTimeUpdate, func(e domain.Event) bool {
//	    return e.(domain.MediaTimeUpdateEvent).Locator == current
//	}, onTimeUpdate)
type FilteringEventBus interface {
	EventBus

	SubscribeFiltered(eventType domain.EventType, filter EventFilter, handler domain.EventHandler) domain.SubscriptionID
}
