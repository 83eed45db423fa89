// Package eventbus provides implementations of the EventBus interface.
package eventbus

import (
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/tejashwikalptaru/tunebox/internal/domain"
	"github.com/tejashwikalptaru/tunebox/internal/ports"
)

// anyEvent keys wildcard subscriptions.
const anyEvent domain.EventType = ""

// chatty events fire on every player tick and are not traced at debug level.
var chatty = map[domain.EventType]bool{
	domain.EventMediaTimeUpdate: true,
	domain.EventPositionChanged: true,
}

// SyncEventBus delivers events on the publishing goroutine.
//
// Handlers for a type run in subscription order, followed by wildcard
// handlers. Publish takes a snapshot of the subscriber list, so handlers may
// publish, subscribe or unsubscribe without deadlocking; changes apply from
// the next Publish on.
//
// A handler that blocks stalls its publisher. The playback controller relies
// on this: media notifications are fully handled before Play/Load return.
type SyncEventBus struct {
	logger *slog.Logger

	mu     sync.RWMutex
	subs   map[domain.EventType][]subscription
	owners map[domain.SubscriptionID]domain.EventType
	nextID uint64
	closed bool
}

type subscription struct {
	id      domain.SubscriptionID
	handler domain.EventHandler
	filter  ports.EventFilter
}

// NewSyncEventBus creates a new synchronous event bus.
func NewSyncEventBus() *SyncEventBus {
	return &SyncEventBus{
		subs:   make(map[domain.EventType][]subscription),
		owners: make(map[domain.SubscriptionID]domain.EventType),
	}
}

// SetLogger sets the logger used for delivery traces and handler panics.
func (bus *SyncEventBus) SetLogger(logger *slog.Logger) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.logger = logger
}

// Publish delivers event to the handlers subscribed to its type, then to
// wildcard handlers. A panicking handler is logged and skipped.
// Publishing nil or on a closed bus does nothing.
func (bus *SyncEventBus) Publish(event domain.Event) {
	if event == nil {
		return
	}
	eventType := event.Type()

	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		return
	}
	targets := make([]subscription, 0, len(bus.subs[eventType])+len(bus.subs[anyEvent]))
	targets = append(targets, bus.subs[eventType]...)
	targets = append(targets, bus.subs[anyEvent]...)
	logger := bus.logger
	bus.mu.RUnlock()

	if logger != nil && !chatty[eventType] {
		logger.Debug("event published",
			slog.String("event_type", string(eventType)),
			slog.Int("handlers", len(targets)))
	}

	for _, sub := range targets {
		if sub.filter != nil && !bus.accepts(logger, sub, event) {
			continue
		}
		bus.deliver(logger, sub, event)
	}
}

// accepts evaluates a subscription filter. A panicking filter rejects the event.
func (bus *SyncEventBus) accepts(logger *slog.Logger, sub subscription, event domain.Event) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logPanic(logger, "event filter panicked", sub.id, event, r)
			ok = false
		}
	}()
	return sub.filter(event)
}

func (bus *SyncEventBus) deliver(logger *slog.Logger, sub subscription, event domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			logPanic(logger, "event handler panicked", sub.id, event, r)
		}
	}()
	sub.handler(event)
}

func logPanic(logger *slog.Logger, msg string, id domain.SubscriptionID, event domain.Event, r any) {
	if logger == nil {
		return
	}
	err := errors.Newf("%v", r)
	logger.Error(msg,
		slog.String("subscription", string(id)),
		slog.String("event_type", string(event.Type())),
		slog.Any("error", err))
}

// Subscribe registers a handler for events of the given type.
// Each call returns a fresh SubscriptionID, even for the same handler.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	return bus.add(eventType, "sub-", handler, nil)
}

// SubscribeFiltered registers a handler that only sees events accepted by filter.
// The filter runs on the publishing goroutine, outside the bus lock.
func (bus *SyncEventBus) SubscribeFiltered(eventType domain.EventType, filter ports.EventFilter, handler domain.EventHandler) domain.SubscriptionID {
	if filter == nil {
		panic("event filter cannot be nil")
	}
	return bus.add(eventType, "sub-", handler, filter)
}

// SubscribeAll registers a handler that receives every event.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	return bus.add(anyEvent, "sub-all-", handler, nil)
}

func (bus *SyncEventBus) add(eventType domain.EventType, prefix string, handler domain.EventHandler, filter ports.EventFilter) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("cannot subscribe to closed event bus")
	}

	bus.nextID++
	id := domain.SubscriptionID(prefix + strconv.FormatUint(bus.nextID, 10))
	bus.subs[eventType] = append(bus.subs[eventType], subscription{id: id, handler: handler, filter: filter})
	bus.owners[id] = eventType
	return id
}

// Unsubscribe removes a subscription. Unknown IDs are ignored.
// The remaining handlers keep their relative order.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	eventType, ok := bus.owners[id]
	if !ok {
		return
	}
	delete(bus.owners, id)

	// Clone so snapshots taken by in-flight publishes stay intact.
	remaining := slices.DeleteFunc(slices.Clone(bus.subs[eventType]), func(s subscription) bool {
		return s.id == id
	})
	if len(remaining) == 0 {
		delete(bus.subs, eventType)
		return
	}
	bus.subs[eventType] = remaining
}

// HasSubscribers reports whether a Publish of eventType would reach any handler.
func (bus *SyncEventBus) HasSubscribers(eventType domain.EventType) bool {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subs[eventType]) > 0 || len(bus.subs[anyEvent]) > 0
}

// Close drops every subscription. Later publishes are ignored and later
// subscribes panic. Closing twice returns domain.ErrClosed.
func (bus *SyncEventBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return errors.Wrap(domain.ErrClosed, "event bus already closed")
	}
	bus.closed = true
	clear(bus.subs)
	clear(bus.owners)
	return nil
}

// SubscriberCount returns the number of live subscriptions, wildcards included.
func (bus *SyncEventBus) SubscriberCount() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.owners)
}

var _ ports.FilteringEventBus = (*SyncEventBus)(nil)
