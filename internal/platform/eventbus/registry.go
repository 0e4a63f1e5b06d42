// Package eventbus provides event infrastructure for inter-module communication.
// Events are dispatched in-process on the background dispatcher and can be
// forwarded to Kafka for consumers outside the process.
package eventbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/rai/bot-order-bridge/modules/shared/events"
)

var (
	ErrNilHandler       = errors.New("event handler is nil")
	ErrUnnamedEventType = errors.New("event type is empty")
)

// HandlerRegistry is the read side the bus dispatches from.
type HandlerRegistry interface {
	HandlersFor(eventType events.EventType) []events.Handler
}

type subscription struct {
	handler events.Handler
	name    string
}

// EventHandlerRegistry holds subscriptions made by modules at startup.
// Handlers for one event type run in subscription order.
type EventHandlerRegistry struct {
	mu     sync.RWMutex
	subs   map[events.EventType][]subscription
	logger *slog.Logger
}

func NewEventHandlerRegistry(logger *slog.Logger) *EventHandlerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHandlerRegistry{
		subs:   make(map[events.EventType][]subscription),
		logger: logger,
	}
}

// Subscribe implements events.Subscriber.
func (r *EventHandlerRegistry) Subscribe(eventType events.EventType, handler events.Handler) error {
	if eventType == "" {
		return ErrUnnamedEventType
	}
	if handler == nil {
		return fmt.Errorf("subscribing to %s: %w", eventType, ErrNilHandler)
	}

	name := fmt.Sprintf("%T", handler)

	r.mu.Lock()
	r.subs[eventType] = append(r.subs[eventType], subscription{handler: handler, name: name})
	r.mu.Unlock()

	r.logger.Debug("subscribed to event",
		slog.String("event_type", eventType.String()),
		slog.String("handler", name),
	)
	return nil
}

// HandlersFor returns a copy, so publishing never races with late subscriptions.
func (r *EventHandlerRegistry) HandlersFor(eventType events.EventType) []events.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := r.subs[eventType]
	result := make([]events.Handler, len(subs))
	for i, s := range subs {
		result[i] = s.handler
	}
	return result
}

// Subscriptions lists handler type names per event type.
func (r *EventHandlerRegistry) Subscriptions() map[events.EventType][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[events.EventType][]string, len(r.subs))
	for et, subs := range r.subs {
		names := make([]string, len(subs))
		for i, s := range subs {
			names[i] = s.name
		}
		out[et] = names
	}
	return out
}

// LogSubscriptions writes one line per event type. Called once wiring is done.
func (r *EventHandlerRegistry) LogSubscriptions() {
	subs := r.Subscriptions()
	types := make([]string, 0, len(subs))
	for et := range subs {
		types = append(types, et.String())
	}
	sort.Strings(types)
	for _, et := range types {
		r.logger.Info("event subscriptions",
			slog.String("event_type", et),
			slog.Any("handlers", subs[events.EventType(et)]),
		)
	}
}

var (
	_ events.Subscriber = (*EventHandlerRegistry)(nil)
	_ HandlerRegistry   = (*EventHandlerRegistry)(nil)
)
