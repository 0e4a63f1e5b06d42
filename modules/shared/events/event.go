// Package events defines the in-process event contract. The orders module raises
// events when a saga run finishes; notifications and the Kafka forwarder consume them.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names an event kind, e.g. "orders.OrderSynced".
type EventType string

func (t EventType) String() string { return string(t) }

// CurrentVersion is stamped on every new event. Bump it when a payload changes
// incompatibly; Kafka consumers read it from the event_version header.
const CurrentVersion = 1

type Event interface {
	EventID() string
	EventType() EventType
	OccurredAt() time.Time
	// AggregateID is the tracking id of the run that raised the event.
	AggregateID() string
	SchemaVersion() int
}

// BaseEvent carries the envelope fields. Embed it in concrete events.
type BaseEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// NewBaseEvent stamps the event with the current time.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return NewBaseEventAt(eventType, aggregateID, time.Now())
}

// NewBaseEventAt stamps the event with occurredAt, normally the aggregate's own clock.
func NewBaseEventAt(eventType EventType, aggregateID string, occurredAt time.Time) BaseEvent {
	return BaseEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Timestamp:   occurredAt.UTC(),
		AggregateId: aggregateID,
		Version:     CurrentVersion,
	}
}

func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) EventType() EventType  { return e.Type }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) AggregateID() string   { return e.AggregateId }
func (e BaseEvent) SchemaVersion() int    { return e.Version }

type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// Subscriber is implemented by the event bus registry. Modules subscribe once at startup.
type Subscriber interface {
	Subscribe(eventType EventType, handler Handler) error
}
