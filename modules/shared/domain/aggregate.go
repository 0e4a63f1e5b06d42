// Package domain holds building blocks shared by the bounded contexts' domain layers.
package domain

import "github.com/rai/bot-order-bridge/modules/shared/events"

// AggregateRoot collects events raised while an aggregate changes. The
// application layer pops them after the change is persisted and publishes them.
type AggregateRoot struct {
	domainEvents []events.Event
}

func (a *AggregateRoot) AddDomainEvent(event events.Event) {
	a.domainEvents = append(a.domainEvents, event)
}

// DomainEvents returns pending events without clearing them.
func (a *AggregateRoot) DomainEvents() []events.Event {
	return a.domainEvents
}

// PopDomainEvents hands pending events over exactly once.
func (a *AggregateRoot) PopDomainEvents() []events.Event {
	evts := a.domainEvents
	a.domainEvents = nil
	return evts
}

