package domain

import (
	"github.com/rai/bot-order-bridge/modules/shared/events"
	"github.com/rai/bot-order-bridge/modules/shared/events/contracts"
)

const OrderSyncedEventType = contracts.OrderSyncedEventType

func NewOrderSyncedEvent(o *Order) contracts.OrderSyncedEvent {
	return contracts.OrderSyncedEvent{
		BaseEvent:         events.NewBaseEventAt(OrderSyncedEventType, o.ID().String(), o.UpdatedAt()),
		BotOrderID:        o.BotOrderID().String(),
		Platform:          o.Platform(),
		ExternalContactID: o.ExternalContactID(),
		ContactID:         o.ContactID(),
		DealID:            o.DealID(),
		EcommerceOrderID:  o.EcommerceOrderID(),
		Status:            o.Status().String(),
		Gap:               string(o.Gap()),
		TotalAmount:       o.Total().Amount(),
		Currency:          o.Total().Currency(),
	}
}
