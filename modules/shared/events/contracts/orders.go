// Package contracts defines public event contracts for inter-module communication.
// Modules should import event types from here, NOT from other module's domain packages.
package contracts

import "github.com/rai/bot-order-bridge/modules/shared/events"

const (
	OrderSyncedEventType events.EventType = "orders.OrderSynced"
)

// OrderSyncedEvent is published once a bot order reached CrossLinked (or a partial
// outcome). Side-effect handlers subscribe to it; they run detached from the request.
type OrderSyncedEvent struct {
	events.BaseEvent
	BotOrderID        string `json:"bot_order_id"`
	Platform          string `json:"platform"`
	ExternalContactID string `json:"external_contact_id"`
	ContactID         string `json:"contact_id"`
	DealID            string `json:"deal_id"`
	EcommerceOrderID  string `json:"ecommerce_order_id,omitempty"`
	Status            string `json:"status"`
	Gap               string `json:"gap,omitempty"`
	TotalAmount       int64  `json:"total_amount"`
	Currency          string `json:"currency"`
}
