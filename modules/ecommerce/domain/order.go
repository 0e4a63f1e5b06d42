// Package domain describes the mirrored ecommerce order and the store's delivery points.
package domain

import (
	"context"
	"time"

	"github.com/rai/bot-order-bridge/modules/shared/types"
)

// StatusPending is the status a bot order is created with.
const StatusPending = "pending"

// Guest is the buyer as the store sees a customer without an account.
type Guest struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

// Delivery is the resolved delivery classification of an order.
type Delivery struct {
	Type    string
	Station string
	City    string
	Canton  string
	Address string
}

// OrderLine is one priced line of the mirrored order.
type OrderLine struct {
	ProductID int64
	Name      string
	Quantity  int64
	UnitPrice types.Money
	Total     types.Money
}

// Order is the store-side mirror of a bot order.
// ExternalOrderID carries the bot order id; DealID and ContactID are set by the cross-link.
type Order struct {
	ID              string
	Source          string
	ExternalOrderID string
	Guest           Guest
	Delivery        Delivery
	PaymentMethod   string
	CustomerNote    string
	AdminNote       string
	Lines           []OrderLine
	TotalAmount     types.Money
	Status          string
	DealID          string
	ContactID       string
}

// SyncData is the cross-link payload written back to a created order.
type SyncData struct {
	DealID     string
	ContactID  string
	Status     string
	LastSyncAt time.Time
}

// Gateway is the store's order API.
type Gateway interface {
	// CreateOrder returns the stored order; a response without id is ErrOrderCreationFailed.
	CreateOrder(ctx context.Context, order Order) (*Order, error)
	UpdateSync(ctx context.Context, orderID string, data SyncData) error
}
