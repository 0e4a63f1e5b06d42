package domain

import (
	"context"

	"github.com/rai/bot-order-bridge/modules/shared/types"
)

// OrderRepository persists tracking records. Replays of a bot order id create
// separate records; FindLatestByBotOrderID returns the newest.
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id types.TrackingID) (*Order, error)
	FindLatestByBotOrderID(ctx context.Context, botOrderID types.BotOrderID) (*Order, error)
	FindByContactID(ctx context.Context, contactID string, offset, limit int) ([]*Order, int, error)
}
