// Package eventhandlers reacts to synced bot orders.
package eventhandlers

import (
	"context"
	"fmt"
	"log/slog"

	ledgerapp "github.com/rai/bot-order-bridge/modules/ledger/application"
	ledgerdomain "github.com/rai/bot-order-bridge/modules/ledger/domain"
	"github.com/rai/bot-order-bridge/modules/shared/events"
	"github.com/rai/bot-order-bridge/modules/shared/events/contracts"
)

// FlagSetter marks a bot contact as having an active order.
type FlagSetter interface {
	Set(ctx context.Context, platform, contactID string) error
}

// OrderSyncedHandler sets the bot's active-order flag once a deal exists.
//
// It runs on the background dispatcher, detached from the request. A failure is
// ledgered and returned so the dispatcher logs and counts it; nothing is retried.
type OrderSyncedHandler struct {
	flag   FlagSetter
	ledger *ledgerapp.Recorder
	logger *slog.Logger
}

func NewOrderSyncedHandler(flag FlagSetter, ledger *ledgerapp.Recorder, logger *slog.Logger) *OrderSyncedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderSyncedHandler{flag: flag, ledger: ledger, logger: logger}
}

func (h *OrderSyncedHandler) Handle(ctx context.Context, event events.Event) error {
	synced, ok := event.(contracts.OrderSyncedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, contracts.OrderSyncedEventType)
	}

	log := h.ledger.For(synced.BotOrderID)
	contactID := synced.ExternalContactID

	if err := h.flag.Set(ctx, synced.Platform, contactID); err != nil {
		log.Failure(ctx, ledgerdomain.OpSetBotVariable, contactID, err)
		return err
	}

	log.Success(ctx, ledgerdomain.OpSetBotVariable, contactID, "active order flag set")
	h.logger.Info("bot notified of synced order",
		slog.String("bot_order_id", synced.BotOrderID),
		slog.String("platform", synced.Platform),
		slog.String("deal_id", synced.DealID),
	)
	return nil
}
