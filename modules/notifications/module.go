// Package notifications runs the side effects of a synced bot order.
package notifications

import (
	"log/slog"

	ledgerapp "github.com/rai/bot-order-bridge/modules/ledger/application"
	"github.com/rai/bot-order-bridge/modules/notifications/application/eventhandlers"
	"github.com/rai/bot-order-bridge/modules/shared/events"
	"github.com/rai/bot-order-bridge/modules/shared/events/contracts"
)

// Module represents the notification module entry point.
type Module struct{}

type Config struct {
	EventSubscriber events.Subscriber
	ActiveOrderFlag eventhandlers.FlagSetter
	Ledger          *ledgerapp.Recorder
	// Forwarder, when set, also receives every OrderSynced event (Kafka audit stream).
	Forwarder events.Handler
	Logger    *slog.Logger
}

// New initializes the notification module and subscribes to events.
func New(cfg Config) *Module {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "notifications")

	orderSyncedHandler := eventhandlers.NewOrderSyncedHandler(cfg.ActiveOrderFlag, cfg.Ledger, logger)
	if err := cfg.EventSubscriber.Subscribe(contracts.OrderSyncedEventType, orderSyncedHandler); err != nil {
		logger.Error("failed to subscribe to order synced event", slog.Any("error", err))
	}

	if cfg.Forwarder != nil {
		if err := cfg.EventSubscriber.Subscribe(contracts.OrderSyncedEventType, cfg.Forwarder); err != nil {
			logger.Error("failed to subscribe event forwarder", slog.Any("error", err))
		}
	}

	return &Module{}
}
