// Package ecommerce mirrors bot orders into the ecommerce store.
// This is the public API for the ecommerce bounded context.
package ecommerce

import (
	"log/slog"

	"github.com/rai/bot-order-bridge/modules/ecommerce/application"
	"github.com/rai/bot-order-bridge/modules/ecommerce/domain"
)

// Module is the public API for the ecommerce bounded context.
type Module interface {
	Orders() *application.OrderService
}

// Config holds the module configuration.
type Config struct {
	Gateway       domain.Gateway
	Source        string
	DefaultPickup domain.Station
	Stations      []domain.Station
	Logger        *slog.Logger
}

type module struct {
	orders *application.OrderService
}

func New(cfg Config) Module {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "ecommerce")

	stations := domain.NewStationTable(cfg.DefaultPickup, cfg.Stations...)
	return &module{orders: application.NewOrderService(cfg.Gateway, stations, cfg.Source, logger)}
}

func (m *module) Orders() *application.OrderService { return m.orders }
