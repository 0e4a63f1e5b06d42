// Package orders runs the bot order saga and keeps its tracking records.
// This is the public API for the orders bounded context.
package orders

import (
	"log/slog"
	"net/http"

	catalogapp "github.com/rai/bot-order-bridge/modules/catalog/application"
	crmapp "github.com/rai/bot-order-bridge/modules/crm/application"
	crmdomain "github.com/rai/bot-order-bridge/modules/crm/domain"
	ecomapp "github.com/rai/bot-order-bridge/modules/ecommerce/application"
	ledgerapp "github.com/rai/bot-order-bridge/modules/ledger/application"
	"github.com/rai/bot-order-bridge/modules/orders/application/commands"
	"github.com/rai/bot-order-bridge/modules/orders/application/queries"
	"github.com/rai/bot-order-bridge/modules/orders/domain"
	httphandler "github.com/rai/bot-order-bridge/modules/orders/infrastructure/http"
	"github.com/rai/bot-order-bridge/modules/shared/events"
	"github.com/rai/bot-order-bridge/modules/shared/transaction"
)

// Module is the public API for the orders bounded context.
// External communication: HTTP API (RegisterRoutes)
// Cross-module communication: OrderSynced events (published)
type Module interface {
	// RegisterRoutes registers the module's HTTP routes to the given mux.
	RegisterRoutes(mux *http.ServeMux)
}

// Config holds the module configuration. The saga collaborators come from the
// catalog, crm, ecommerce and ledger modules.
type Config struct {
	Repository        domain.OrderRepository
	ReadScope         transaction.Scope
	Catalog           *catalogapp.Resolver
	Contacts          *crmapp.ContactResolver
	Deals             *crmapp.DealBuilder
	CRM               crmdomain.Capabilities
	Store             *ecomapp.OrderService
	Ledger            *ledgerapp.Recorder
	EventPublisher    events.Publisher
	Observer          commands.Observer
	AttachConcurrency int
	Logger            *slog.Logger
}

type module struct {
	createOrderHandler *commands.CreateOrderHandler
	getOrderHandler    *queries.GetOrderHandler
	listContactOrders  *queries.ListContactOrdersHandler
}

// New creates a new orders module.
func New(cfg Config) Module {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "orders")

	createOrderHandler := commands.NewCreateOrderHandler(commands.CreateOrderConfig{
		Catalog:           cfg.Catalog,
		Contacts:          cfg.Contacts,
		Deals:             cfg.Deals,
		CRM:               cfg.CRM,
		Store:             cfg.Store,
		Ledger:            cfg.Ledger,
		Repo:              cfg.Repository,
		Publisher:         cfg.EventPublisher,
		Observer:          cfg.Observer,
		AttachConcurrency: cfg.AttachConcurrency,
		Logger:            logger,
	})

	return &module{
		createOrderHandler: createOrderHandler,
		getOrderHandler:    queries.NewGetOrderHandler(cfg.Repository),
		listContactOrders:  queries.NewListContactOrdersHandler(cfg.Repository, cfg.ReadScope),
	}
}

func (m *module) RegisterRoutes(mux *http.ServeMux) {
	httphandler.RegisterRoutes(mux, m.createOrderHandler, m.getOrderHandler, m.listContactOrders)
}
