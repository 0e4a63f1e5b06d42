// Package catalog prices order items against the ecommerce catalog and maps them
// to CRM products. This is the public API for the catalog bounded context.
package catalog

import (
	"log/slog"
	"net/http"

	"github.com/rai/bot-order-bridge/modules/catalog/application"
	"github.com/rai/bot-order-bridge/modules/catalog/application/commands"
	"github.com/rai/bot-order-bridge/modules/catalog/application/queries"
	"github.com/rai/bot-order-bridge/modules/catalog/domain"
	httphandler "github.com/rai/bot-order-bridge/modules/catalog/infrastructure/http"
	"github.com/rai/bot-order-bridge/modules/shared/transaction"
)

// Module is the public API for the catalog bounded context.
type Module interface {
	RegisterRoutes(mux *http.ServeMux)
	// Resolver is used by the order saga.
	Resolver() *application.Resolver
}

// Config holds the module configuration.
type Config struct {
	Products domain.ProductRepository
	Mappings domain.MappingRepository
	// TxScope wraps mapping upserts; nil runs them without a transaction.
	TxScope  transaction.Scope
	Currency string
	Logger   *slog.Logger
}

type module struct {
	resolver      *application.Resolver
	upsertMapping *commands.UpsertMappingHandler
	getMapping    *queries.GetMappingHandler
}

func New(cfg Config) Module {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "catalog")

	return &module{
		resolver:      application.NewResolver(cfg.Products, cfg.Mappings, cfg.Currency, logger),
		upsertMapping: commands.NewUpsertMappingHandler(cfg.Mappings, cfg.TxScope),
		getMapping:    queries.NewGetMappingHandler(cfg.Mappings),
	}
}

func (m *module) RegisterRoutes(mux *http.ServeMux) {
	httphandler.RegisterRoutes(mux, m.upsertMapping, m.getMapping)
}

func (m *module) Resolver() *application.Resolver { return m.resolver }
