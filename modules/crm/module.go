// Package crm resolves customers to CRM contacts and creates their deals.
// This is the public API for the crm bounded context.
package crm

import (
	"log/slog"

	"github.com/rai/bot-order-bridge/modules/crm/application"
	"github.com/rai/bot-order-bridge/modules/crm/domain"
)

// Module is the public API for the crm bounded context.
type Module interface {
	Contacts() *application.ContactResolver
	Deals() *application.DealBuilder
	// Capabilities exposes the raw CRM operations (deal creation, product attachment).
	Capabilities() domain.Capabilities
}

// Config holds the module configuration.
type Config struct {
	// Capabilities is usually *client.Client.
	Capabilities domain.Capabilities
	Deal         application.DealBuilderConfig
	// Strategies overrides the default contact lookup order.
	Strategies []application.Strategy
	Logger     *slog.Logger
}

type module struct {
	crm      domain.Capabilities
	contacts *application.ContactResolver
	deals    *application.DealBuilder
}

func New(cfg Config) Module {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "crm")

	contacts := application.NewContactResolver(cfg.Capabilities, logger, cfg.Strategies...)
	logger.Info("contact lookup chain", slog.Any("strategies", contacts.Strategies()))

	return &module{
		crm:      cfg.Capabilities,
		contacts: contacts,
		deals:    application.NewDealBuilder(cfg.Deal),
	}
}

func (m *module) Contacts() *application.ContactResolver { return m.contacts }
func (m *module) Deals() *application.DealBuilder        { return m.deals }
func (m *module) Capabilities() domain.Capabilities      { return m.crm }
