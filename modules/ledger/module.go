// Package ledger is the append-only record of synchronization attempts.
// This is the public API for the ledger bounded context.
package ledger

import (
	"log/slog"
	"net/http"

	"github.com/rai/bot-order-bridge/modules/ledger/application"
	"github.com/rai/bot-order-bridge/modules/ledger/application/queries"
	"github.com/rai/bot-order-bridge/modules/ledger/domain"
	httphandler "github.com/rai/bot-order-bridge/modules/ledger/infrastructure/http"
)

// Module is the public API for the ledger bounded context.
type Module interface {
	RegisterRoutes(mux *http.ServeMux)
	Recorder() *application.Recorder
}

// Config holds the module configuration.
type Config struct {
	Repository domain.Repository
	Logger     *slog.Logger
}

type module struct {
	recorder    *application.Recorder
	listEntries *queries.ListEntriesHandler
}

func New(cfg Config) Module {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "ledger")

	return &module{
		recorder:    application.NewRecorder(cfg.Repository, logger),
		listEntries: queries.NewListEntriesHandler(cfg.Repository),
	}
}

func (m *module) RegisterRoutes(mux *http.ServeMux) {
	httphandler.RegisterRoutes(mux, m.listEntries)
}

func (m *module) Recorder() *application.Recorder { return m.recorder }
