// Package botplatform writes order state back into the bot platform.
// This is the public API for the botplatform bounded context.
package botplatform

import (
	"log/slog"

	"github.com/rai/bot-order-bridge/modules/botplatform/application"
	"github.com/rai/bot-order-bridge/modules/botplatform/domain"
)

// Module is the public API for the botplatform bounded context.
type Module interface {
	ActiveOrderFlag() *application.ActiveOrderFlag
}

// Config holds the module configuration.
type Config struct {
	Variables           domain.Variables
	ActiveOrderVariable string
	Logger              *slog.Logger
}

type module struct {
	flag *application.ActiveOrderFlag
}

func New(cfg Config) Module {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "botplatform")

	return &module{flag: application.NewActiveOrderFlag(cfg.Variables, cfg.ActiveOrderVariable, logger)}
}

func (m *module) ActiveOrderFlag() *application.ActiveOrderFlag { return m.flag }
