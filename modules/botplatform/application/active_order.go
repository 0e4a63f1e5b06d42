// Package application holds the bot-platform side effects of a synced order.
package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rai/bot-order-bridge/modules/botplatform/domain"
)

// ActiveOrderFlag marks a bot contact as having an order in progress.
type ActiveOrderFlag struct {
	vars     domain.Variables
	variable string
	logger   *slog.Logger
}

func NewActiveOrderFlag(vars domain.Variables, variable string, logger *slog.Logger) *ActiveOrderFlag {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActiveOrderFlag{vars: vars, variable: variable, logger: logger}
}

// Set sets the flag for contactID on platform.
func (f *ActiveOrderFlag) Set(ctx context.Context, platform, contactID string) error {
	if contactID == "" {
		return domain.ErrMissingContact
	}
	if err := f.vars.SetContactVariable(ctx, platform, contactID, f.variable, "true"); err != nil {
		return fmt.Errorf("setting %s for %s contact %s: %w", f.variable, platform, contactID, err)
	}
	f.logger.Debug("active order flag set",
		slog.String("platform", platform),
		slog.String("contact_id", contactID),
	)
	return nil
}
