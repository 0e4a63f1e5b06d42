// Package domain describes what the bridge writes back to the bot platform.
package domain

import (
	"context"
	"errors"
)

var ErrMissingContact = errors.New("bot contact id is required")

// Variables sets per-contact variables in the bot platform's conversation state.
type Variables interface {
	SetContactVariable(ctx context.Context, platform, contactID, name, value string) error
}
