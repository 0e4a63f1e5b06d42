// Package domain defines the sync ledger: an append-only record of every
// synchronization attempt made for a bot order.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidEntry = errors.New("invalid ledger entry")

// Operation names a synchronization step.
type Operation string

const (
	OpEnrichItems    Operation = "catalog.enrich_items"
	OpResolveContact Operation = "crm.resolve_contact"
	OpCreateDeal     Operation = "crm.create_deal"
	OpAttachProduct  Operation = "crm.attach_product"
	OpCreateOrder    Operation = "ecommerce.create_order"
	OpCrossLink      Operation = "ecommerce.cross_link"
	OpSetBotVariable Operation = "bot.set_variable"
	OpSagaCompleted  Operation = "saga.completed"
)

// Outcome is the result of one attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Entry is one ledger row. Entries are never updated or deleted.
type Entry struct {
	ID         string
	BotOrderID string
	Operation  Operation
	// EntityID is the CRM or store id the operation touched, when there is one.
	EntityID  *string
	Outcome   Outcome
	Message   string
	CreatedAt time.Time
}

func NewEntry(botOrderID string, op Operation, entityID *string, outcome Outcome, message string, now time.Time) (Entry, error) {
	if op == "" || (outcome != OutcomeSuccess && outcome != OutcomeFailure) {
		return Entry{}, ErrInvalidEntry
	}
	return Entry{
		ID:         uuid.NewString(),
		BotOrderID: botOrderID,
		Operation:  op,
		EntityID:   entityID,
		Outcome:    outcome,
		Message:    message,
		CreatedAt:  now.UTC(),
	}, nil
}

// Repository appends and lists entries.
type Repository interface {
	Append(ctx context.Context, e Entry) error
	// ListByBotOrderID returns entries oldest first.
	ListByBotOrderID(ctx context.Context, botOrderID string) ([]Entry, error)
}
