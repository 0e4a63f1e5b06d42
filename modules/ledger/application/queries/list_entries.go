// Package queries contains read use cases for the sync ledger.
package queries

import (
	"context"
	"time"

	"github.com/rai/bot-order-bridge/modules/ledger/domain"
	"github.com/rai/bot-order-bridge/modules/shared/types"
)

// EntryDTO is a read model for one ledger entry.
type EntryDTO struct {
	ID        string    `json:"id"`
	Operation string    `json:"operation"`
	EntityID  *string   `json:"entityId"`
	Outcome   string    `json:"outcome"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// SyncLogDTO is the reconciliation view of one bot order.
type SyncLogDTO struct {
	BotOrderID string     `json:"botOrderId"`
	Entries    []EntryDTO `json:"entries"`
	Failures   int        `json:"failures"`
}

type ListEntriesQuery struct {
	BotOrderID string
}

type ListEntriesHandler struct {
	repo domain.Repository
}

func NewListEntriesHandler(repo domain.Repository) *ListEntriesHandler {
	return &ListEntriesHandler{repo: repo}
}

func (h *ListEntriesHandler) Handle(ctx context.Context, query ListEntriesQuery) (*SyncLogDTO, error) {
	id, err := types.ParseBotOrderID(query.BotOrderID)
	if err != nil {
		return nil, err
	}

	entries, err := h.repo.ListByBotOrderID(ctx, id.String())
	if err != nil {
		return nil, err
	}

	out := &SyncLogDTO{BotOrderID: id.String(), Entries: make([]EntryDTO, len(entries))}
	for i, e := range entries {
		out.Entries[i] = EntryDTO{
			ID:        e.ID,
			Operation: string(e.Operation),
			EntityID:  e.EntityID,
			Outcome:   string(e.Outcome),
			Message:   e.Message,
			CreatedAt: e.CreatedAt,
		}
		if e.Outcome == domain.OutcomeFailure {
			out.Failures++
		}
	}
	return out, nil
}
