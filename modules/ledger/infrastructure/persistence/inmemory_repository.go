// Package persistence implements the ledger repository.
package persistence

import (
	"context"
	"sync"

	"github.com/rai/bot-order-bridge/modules/ledger/domain"
)

// InMemoryRepository keeps entries in append order.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries []domain.Entry
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Append(ctx context.Context, e domain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *InMemoryRepository) ListByBotOrderID(ctx context.Context, botOrderID string) ([]domain.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Entry
	for _, e := range r.entries {
		if e.BotOrderID == botOrderID {
			out = append(out, e)
		}
	}
	return out, nil
}

var _ domain.Repository = (*InMemoryRepository)(nil)
