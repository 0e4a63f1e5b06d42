// Package persistence implements repository interfaces for orders.
package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/rai/bot-order-bridge/modules/orders/domain"
	"github.com/rai/bot-order-bridge/modules/shared/types"
)

// InMemoryRepository implements OrderRepository using in-memory storage.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	seq    map[string]int
	next   int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		orders: make(map[string]*domain.Order),
		seq:    make(map[string]int),
	}
}

func (r *InMemoryRepository) Save(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := order.ID().String()
	if _, ok := r.seq[id]; !ok {
		r.next++
		r.seq[id] = r.next
	}
	r.orders[id] = order
	return nil
}

func (r *InMemoryRepository) FindByID(ctx context.Context, id types.TrackingID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, exists := r.orders[id.String()]
	if !exists {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (r *InMemoryRepository) FindLatestByBotOrderID(ctx context.Context, botOrderID types.BotOrderID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.Order
	for id, o := range r.orders {
		if o.BotOrderID() != botOrderID {
			continue
		}
		if latest == nil || r.seq[id] > r.seq[latest.ID().String()] {
			latest = o
		}
	}
	if latest == nil {
		return nil, domain.ErrOrderNotFound
	}
	return latest, nil
}

func (r *InMemoryRepository) FindByContactID(ctx context.Context, contactID string, offset, limit int) ([]*domain.Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*domain.Order
	for _, o := range r.orders {
		if o.ContactID() == contactID {
			matched = append(matched, o)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return r.seq[matched[i].ID().String()] > r.seq[matched[j].ID().String()]
	})

	total := len(matched)
	if offset >= total {
		return []*domain.Order{}, total, nil
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

var _ domain.OrderRepository = (*InMemoryRepository)(nil)
