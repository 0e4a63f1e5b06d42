package persistence

import (
	"context"
	"strings"
	"sync"

	"github.com/rai/bot-order-bridge/modules/catalog/domain"
)

// InMemoryMappingRepository implements MappingRepository using in-memory storage.
type InMemoryMappingRepository struct {
	mu       sync.RWMutex
	mappings map[int64]domain.ProductMapping
}

func NewInMemoryMappingRepository() *InMemoryMappingRepository {
	return &InMemoryMappingRepository{mappings: make(map[int64]domain.ProductMapping)}
}

func (r *InMemoryMappingRepository) Save(ctx context.Context, m *domain.ProductMapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappings[m.CatalogProductID] = *m
	return nil
}

func (r *InMemoryMappingRepository) FindByCatalogID(ctx context.Context, catalogID int64) (*domain.ProductMapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.mappings[catalogID]
	if !ok {
		return nil, domain.ErrProductNotMapped
	}
	return &m, nil
}

// InMemoryProductRepository is a fixed catalog for local runs and tests.
type InMemoryProductRepository struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
}

func NewInMemoryProductRepository(products ...domain.Product) *InMemoryProductRepository {
	r := &InMemoryProductRepository{products: make(map[int64]domain.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *InMemoryProductRepository) Put(p domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
}

func (r *InMemoryProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (r *InMemoryProductRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *domain.Product
	for _, p := range r.products {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) && (best == nil || p.ID < best.ID) {
			p := p
			best = &p
		}
	}
	if best == nil {
		return nil, domain.ErrProductNotFound
	}
	return best, nil
}

var (
	_ domain.MappingRepository = (*InMemoryMappingRepository)(nil)
	_ domain.ProductRepository = (*InMemoryProductRepository)(nil)
)
