package domain

import "context"

// ProductRepository reads the ecommerce store's catalog.
type ProductRepository interface {
	// FindByID returns ErrProductNotFound when absent.
	FindByID(ctx context.Context, id int64) (*Product, error)
	// FindByName matches case-insensitively; used only by the cart-summary fallback.
	FindByName(ctx context.Context, name string) (*Product, error)
}

// MappingRepository persists catalog to CRM product mappings.
type MappingRepository interface {
	// FindByCatalogID returns ErrProductNotMapped when absent.
	FindByCatalogID(ctx context.Context, catalogID int64) (*ProductMapping, error)
	Save(ctx context.Context, m *ProductMapping) error
}
