// Package queries contains read use cases for the catalog module.
package queries

import (
	"context"
	"time"

	"github.com/rai/bot-order-bridge/modules/catalog/domain"
)

// MappingDTO is the read model of a product mapping.
type MappingDTO struct {
	CatalogProductID int64     `json:"catalogProductId"`
	CRMProductID     string    `json:"crmProductId"`
	Name             string    `json:"name"`
	SyncStatus       string    `json:"syncStatus"`
	LastSyncedAt     time.Time `json:"lastSyncedAt"`
}

type GetMappingQuery struct {
	CatalogProductID int64
}

type GetMappingHandler struct {
	repo domain.MappingRepository
}

func NewGetMappingHandler(repo domain.MappingRepository) *GetMappingHandler {
	return &GetMappingHandler{repo: repo}
}

func (h *GetMappingHandler) Handle(ctx context.Context, q GetMappingQuery) (*MappingDTO, error) {
	m, err := h.repo.FindByCatalogID(ctx, q.CatalogProductID)
	if err != nil {
		return nil, err
	}
	return ToMappingDTO(m), nil
}

func ToMappingDTO(m *domain.ProductMapping) *MappingDTO {
	return &MappingDTO{
		CatalogProductID: m.CatalogProductID,
		CRMProductID:     m.CRMProductID,
		Name:             m.Name,
		SyncStatus:       string(m.SyncStatus),
		LastSyncedAt:     m.LastSyncedAt,
	}
}
