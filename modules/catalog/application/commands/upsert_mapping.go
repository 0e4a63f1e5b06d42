// Package commands contains write use cases for the catalog module.
package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rai/bot-order-bridge/modules/catalog/domain"
	"github.com/rai/bot-order-bridge/modules/shared/transaction"
)

// UpsertMappingCommand creates or replaces the CRM mapping of a catalog product.
type UpsertMappingCommand struct {
	CatalogProductID int64
	CRMProductID     string
	Name             string
	SyncStatus       string
}

type UpsertMappingHandler struct {
	repo    domain.MappingRepository
	txScope transaction.Scope
	now     func() time.Time
}

// NewUpsertMappingHandler creates the handler. A nil txScope runs without a transaction.
func NewUpsertMappingHandler(repo domain.MappingRepository, txScope transaction.Scope) *UpsertMappingHandler {
	return &UpsertMappingHandler{repo: repo, txScope: transaction.OrPassthrough(txScope), now: time.Now}
}

// Handle validates the mapping and saves it. An empty Name keeps the stored name.
func (h *UpsertMappingHandler) Handle(ctx context.Context, cmd UpsertMappingCommand) (*domain.ProductMapping, error) {
	m, err := domain.NewProductMapping(cmd.CatalogProductID, cmd.CRMProductID, cmd.Name, domain.SyncStatus(cmd.SyncStatus), h.now())
	if err != nil {
		return nil, err
	}

	return transaction.ExecuteWithResult(ctx, h.txScope, func(ctx context.Context) (*domain.ProductMapping, error) {
		return h.upsert(ctx, m)
	})
}

func (h *UpsertMappingHandler) upsert(ctx context.Context, m *domain.ProductMapping) (*domain.ProductMapping, error) {
	existing, err := h.repo.FindByCatalogID(ctx, m.CatalogProductID)
	switch {
	case errors.Is(err, domain.ErrProductNotMapped):
	case err != nil:
		return nil, fmt.Errorf("finding mapping: %w", err)
	case m.Name == "":
		m.Name = existing.Name
	}

	if err := h.repo.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("saving mapping: %w", err)
	}
	return m, nil
}
