package persistence

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"

	platformspanner "github.com/rai/bot-order-bridge/internal/platform/spanner"
	"github.com/rai/bot-order-bridge/modules/catalog/domain"
)

var mappingColumns = []string{"CatalogProductID", "CRMProductID", "Name", "SyncStatus", "LastSyncedAt"}

// SpannerMappingRepository stores mappings in the ProductMappings table,
// keyed by CatalogProductID.
type SpannerMappingRepository struct {
	client *spanner.Client
}

func NewSpannerMappingRepository(client *spanner.Client) *SpannerMappingRepository {
	return &SpannerMappingRepository{client: client}
}

// Save upserts a mapping, joining the context's transaction when there is one.
func (r *SpannerMappingRepository) Save(ctx context.Context, m *domain.ProductMapping) error {
	mutation := spanner.InsertOrUpdate("ProductMappings", mappingColumns, []interface{}{
		m.CatalogProductID,
		m.CRMProductID,
		m.Name,
		string(m.SyncStatus),
		m.LastSyncedAt,
	})

	if txn, ok := platformspanner.ReadWriteTxFromContext(ctx); ok {
		return txn.BufferWrite([]*spanner.Mutation{mutation})
	}
	if _, err := r.client.Apply(ctx, []*spanner.Mutation{mutation}); err != nil {
		return fmt.Errorf("saving product mapping: %w", err)
	}
	return nil
}

func (r *SpannerMappingRepository) FindByCatalogID(ctx context.Context, catalogID int64) (*domain.ProductMapping, error) {
	var reader platformspanner.ReadTransaction
	if tx, ok := platformspanner.ReadTransactionFromContext(ctx); ok {
		reader = tx
	} else {
		single := r.client.Single()
		defer single.Close()
		reader = single
	}

	row, err := reader.ReadRow(ctx, "ProductMappings", spanner.Key{catalogID}, mappingColumns)
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrProductNotMapped
		}
		return nil, fmt.Errorf("reading product mapping: %w", err)
	}

	var (
		id                  int64
		crmID, name, status string
		lastSyncedAt        time.Time
	)
	if err := row.Columns(&id, &crmID, &name, &status, &lastSyncedAt); err != nil {
		return nil, fmt.Errorf("scanning product mapping: %w", err)
	}

	return &domain.ProductMapping{
		CatalogProductID: id,
		CRMProductID:     crmID,
		Name:             name,
		SyncStatus:       domain.SyncStatus(status),
		LastSyncedAt:     lastSyncedAt,
	}, nil
}

var _ domain.MappingRepository = (*SpannerMappingRepository)(nil)
