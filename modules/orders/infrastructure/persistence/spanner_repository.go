package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	platformspanner "github.com/rai/bot-order-bridge/internal/platform/spanner"
	"github.com/rai/bot-order-bridge/modules/orders/domain"
	"github.com/rai/bot-order-bridge/modules/shared/types"
)

var orderColumns = []string{
	"TrackingID", "BotOrderID", "Platform", "ExternalContactID", "Stage", "Status", "Gap",
	"ContactID", "DealID", "EcommerceOrderID", "TotalAmount", "TotalCurrency", "CreatedAt", "UpdatedAt",
}

const selectOrders = `SELECT TrackingID, BotOrderID, Platform, ExternalContactID, Stage, Status, Gap,
       ContactID, DealID, EcommerceOrderID, TotalAmount, TotalCurrency, CreatedAt, UpdatedAt
FROM BotOrders`

// SpannerRepository stores tracking records in the BotOrders table.
type SpannerRepository struct {
	client *spanner.Client
}

func NewSpannerRepository(client *spanner.Client) *SpannerRepository {
	return &SpannerRepository{client: client}
}

// Save persists an order.
// It uses an existing transaction if available, otherwise applies a single mutation.
func (r *SpannerRepository) Save(ctx context.Context, order *domain.Order) error {
	mutation := spanner.InsertOrUpdate("BotOrders", orderColumns, []interface{}{
		order.ID().String(),
		order.BotOrderID().String(),
		order.Platform(),
		order.ExternalContactID(),
		order.Stage().String(),
		order.Status().String(),
		string(order.Gap()),
		order.ContactID(),
		order.DealID(),
		order.EcommerceOrderID(),
		order.Total().Amount(),
		order.Total().Currency(),
		order.CreatedAt(),
		order.UpdatedAt(),
	})

	if txn, ok := platformspanner.ReadWriteTxFromContext(ctx); ok {
		return txn.BufferWrite([]*spanner.Mutation{mutation})
	}
	if _, err := r.client.Apply(ctx, []*spanner.Mutation{mutation}); err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

func (r *SpannerRepository) FindByID(ctx context.Context, id types.TrackingID) (*domain.Order, error) {
	reader, done := r.reader(ctx)
	defer done()

	row, err := reader.ReadRow(ctx, "BotOrders", spanner.Key{id.String()}, orderColumns)
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to read order: %w", err)
	}
	return scanOrder(row)
}

func (r *SpannerRepository) FindLatestByBotOrderID(ctx context.Context, botOrderID types.BotOrderID) (*domain.Order, error) {
	reader, done := r.reader(ctx)
	defer done()

	iter := reader.Query(ctx, spanner.Statement{
		SQL: selectOrders + `@{FORCE_INDEX=BotOrdersByBotOrderID}
		      WHERE BotOrderID = @botOrderID
		      ORDER BY CreatedAt DESC
		      LIMIT 1`,
		Params: map[string]interface{}{"botOrderID": botOrderID.String()},
	})
	defer iter.Stop()

	row, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	return scanOrder(row)
}

func (r *SpannerRepository) FindByContactID(ctx context.Context, contactID string, offset, limit int) ([]*domain.Order, int, error) {
	reader, ok := platformspanner.ReadTransactionFromContext(ctx)
	if !ok {
		// COUNT + SELECT need one snapshot.
		roTx := r.client.ReadOnlyTransaction()
		defer roTx.Close()
		reader = roTx
	}

	countIter := reader.Query(ctx, spanner.Statement{
		SQL:    `SELECT COUNT(*) FROM BotOrders WHERE ContactID = @contactID`,
		Params: map[string]interface{}{"contactID": contactID},
	})
	defer countIter.Stop()

	var total int64
	countRow, err := countIter.Next()
	if err != nil && !errors.Is(err, iterator.Done) {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}
	if countRow != nil {
		if err := countRow.Columns(&total); err != nil {
			return nil, 0, fmt.Errorf("failed to scan count: %w", err)
		}
	}

	iter := reader.Query(ctx, spanner.Statement{
		SQL: selectOrders + `@{FORCE_INDEX=BotOrdersByContactID}
		      WHERE ContactID = @contactID
		      ORDER BY CreatedAt DESC
		      LIMIT @limit OFFSET @offset`,
		Params: map[string]interface{}{
			"contactID": contactID,
			"limit":     int64(limit),
			"offset":    int64(offset),
		},
	})
	defer iter.Stop()

	var orders []*domain.Order
	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to query orders: %w", err)
		}
		o, err := scanOrder(row)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, int(total), nil
}

func (r *SpannerRepository) reader(ctx context.Context) (platformspanner.ReadTransaction, func()) {
	if tx, ok := platformspanner.ReadTransactionFromContext(ctx); ok {
		return tx, func() {}
	}
	single := r.client.Single()
	return single, single.Close
}

func scanOrder(row *spanner.Row) (*domain.Order, error) {
	var (
		trackingID, botOrderID, platform, externalContactID string
		stage, status, gap                                  string
		contactID, dealID, ecommerceOrderID, currency       string
		totalAmount                                         int64
		createdAt, updatedAt                                time.Time
	)
	if err := row.Columns(&trackingID, &botOrderID, &platform, &externalContactID, &stage, &status, &gap,
		&contactID, &dealID, &ecommerceOrderID, &totalAmount, &currency, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	id, err := types.ParseTrackingID(trackingID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tracking id: %w", err)
	}
	botID, err := types.ParseBotOrderID(botOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bot order id: %w", err)
	}
	total, err := types.NewMoney(totalAmount, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to parse total: %w", err)
	}

	return domain.Reconstitute(
		id,
		botID,
		platform,
		externalContactID,
		domain.Stage(stage),
		domain.Status(status),
		domain.Gap(gap),
		contactID,
		dealID,
		ecommerceOrderID,
		total,
		createdAt,
		updatedAt,
	), nil
}

var _ domain.OrderRepository = (*SpannerRepository)(nil)
