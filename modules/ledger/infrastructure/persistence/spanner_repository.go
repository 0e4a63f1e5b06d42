package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"

	platformspanner "github.com/rai/bot-order-bridge/internal/platform/spanner"
	"github.com/rai/bot-order-bridge/modules/ledger/domain"
)

var entryColumns = []string{"EntryID", "BotOrderID", "Operation", "EntityID", "Outcome", "Message", "CreatedAt"}

// SpannerRepository stores entries in the SyncLedger table. Rows are only ever inserted.
type SpannerRepository struct {
	client *spanner.Client
}

func NewSpannerRepository(client *spanner.Client) *SpannerRepository {
	return &SpannerRepository{client: client}
}

func (r *SpannerRepository) Append(ctx context.Context, e domain.Entry) error {
	entityID := spanner.NullString{}
	if e.EntityID != nil {
		entityID = spanner.NullString{StringVal: *e.EntityID, Valid: true}
	}
	mutation := spanner.Insert("SyncLedger", entryColumns, []interface{}{
		e.ID,
		e.BotOrderID,
		string(e.Operation),
		entityID,
		string(e.Outcome),
		e.Message,
		e.CreatedAt,
	})

	if txn, ok := platformspanner.ReadWriteTxFromContext(ctx); ok {
		return txn.BufferWrite([]*spanner.Mutation{mutation})
	}
	if _, err := r.client.Apply(ctx, []*spanner.Mutation{mutation}); err != nil {
		return fmt.Errorf("appending ledger entry: %w", err)
	}
	return nil
}

func (r *SpannerRepository) ListByBotOrderID(ctx context.Context, botOrderID string) ([]domain.Entry, error) {
	var reader platformspanner.ReadTransaction
	if tx, ok := platformspanner.ReadTransactionFromContext(ctx); ok {
		reader = tx
	} else {
		single := r.client.Single()
		defer single.Close()
		reader = single
	}

	stmt := spanner.Statement{
		SQL: `SELECT EntryID, BotOrderID, Operation, EntityID, Outcome, Message, CreatedAt
		      FROM SyncLedger@{FORCE_INDEX=SyncLedgerByBotOrderID}
		      WHERE BotOrderID = @botOrderID
		      ORDER BY CreatedAt ASC`,
		Params: map[string]interface{}{"botOrderID": botOrderID},
	}

	iter := reader.Query(ctx, stmt)
	defer iter.Stop()

	var entries []domain.Entry
	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("querying ledger: %w", err)
		}

		var (
			id, orderID, op, outcome, message string
			entityID                          spanner.NullString
			createdAt                         time.Time
		)
		if err := row.Columns(&id, &orderID, &op, &entityID, &outcome, &message, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}

		e := domain.Entry{
			ID:         id,
			BotOrderID: orderID,
			Operation:  domain.Operation(op),
			Outcome:    domain.Outcome(outcome),
			Message:    message,
			CreatedAt:  createdAt,
		}
		if entityID.Valid {
			v := entityID.StringVal
			e.EntityID = &v
		}
		entries = append(entries, e)
	}
	return entries, nil
}

var _ domain.Repository = (*SpannerRepository)(nil)
