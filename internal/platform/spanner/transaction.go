package spanner

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/spanner"

	"github.com/rai/bot-order-bridge/modules/shared/transaction"
)

// ErrNestedTransaction is returned when a scope is entered while the context
// already carries a transaction. Spanner has no nesting; the inner scope would
// commit independently.
var ErrNestedTransaction = errors.New("nested transaction detected: Cloud Spanner does not support nested transactions")

// ReadWriteTransactionScope runs fn in a read-write transaction. Spanner retries
// fn on Aborted, so fn must not call the CRM or the store.
type ReadWriteTransactionScope struct {
	client *spanner.Client
	opts   spanner.TransactionOptions
}

// NewReadWriteTransactionScope creates the scope. tag shows up in Spanner's
// transaction statistics; empty leaves it unset.
func NewReadWriteTransactionScope(client *spanner.Client, tag string) *ReadWriteTransactionScope {
	return &ReadWriteTransactionScope{
		client: client,
		opts:   spanner.TransactionOptions{TransactionTag: tag},
	}
}

func (s *ReadWriteTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := s.client.ReadWriteTransactionWithOptions(ctx, func(ctx context.Context, tx *spanner.ReadWriteTransaction) error {
		txCtx, err := withReadWriteTx(ctx, tx)
		if err != nil {
			return err
		}
		return fn(txCtx)
	}, s.opts)
	return err
}

// ReadOnlyTransactionScope gives fn one snapshot across several queries, e.g. a
// page of tracking records and their total count.
type ReadOnlyTransactionScope struct {
	client    *spanner.Client
	staleness time.Duration
}

// NewReadOnlyTransactionScope creates the scope. A positive staleness reads at
// that exact age, which lets Spanner serve from any replica; zero reads strong.
func NewReadOnlyTransactionScope(client *spanner.Client, staleness time.Duration) *ReadOnlyTransactionScope {
	return &ReadOnlyTransactionScope{client: client, staleness: staleness}
}

func (s *ReadOnlyTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	tx := s.client.ReadOnlyTransaction()
	if s.staleness > 0 {
		tx = tx.WithTimestampBound(spanner.ExactStaleness(s.staleness))
	}
	defer tx.Close()

	txCtx, err := withReadOnlyTx(ctx, tx)
	if err != nil {
		return err
	}
	return fn(txCtx)
}

var (
	_ transaction.Scope = (*ReadWriteTransactionScope)(nil)
	_ transaction.Scope = (*ReadOnlyTransactionScope)(nil)
)
