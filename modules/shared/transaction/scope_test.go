package transaction_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rai/bot-order-bridge/modules/shared/transaction"
)

type ctxKey struct{}

func TestExecuteWithResult(t *testing.T) {
	// Arrange
	var seen any
	scope := transaction.ScopeFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
		return fn(context.WithValue(ctx, ctxKey{}, "tx"))
	})

	// Act
	got, err := transaction.ExecuteWithResult(context.Background(), scope, func(ctx context.Context) (int, error) {
		seen = ctx.Value(ctxKey{})
		return 42, nil
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, "tx", seen)
}

func TestExecuteWithResult_PropagatesError(t *testing.T) {
	boom := errors.New("boom")

	_, err := transaction.ExecuteWithResult(context.Background(), transaction.Passthrough, func(ctx context.Context) (string, error) {
		return "", boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestOrPassthrough(t *testing.T) {
	ran := false
	err := transaction.OrPassthrough(nil).Execute(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	calls := 0
	custom := transaction.ScopeFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
		calls++
		return fn(ctx)
	})
	require.NoError(t, transaction.OrPassthrough(custom).Execute(context.Background(), func(ctx context.Context) error { return nil }))
	assert.Equal(t, 1, calls)
}
