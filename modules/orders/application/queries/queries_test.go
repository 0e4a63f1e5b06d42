package queries_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rai/bot-order-bridge/modules/orders/application/queries"
	"github.com/rai/bot-order-bridge/modules/orders/domain"
	"github.com/rai/bot-order-bridge/modules/orders/infrastructure/persistence"
	"github.com/rai/bot-order-bridge/modules/shared/types"
)

func seed(t *testing.T, repo *persistence.InMemoryRepository, botOrderID, contactID, dealID string) *domain.Order {
	t.Helper()
	id, err := types.ParseBotOrderID(botOrderID)
	require.NoError(t, err)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	o := domain.NewOrder(id, "telegram", "tg-1", types.MustNewMoney(2500, "CHF"), now)
	o.ContactResolved(contactID, now)
	o.DealCreated(dealID, now)
	require.NoError(t, repo.Save(context.Background(), o))
	return o
}

func TestGetOrderHandler_ReturnsLatestRun(t *testing.T) {
	// Arrange
	repo := persistence.NewInMemoryRepository()
	seed(t, repo, "bo-1", "c-1", "d-1")
	seed(t, repo, "bo-1", "c-1", "d-2")
	h := queries.NewGetOrderHandler(repo)

	// Act
	dto, err := h.Handle(context.Background(), queries.GetOrderQuery{BotOrderID: "bo-1"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "d-2", dto.DealID)
	assert.Equal(t, "25.00", dto.Total.Amount)
	assert.Equal(t, "deal_created", dto.Stage)
}

func TestGetOrderHandler_Errors(t *testing.T) {
	h := queries.NewGetOrderHandler(persistence.NewInMemoryRepository())

	_, err := h.Handle(context.Background(), queries.GetOrderQuery{BotOrderID: " "})
	assert.ErrorIs(t, err, types.ErrInvalidID)

	_, err = h.Handle(context.Background(), queries.GetOrderQuery{BotOrderID: "missing"})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestListContactOrdersHandler_Paginates(t *testing.T) {
	// Arrange
	repo := persistence.NewInMemoryRepository()
	seed(t, repo, "bo-1", "c-1", "d-1")
	seed(t, repo, "bo-2", "c-1", "d-2")
	seed(t, repo, "bo-3", "c-1", "d-3")
	seed(t, repo, "bo-4", "c-2", "d-4")
	h := queries.NewListContactOrdersHandler(repo, nil)

	// Act
	page, err := h.Handle(context.Background(), queries.ListContactOrdersQuery{ContactID: "c-1", Limit: 2})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
	require.Len(t, page.Orders, 2)
	assert.Equal(t, "bo-3", page.Orders[0].BotOrderID)
	assert.Equal(t, "bo-2", page.Orders[1].BotOrderID)
}

type countingScope struct{ calls int }

func (s *countingScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	s.calls++
	return fn(ctx)
}

func TestListContactOrdersHandler_UsesReadScope(t *testing.T) {
	repo := persistence.NewInMemoryRepository()
	seed(t, repo, "bo-1", "c-1", "d-1")
	scope := &countingScope{}
	h := queries.NewListContactOrdersHandler(repo, scope)

	page, err := h.Handle(context.Background(), queries.ListContactOrdersQuery{ContactID: "c-1", Limit: 500})

	require.NoError(t, err)
	assert.Equal(t, 1, scope.calls)
	assert.Equal(t, 100, page.Limit)
	assert.Len(t, page.Orders, 1)

	_, err = h.Handle(context.Background(), queries.ListContactOrdersQuery{ContactID: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}
