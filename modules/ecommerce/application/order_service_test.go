package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rai/bot-order-bridge/modules/ecommerce/application"
	"github.com/rai/bot-order-bridge/modules/ecommerce/domain"
	"github.com/rai/bot-order-bridge/modules/shared/types"
)

type mockGateway struct {
	createOrderFn func(ctx context.Context, order domain.Order) (*domain.Order, error)
	updateSyncFn  func(ctx context.Context, orderID string, data domain.SyncData) error
}

func (m *mockGateway) CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	return m.createOrderFn(ctx, order)
}

func (m *mockGateway) UpdateSync(ctx context.Context, orderID string, data domain.SyncData) error {
	return m.updateSyncFn(ctx, orderID, data)
}

func newService(gw domain.Gateway) *application.OrderService {
	stations := domain.NewStationTable(
		domain.Station{Name: "Store pickup", DeliveryType: "pickup", Address: "Main street 1"},
		domain.Station{Name: "Bern", City: "Bern", Canton: "BE", DeliveryType: "station"},
	)
	return application.NewOrderService(gw, stations, "bot", nil)
}

func line(id, qty, unit int64) domain.OrderLine {
	price := types.MustNewMoney(unit, "CHF")
	return domain.OrderLine{ProductID: id, Name: "p", Quantity: qty, UnitPrice: price, Total: types.MustNewMoney(unit*qty, "CHF")}
}

func TestOrderService_Build_TotalIsSumOfLines(t *testing.T) {
	// Arrange
	svc := newService(&mockGateway{})

	// Act
	order, err := svc.Build(application.OrderInput{
		BotOrderID: "bo-1",
		Delivery:   application.DeliveryRequest{Station: "bern"},
		Lines:      []domain.OrderLine{line(1, 2, 1250), line(2, 3, 400)},
		Currency:   "CHF",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(3700), order.TotalAmount.Amount())
	assert.Equal(t, "bot", order.Source)
	assert.Equal(t, "bo-1", order.ExternalOrderID)
	assert.Equal(t, "station", order.Delivery.Type)
	assert.Equal(t, "BE", order.Delivery.Canton)
	assert.Empty(t, order.AdminNote)
}

func TestOrderService_Build_UnknownStationFallsBackToPickup(t *testing.T) {
	// Arrange
	svc := newService(&mockGateway{})

	// Act
	order, err := svc.Build(application.OrderInput{
		Delivery: application.DeliveryRequest{City: "Basel", Station: "Basel SBB"},
		Currency: "CHF",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "pickup", order.Delivery.Type)
	assert.Equal(t, "Store pickup", order.Delivery.Station)
	assert.Equal(t, "Main street 1", order.Delivery.Address)
	assert.Contains(t, order.AdminNote, `"Basel SBB"`)
	assert.Contains(t, order.AdminNote, "Store pickup")
}

func TestOrderService_Create_WrapsGatewayError(t *testing.T) {
	// Arrange
	svc := newService(&mockGateway{
		createOrderFn: func(ctx context.Context, order domain.Order) (*domain.Order, error) {
			return nil, errors.New("503")
		},
	})

	// Act
	_, err := svc.Create(context.Background(), application.OrderInput{Currency: "CHF"})

	// Assert
	assert.ErrorIs(t, err, domain.ErrOrderCreationFailed)
}

func TestOrderService_Link(t *testing.T) {
	// Arrange
	var got domain.SyncData
	svc := newService(&mockGateway{
		updateSyncFn: func(ctx context.Context, orderID string, data domain.SyncData) error {
			assert.Equal(t, "o-1", orderID)
			got = data
			return nil
		},
	})

	// Act
	err := svc.Link(context.Background(), "o-1", "d-1", "c-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "d-1", got.DealID)
	assert.Equal(t, "c-1", got.ContactID)
	assert.Equal(t, "synced", got.Status)
	assert.False(t, got.LastSyncAt.IsZero())
}

func TestOrderService_Link_Failure(t *testing.T) {
	svc := newService(&mockGateway{
		updateSyncFn: func(ctx context.Context, orderID string, data domain.SyncData) error {
			return errors.New("timeout")
		},
	})

	err := svc.Link(context.Background(), "o-1", "d-1", "c-1")

	assert.ErrorIs(t, err, domain.ErrSyncUpdateFailed)
}
