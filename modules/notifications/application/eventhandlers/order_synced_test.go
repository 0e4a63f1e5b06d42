package eventhandlers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerapp "github.com/rai/bot-order-bridge/modules/ledger/application"
	ledgerdomain "github.com/rai/bot-order-bridge/modules/ledger/domain"
	ledgerpersistence "github.com/rai/bot-order-bridge/modules/ledger/infrastructure/persistence"
	"github.com/rai/bot-order-bridge/modules/notifications/application/eventhandlers"
	"github.com/rai/bot-order-bridge/modules/shared/events"
	"github.com/rai/bot-order-bridge/modules/shared/events/contracts"
)

type mockFlag struct {
	SetFunc func(ctx context.Context, platform, contactID string) error
}

func (m *mockFlag) Set(ctx context.Context, platform, contactID string) error {
	return m.SetFunc(ctx, platform, contactID)
}

func syncedEvent() contracts.OrderSyncedEvent {
	return contracts.OrderSyncedEvent{
		BaseEvent:         events.NewBaseEvent(contracts.OrderSyncedEventType, "t-1"),
		BotOrderID:        "bo-1",
		Platform:          "telegram",
		ExternalContactID: "tg-42",
		DealID:            "d-1",
		Status:            "success",
	}
}

func TestOrderSyncedHandler_SetsFlag(t *testing.T) {
	// Arrange
	repo := ledgerpersistence.NewInMemoryRepository()
	var gotPlatform, gotContact string
	flag := &mockFlag{SetFunc: func(ctx context.Context, platform, contactID string) error {
		gotPlatform, gotContact = platform, contactID
		return nil
	}}
	h := eventhandlers.NewOrderSyncedHandler(flag, ledgerapp.NewRecorder(repo, nil), nil)

	// Act
	err := h.Handle(context.Background(), syncedEvent())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "telegram", gotPlatform)
	assert.Equal(t, "tg-42", gotContact)

	entries, err := repo.ListByBotOrderID(context.Background(), "bo-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ledgerdomain.OpSetBotVariable, entries[0].Operation)
	assert.Equal(t, ledgerdomain.OutcomeSuccess, entries[0].Outcome)
}

func TestOrderSyncedHandler_FailureIsLedgered(t *testing.T) {
	// Arrange
	repo := ledgerpersistence.NewInMemoryRepository()
	setErr := errors.New("bot platform down")
	flag := &mockFlag{SetFunc: func(ctx context.Context, platform, contactID string) error {
		return setErr
	}}
	h := eventhandlers.NewOrderSyncedHandler(flag, ledgerapp.NewRecorder(repo, nil), nil)

	// Act
	err := h.Handle(context.Background(), syncedEvent())

	// Assert
	assert.ErrorIs(t, err, setErr)
	entries, _ := repo.ListByBotOrderID(context.Background(), "bo-1")
	require.Len(t, entries, 1)
	assert.Equal(t, ledgerdomain.OutcomeFailure, entries[0].Outcome)
	assert.Contains(t, entries[0].Message, "bot platform down")
}

func TestOrderSyncedHandler_RejectsOtherEvents(t *testing.T) {
	h := eventhandlers.NewOrderSyncedHandler(&mockFlag{}, ledgerapp.NewRecorder(ledgerpersistence.NewInMemoryRepository(), nil), nil)

	err := h.Handle(context.Background(), events.NewBaseEvent("other.Event", "x"))

	assert.Error(t, err)
}
