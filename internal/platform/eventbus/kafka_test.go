package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rai/bot-order-bridge/modules/shared/events"
	"github.com/rai/bot-order-bridge/modules/shared/events/contracts"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestKafkaForwarder_Handle(t *testing.T) {
	w := &fakeWriter{}
	f := NewKafkaForwarder(w)

	evt := contracts.OrderSyncedEvent{
		BaseEvent:  events.NewBaseEvent(contracts.OrderSyncedEventType, "bot-1"),
		BotOrderID: "bot-1",
		DealID:     "d-9",
		Status:     "completed",
	}

	require.NoError(t, f.Handle(context.Background(), evt))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "bot-1", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "orders.OrderSynced", string(msg.Headers[0].Value))
	assert.Equal(t, "event_version", msg.Headers[2].Key)
	assert.Equal(t, "1", string(msg.Headers[2].Value))

	var decoded contracts.OrderSyncedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "d-9", decoded.DealID)
}

func TestKafkaForwarder_WriteError(t *testing.T) {
	f := NewKafkaForwarder(&fakeWriter{err: errors.New("broker down")})

	err := f.Handle(context.Background(), contracts.OrderSyncedEvent{
		BaseEvent: events.NewBaseEvent(contracts.OrderSyncedEventType, "bot-2"),
	})

	assert.ErrorContains(t, err, "broker down")
}
