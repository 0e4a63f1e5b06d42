package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rai/bot-order-bridge/modules/shared/events"
)

// messageWriter is satisfied by *kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaForwarder is an events.Handler that copies events onto a Kafka topic,
// keyed by aggregate id so that one order's events stay ordered.
type KafkaForwarder struct {
	writer messageWriter
}

// NewKafkaWriter creates a writer for topic. The caller closes it.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

func NewKafkaForwarder(writer messageWriter) *KafkaForwarder {
	return &KafkaForwarder{writer: writer}
}

// Handle implements events.Handler.
func (f *KafkaForwarder) Handle(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event %s: %w", event.EventID(), err)
	}

	msg := kafka.Message{
		Key:   []byte(event.AggregateID()),
		Value: payload,
		Time:  event.OccurredAt(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType().String())},
			{Key: "event_id", Value: []byte(event.EventID())},
			{Key: "event_version", Value: []byte(strconv.Itoa(event.SchemaVersion()))},
		},
	}
	if err := f.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing event %s to kafka: %w", event.EventID(), err)
	}
	return nil
}

var _ events.Handler = (*KafkaForwarder)(nil)
