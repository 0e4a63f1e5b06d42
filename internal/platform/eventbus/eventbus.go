package eventbus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rai/bot-order-bridge/internal/platform/background"
	"github.com/rai/bot-order-bridge/modules/shared/events"
)

// Dispatcher runs tasks outside the caller's lifecycle.
type Dispatcher interface {
	Submit(ctx context.Context, t background.Task) error
}

// AsyncEventBus delivers each event to its handlers as independent background tasks.
// Publish never waits for handlers and never reports their failures; those are logged
// by the dispatcher.
type AsyncEventBus struct {
	registry   HandlerRegistry
	dispatcher Dispatcher
	logger     *slog.Logger
}

func New(registry HandlerRegistry, dispatcher Dispatcher, logger *slog.Logger) *AsyncEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &AsyncEventBus{
		registry:   registry,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Publish implements events.Publisher.
func (b *AsyncEventBus) Publish(ctx context.Context, evts ...events.Event) error {
	for _, event := range evts {
		handlers := b.registry.HandlersFor(event.EventType())

		b.logger.Debug("publishing event",
			slog.String("event_type", event.EventType().String()),
			slog.String("event_id", event.EventID()),
			slog.Int("handler_count", len(handlers)),
		)

		for _, handler := range handlers {
			task := background.Task{
				Name: fmt.Sprintf("%s:%T", event.EventType(), handler),
				Run: func(ctx context.Context) error {
					return handler.Handle(ctx, event)
				},
			}
			if err := b.dispatcher.Submit(ctx, task); err != nil {
				b.logger.Warn("event handler not dispatched",
					slog.String("event_type", event.EventType().String()),
					slog.String("event_id", event.EventID()),
					slog.Any("error", err),
				)
			}
		}
	}
	return nil
}

// HandlerFunc is an adapter to use ordinary functions as event handlers.
type HandlerFunc func(ctx context.Context, event events.Event) error

func (f HandlerFunc) Handle(ctx context.Context, event events.Event) error {
	return f(ctx, event)
}

// Compile-time interface check.
var _ events.Publisher = (*AsyncEventBus)(nil)
