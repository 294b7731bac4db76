package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dejobratic/shoporders/internal/orders/domain"
)

// LogEventBus writes lifecycle events to a structured logger instead of a broker.
type LogEventBus struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewLogEventBus(logger *slog.Logger) *LogEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEventBus{
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (b *LogEventBus) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	return b.publish(ctx, OrderCreated(order, b.now()))
}

func (b *LogEventBus) PublishOrderStatusChanged(ctx context.Context, orderID string, from, to domain.OrderStatus) error {
	return b.publish(ctx, OrderStatusChanged(orderID, from, to, b.now()))
}

func (b *LogEventBus) publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Topic, err)
	}

	b.logger.InfoContext(ctx, "event published",
		"topic", event.Topic,
		"event_id", event.ID,
		"order_id", event.OrderID,
		"event", json.RawMessage(body),
	)
	return nil
}
