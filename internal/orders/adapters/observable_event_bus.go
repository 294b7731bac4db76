package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/shoporders/internal/eventbus"
	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/dejobratic/shoporders/internal/orders/ports"
	"github.com/dejobratic/shoporders/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableEventBus struct {
	bus     ports.EventBus
	metrics *eventbus.Metrics
}

func NewObservableEventBus(bus ports.EventBus, metrics *eventbus.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.PublishOrderCreated")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.String("event.type", eventbus.TopicOrderCreated),
		attribute.String("topic", eventbus.TopicOrderCreated),
	)

	start := time.Now()
	err := e.bus.PublishOrderCreated(ctx, order)
	e.metrics.RecordPublish(ctx, eventbus.TopicOrderCreated, time.Since(start).Seconds(), err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (e *ObservableEventBus) PublishOrderStatusChanged(ctx context.Context, orderID string, from, to domain.OrderStatus) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.PublishOrderStatusChanged")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderID),
		attribute.String("event.type", eventbus.TopicOrderStatusChanged),
		attribute.String("topic", eventbus.TopicOrderStatusChanged),
		attribute.String("order.previous_status", string(from)),
		attribute.String("order.new_status", string(to)),
	)

	start := time.Now()
	err := e.bus.PublishOrderStatusChanged(ctx, orderID, from, to)
	e.metrics.RecordPublish(ctx, eventbus.TopicOrderStatusChanged, time.Since(start).Seconds(), err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
