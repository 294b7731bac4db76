package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/dejobratic/shoporders/internal/orders/metrics"
	"github.com/dejobratic/shoporders/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableCommandHandler struct {
	handler CommandHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableCommandHandler(handler CommandHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableCommandHandler {
	return &ObservableCommandHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "CreateOrderCommand.Handle")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		o.metrics.RecordOrderCreationDuration(ctx, time.Since(start).Seconds())
		o.metrics.RecordOrderCreated(ctx, success)
	}()

	o.logger.InfoContext(ctx, "creating order",
		"customer_email", cmd.Customer.Email,
		"item_count", len(cmd.Items),
	)

	order, err := o.handler.Handle(ctx, cmd)
	if order != nil {
		telemetry.AddSpanAttributes(span,
			attribute.String("order.id", order.ID),
			attribute.String("order.number", order.OrderNumber()),
			attribute.Int("order.total_items", order.Summary.TotalItems),
			attribute.String("order.total_amount", order.Summary.TotalAmount.StringFixed(2)),
			attribute.String("order.status", string(order.Status)),
		)
		success = true
		o.metrics.RecordOrderAmount(ctx, order.Summary.Currency, order.Summary.TotalAmount.InexactFloat64())
	}

	switch {
	case err == nil:
		o.logger.InfoContext(ctx, "order created successfully",
			"order_id", order.ID,
			"order_number", order.OrderNumber(),
		)
		telemetry.SetSpanSuccess(span)
	case errors.Is(err, ErrEventPublish):
		telemetry.AddSpanEvent(span, "event_publish_failed")
		o.logger.WarnContext(ctx, "order created but event was not published",
			"error", err,
			"order_id", order.ID,
		)
	case errors.Is(err, domain.ErrValidationFailed), errors.Is(err, domain.ErrEmptyOrder):
		telemetry.RecordSpanError(span, err)
		o.logger.InfoContext(ctx, "order rejected",
			"error", err,
			"customer_email", cmd.Customer.Email,
		)
	default:
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to create order",
			"error", err,
			"customer_email", cmd.Customer.Email,
		)
	}

	return order, err
}
