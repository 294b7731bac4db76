package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/dejobratic/shoporders/internal/orders/metrics"
	"github.com/dejobratic/shoporders/internal/orders/ports"
	"github.com/dejobratic/shoporders/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableStatusCommandHandler struct {
	handler StatusCommandHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableStatusCommandHandler(handler StatusCommandHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableStatusCommandHandler {
	return &ObservableStatusCommandHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableStatusCommandHandler) Handle(ctx context.Context, cmd ChangeStatusCommand) (*StatusChange, error) {
	ctx, span := telemetry.StartSpan(ctx, "ChangeStatusCommand.Handle")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", cmd.OrderID),
		attribute.String("order.new_status", string(cmd.Status)),
	)

	change, err := o.handler.Handle(ctx, cmd)

	var from string
	if change != nil {
		from = string(change.Previous)
	}
	o.metrics.RecordStatusTransition(ctx, from, string(cmd.Status), change != nil)

	switch {
	case err == nil:
		telemetry.SetSpanSuccess(span)
		o.logger.InfoContext(ctx, "order status changed",
			"order_id", cmd.OrderID,
			"from", change.Previous,
			"to", change.Order.Status,
		)
	case errors.Is(err, ErrEventPublish):
		telemetry.AddSpanEvent(span, "event_publish_failed")
		o.logger.WarnContext(ctx, "order status changed but event was not published",
			"error", err,
			"order_id", cmd.OrderID,
		)
	case errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, ports.ErrNotFound),
		errors.Is(err, ports.ErrConflict):
		telemetry.RecordSpanError(span, err)
		o.logger.InfoContext(ctx, "order status change rejected",
			"error", err,
			"order_id", cmd.OrderID,
			"status", cmd.Status,
		)
	default:
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to change order status",
			"error", err,
			"order_id", cmd.OrderID,
		)
	}

	return change, err
}
