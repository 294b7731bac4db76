package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/dejobratic/shoporders/internal/database"
	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/dejobratic/shoporders/internal/orders/ports"
	"github.com/dejobratic/shoporders/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ObservableRepository traces and times every call to the wrapped repository.
type ObservableRepository struct {
	repo    ports.OrderRepository
	metrics *database.Metrics
}

func NewObservableRepository(repo ports.OrderRepository, metrics *database.Metrics) *ObservableRepository {
	return &ObservableRepository{
		repo:    repo,
		metrics: metrics,
	}
}

func (r *ObservableRepository) Create(ctx context.Context, order domain.Order) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.Create")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("operation", "create"),
		attribute.Int("order.line_count", len(order.Items)),
	)

	start := time.Now()
	id, err := r.repo.Create(ctx, order)
	r.metrics.RecordQuery(ctx, "create_order", time.Since(start).Seconds(), err)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return "", err
	}

	telemetry.AddSpanAttributes(span, attribute.String("order.id", id))
	telemetry.SetSpanSuccess(span)
	return id, nil
}

func (r *ObservableRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.GetByID")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", id),
		attribute.String("operation", "get_by_id"),
	)

	start := time.Now()
	order, err := r.repo.GetByID(ctx, id)
	r.metrics.RecordQuery(ctx, "get_order_by_id", time.Since(start).Seconds(), unexpected(err))

	if err != nil {
		recordLookupError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (r *ObservableRepository) FindByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.FindByEmail")
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("operation", "find_by_email"))

	start := time.Now()
	orders, err := r.repo.FindByEmail(ctx, email)
	r.metrics.RecordQuery(ctx, "find_orders_by_email", time.Since(start).Seconds(), err)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(orders)))
	telemetry.SetSpanSuccess(span)
	return orders, nil
}

func (r *ObservableRepository) List(ctx context.Context, filter ports.ListFilter) (ports.ListResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.List")
	defer span.End()

	attrs := []attribute.KeyValue{
		attribute.String("operation", "list"),
		attribute.Int("page", filter.Page),
		attribute.Int("page_size", filter.PageSize),
	}
	if filter.Status != nil {
		attrs = append(attrs, attribute.String("filter.status", string(*filter.Status)))
	}
	telemetry.AddSpanAttributes(span, attrs...)

	start := time.Now()
	result, err := r.repo.List(ctx, filter)
	r.metrics.RecordQuery(ctx, "list_orders", time.Since(start).Seconds(), err)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return ports.ListResult{}, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.Int("result.count", len(result.Orders)),
		attribute.Int64("result.total", result.Total),
	)
	telemetry.SetSpanSuccess(span)
	return result, nil
}

func (r *ObservableRepository) UpdateStatus(ctx context.Context, update ports.StatusUpdate) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.UpdateStatus")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", update.ID),
		attribute.String("order.expected_status", string(update.Expected)),
		attribute.String("order.new_status", string(update.Next)),
		attribute.String("operation", "update_status"),
	)

	start := time.Now()
	order, err := r.repo.UpdateStatus(ctx, update)
	r.metrics.RecordQuery(ctx, "update_order_status", time.Since(start).Seconds(), unexpected(err))

	if err != nil {
		if errors.Is(err, ports.ErrConflict) {
			telemetry.AddSpanEvent(span, "status_conflict")
		}
		recordLookupError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return order, nil
}

// Ping forwards readiness checks when the wrapped store supports them.
func (r *ObservableRepository) Ping(ctx context.Context) error {
	if p, ok := r.repo.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// recordLookupError keeps expected misses out of the error status.
func recordLookupError(span trace.Span, err error) {
	if unexpected(err) == nil {
		telemetry.AddSpanAttributes(span, attribute.String("result", err.Error()))
		return
	}
	telemetry.RecordSpanError(span, err)
}

// unexpected drops the misses a caller is expected to handle.
func unexpected(err error) error {
	if errors.Is(err, ports.ErrNotFound) || errors.Is(err, ports.ErrConflict) {
		return nil
	}
	return err
}
