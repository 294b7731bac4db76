package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/dejobratic/shoporders/internal/orders/ports"
)

// ErrEventPublish marks a command whose state change was persisted but whose
// lifecycle event could not be published.
var ErrEventPublish = errors.New("order saved but failed to publish event")

type CreateOrderCommand struct {
	Customer domain.CustomerInfo
	Items    []domain.LineItem
}

// Validate runs the full submission rule set.
func (c CreateOrderCommand) Validate() error {
	return domain.Validate(c.Customer, c.Items).Err()
}

type CommandHandler interface {
	Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
}

type CreateOrderCommandHandler struct {
	repo       ports.OrderRepository
	events     ports.EventBus
	aggregator *domain.Aggregator
}

func NewCreateOrderCommandHandler(
	repo ports.OrderRepository,
	events ports.EventBus,
	aggregator *domain.Aggregator,
) *CreateOrderCommandHandler {
	if aggregator == nil {
		aggregator = domain.NewAggregator()
	}
	return &CreateOrderCommandHandler{
		repo:       repo,
		events:     events,
		aggregator: aggregator,
	}
}

func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	order, err := h.aggregator.BuildOrder(cmd.Customer, cmd.Items)
	if err != nil {
		return nil, err
	}

	id, err := h.repo.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	order.ID = id

	if err := h.events.PublishOrderCreated(ctx, order); err != nil {
		return &order, fmt.Errorf("%w: %w", ErrEventPublish, err)
	}

	return &order, nil
}
