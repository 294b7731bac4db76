package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/dejobratic/shoporders/internal/orders/ports"
)

const defaultStatusUpdateAttempts = 3

type ChangeStatusCommand struct {
	OrderID string
	Status  domain.OrderStatus
}

func (c ChangeStatusCommand) Validate() error {
	if strings.TrimSpace(c.OrderID) == "" {
		return domain.FieldError("id", "order id is required")
	}
	if c.Status == "" {
		return domain.FieldError("status", "status is required")
	}
	return nil
}

// StatusChange reports the outcome of a successful ChangeStatusCommand.
type StatusChange struct {
	Order    *domain.Order
	Previous domain.OrderStatus
}

type StatusCommandHandler interface {
	Handle(ctx context.Context, cmd ChangeStatusCommand) (*StatusChange, error)
}

// ChangeStatusCommandHandler applies lifecycle transitions with optimistic
// concurrency: the stored status must still match the one the transition was
// computed from. On ErrConflict the order is re-read and the transition is
// recomputed, up to maxAttempts times.
type ChangeStatusCommandHandler struct {
	repo        ports.OrderRepository
	events      ports.EventBus
	aggregator  *domain.Aggregator
	maxAttempts int
}

func NewChangeStatusCommandHandler(
	repo ports.OrderRepository,
	events ports.EventBus,
	aggregator *domain.Aggregator,
	maxAttempts int,
) *ChangeStatusCommandHandler {
	if aggregator == nil {
		aggregator = domain.NewAggregator()
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultStatusUpdateAttempts
	}
	return &ChangeStatusCommandHandler{
		repo:        repo,
		events:      events,
		aggregator:  aggregator,
		maxAttempts: maxAttempts,
	}
}

func (h *ChangeStatusCommandHandler) Handle(ctx context.Context, cmd ChangeStatusCommand) (*StatusChange, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= h.maxAttempts; attempt++ {
		change, err := h.attempt(ctx, cmd)
		if err == nil {
			if pubErr := h.events.PublishOrderStatusChanged(ctx, change.Order.ID, change.Previous, change.Order.Status); pubErr != nil {
				return change, fmt.Errorf("%w: %w", ErrEventPublish, pubErr)
			}
			return change, nil
		}
		if !errors.Is(err, ports.ErrConflict) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

func (h *ChangeStatusCommandHandler) attempt(ctx context.Context, cmd ChangeStatusCommand) (*StatusChange, error) {
	current, err := h.repo.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	next, err := h.aggregator.Transition(*current, cmd.Status)
	if err != nil {
		return nil, err
	}

	updated, err := h.repo.UpdateStatus(ctx, ports.StatusUpdate{
		ID:        current.ID,
		Expected:  current.Status,
		Next:      next.Status,
		UpdatedAt: next.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}

	return &StatusChange{Order: updated, Previous: current.Status}, nil
}
