package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dejobratic/shoporders/internal/orders/app/commands"
	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/dejobratic/shoporders/internal/orders/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var statusClock = time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

func statusAggregator() *domain.Aggregator {
	return domain.NewAggregator(domain.WithClock(func() time.Time { return statusClock }))
}

func storedOrder(status domain.OrderStatus) func(ctx context.Context, id string) (*domain.Order, error) {
	return func(ctx context.Context, id string) (*domain.Order, error) {
		return &domain.Order{ID: id, Status: status}, nil
	}
}

func TestChangeStatus_AdvancesOneStep(t *testing.T) {
	repo := &mockRepository{getByIDFn: storedOrder(domain.StatusPending)}
	events := &mockEventBus{}
	handler := commands.NewChangeStatusCommandHandler(repo, events, statusAggregator(), 3)

	change, err := handler.Handle(context.Background(), commands.ChangeStatusCommand{
		OrderID: "order-1",
		Status:  domain.StatusConfirmed,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, change.Previous)
	assert.Equal(t, domain.StatusConfirmed, change.Order.Status)

	require.Len(t, repo.updates, 1)
	assert.Equal(t, ports.StatusUpdate{
		ID:        "order-1",
		Expected:  domain.StatusPending,
		Next:      domain.StatusConfirmed,
		UpdatedAt: statusClock,
	}, repo.updates[0])

	require.Len(t, events.changed, 1)
	assert.Equal(t, statusChangedEvent{orderID: "order-1", from: domain.StatusPending, to: domain.StatusConfirmed}, events.changed[0])
}

func TestChangeStatus_CancelFromAnyActiveStatus(t *testing.T) {
	for _, from := range []domain.OrderStatus{
		domain.StatusPending,
		domain.StatusConfirmed,
		domain.StatusProcessing,
		domain.StatusShipped,
		domain.StatusDelivered,
	} {
		t.Run(string(from), func(t *testing.T) {
			repo := &mockRepository{getByIDFn: storedOrder(from)}
			handler := commands.NewChangeStatusCommandHandler(repo, &mockEventBus{}, statusAggregator(), 3)

			change, err := handler.Handle(context.Background(), commands.ChangeStatusCommand{
				OrderID: "order-1",
				Status:  domain.StatusCancelled,
			})

			require.NoError(t, err)
			assert.Equal(t, domain.StatusCancelled, change.Order.Status)
			assert.Equal(t, from, change.Previous)
		})
	}
}

func TestChangeStatus_IllegalTransition(t *testing.T) {
	repo := &mockRepository{getByIDFn: storedOrder(domain.StatusCancelled)}
	events := &mockEventBus{}
	handler := commands.NewChangeStatusCommandHandler(repo, events, statusAggregator(), 3)

	change, err := handler.Handle(context.Background(), commands.ChangeStatusCommand{
		OrderID: "order-1",
		Status:  domain.StatusConfirmed,
	})

	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	assert.Nil(t, change)
	assert.Empty(t, repo.updates, "a rejected transition must not be written")
	assert.Empty(t, events.changed)
}

func TestChangeStatus_UnknownStatus(t *testing.T) {
	repo := &mockRepository{getByIDFn: storedOrder(domain.StatusPending)}
	handler := commands.NewChangeStatusCommandHandler(repo, &mockEventBus{}, statusAggregator(), 3)

	_, err := handler.Handle(context.Background(), commands.ChangeStatusCommand{
		OrderID: "order-1",
		Status:  "completed",
	})

	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	assert.Empty(t, repo.updates)
}

func TestChangeStatus_NotFound(t *testing.T) {
	repo := &mockRepository{}
	handler := commands.NewChangeStatusCommandHandler(repo, &mockEventBus{}, statusAggregator(), 3)

	_, err := handler.Handle(context.Background(), commands.ChangeStatusCommand{
		OrderID: "missing",
		Status:  domain.StatusConfirmed,
	})

	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestChangeStatus_RetriesOnConflict(t *testing.T) {
	// The first read sees pending; a concurrent writer confirms the order
	// before the update lands, so the retry recomputes from confirmed.
	reads := []domain.OrderStatus{domain.StatusPending, domain.StatusConfirmed}
	repo := &mockRepository{
		getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
			status := reads[0]
			if len(reads) > 1 {
				reads = reads[1:]
			}
			return &domain.Order{ID: id, Status: status}, nil
		},
	}
	repo.updateStatusFn = func(ctx context.Context, update ports.StatusUpdate) (*domain.Order, error) {
		if update.Expected == domain.StatusPending {
			return nil, ports.ErrConflict
		}
		return &domain.Order{ID: update.ID, Status: update.Next}, nil
	}
	handler := commands.NewChangeStatusCommandHandler(repo, &mockEventBus{}, statusAggregator(), 3)

	change, err := handler.Handle(context.Background(), commands.ChangeStatusCommand{
		OrderID: "order-1",
		Status:  domain.StatusCancelled,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, change.Previous)
	assert.Equal(t, domain.StatusCancelled, change.Order.Status)
	assert.Len(t, repo.updates, 2)
}

func TestChangeStatus_ConflictAfterRetryBecomesIllegal(t *testing.T) {
	reads := []domain.OrderStatus{domain.StatusPending, domain.StatusConfirmed}
	repo := &mockRepository{
		getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
			status := reads[0]
			if len(reads) > 1 {
				reads = reads[1:]
			}
			return &domain.Order{ID: id, Status: status}, nil
		},
		updateStatusFn: func(ctx context.Context, update ports.StatusUpdate) (*domain.Order, error) {
			return nil, ports.ErrConflict
		},
	}
	handler := commands.NewChangeStatusCommandHandler(repo, &mockEventBus{}, statusAggregator(), 3)

	_, err := handler.Handle(context.Background(), commands.ChangeStatusCommand{
		OrderID: "order-1",
		Status:  domain.StatusConfirmed,
	})

	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	assert.Len(t, repo.updates, 1)
}

func TestChangeStatus_GivesUpAfterMaxAttempts(t *testing.T) {
	repo := &mockRepository{
		getByIDFn: storedOrder(domain.StatusPending),
		updateStatusFn: func(ctx context.Context, update ports.StatusUpdate) (*domain.Order, error) {
			return nil, ports.ErrConflict
		},
	}
	events := &mockEventBus{}
	handler := commands.NewChangeStatusCommandHandler(repo, events, statusAggregator(), 2)

	change, err := handler.Handle(context.Background(), commands.ChangeStatusCommand{
		OrderID: "order-1",
		Status:  domain.StatusConfirmed,
	})

	assert.ErrorIs(t, err, ports.ErrConflict)
	assert.Nil(t, change)
	assert.Len(t, repo.updates, 2)
	assert.Empty(t, events.changed)
}

func TestChangeStatus_EventPublishFailure(t *testing.T) {
	busErr := errors.New("broker unavailable")
	repo := &mockRepository{getByIDFn: storedOrder(domain.StatusShipped)}
	events := &mockEventBus{
		publishOrderStatusChangedFn: func(ctx context.Context, orderID string, from, to domain.OrderStatus) error {
			return busErr
		},
	}
	handler := commands.NewChangeStatusCommandHandler(repo, events, statusAggregator(), 3)

	change, err := handler.Handle(context.Background(), commands.ChangeStatusCommand{
		OrderID: "order-1",
		Status:  domain.StatusDelivered,
	})

	assert.ErrorIs(t, err, commands.ErrEventPublish)
	assert.ErrorIs(t, err, busErr)
	require.NotNil(t, change)
	assert.Equal(t, domain.StatusDelivered, change.Order.Status)
}

func TestChangeStatusCommandValidation(t *testing.T) {
	tests := []struct {
		name  string
		cmd   commands.ChangeStatusCommand
		field string
	}{
		{"missing order id", commands.ChangeStatusCommand{OrderID: " ", Status: domain.StatusConfirmed}, "id"},
		{"missing status", commands.ChangeStatusCommand{OrderID: "order-1"}, "status"},
		{"valid", commands.ChangeStatusCommand{OrderID: "order-1", Status: domain.StatusConfirmed}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, domain.ErrValidationFailed)
			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Contains(t, vErr.Fields, tt.field)
		})
	}
}
