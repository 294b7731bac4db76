package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dejobratic/shoporders/internal/orders/app/commands"
	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/shopspring/decimal"
)

func TestCreateOrder(t *testing.T) {
	t.Run("creates pending order with server computed totals", func(t *testing.T) {
		repo := &mockRepository{}
		events := &mockEventBus{}
		handler := commands.NewCreateOrderCommandHandler(repo, events, nil)

		order, err := handler.Handle(context.Background(), validCommand())

		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if order == nil {
			t.Fatal("expected order to be returned, got nil")
		}

		if order.ID != "65f1c2a9e4b0d3a1b2c3d4e5" {
			t.Errorf("expected repository assigned ID, got %q", order.ID)
		}

		if order.OrderNumber() != "ORD-B2C3D4E5" {
			t.Errorf("expected order number ORD-B2C3D4E5, got %s", order.OrderNumber())
		}

		if order.Customer.Email != "dana@example.com" {
			t.Errorf("expected normalized email, got %s", order.Customer.Email)
		}

		if order.Status != domain.StatusPending {
			t.Errorf("expected status %s, got %s", domain.StatusPending, order.Status)
		}

		if !order.Summary.TotalAmount.Equal(decimal.RequireFromString("26.70")) {
			t.Errorf("expected total 26.70, got %s", order.Summary.TotalAmount)
		}

		if order.Summary.TotalItems != 3 {
			t.Errorf("expected 3 items, got %d", order.Summary.TotalItems)
		}

		if len(events.created) != 1 || events.created[0].ID != order.ID {
			t.Errorf("expected one order created event for %s, got %+v", order.ID, events.created)
		}
	})

	t.Run("persists the order before assigning an ID", func(t *testing.T) {
		repo := &mockRepository{}
		handler := commands.NewCreateOrderCommandHandler(repo, &mockEventBus{}, nil)

		if _, err := handler.Handle(context.Background(), validCommand()); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if len(repo.created) != 1 {
			t.Fatalf("expected one stored order, got %d", len(repo.created))
		}

		if repo.created[0].ID != "" {
			t.Errorf("expected repository to receive an order without ID, got %q", repo.created[0].ID)
		}
	})

	t.Run("uses configured currency", func(t *testing.T) {
		agg := domain.NewAggregator(domain.WithCurrency("USD"))
		handler := commands.NewCreateOrderCommandHandler(&mockRepository{}, &mockEventBus{}, agg)

		order, err := handler.Handle(context.Background(), validCommand())

		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if order.Summary.Currency != "USD" {
			t.Errorf("expected currency USD, got %s", order.Summary.Currency)
		}
	})

	t.Run("returns validation error with every violated field", func(t *testing.T) {
		repo := &mockRepository{}
		handler := commands.NewCreateOrderCommandHandler(repo, &mockEventBus{}, nil)

		cmd := validCommand()
		cmd.Customer.Email = "invalid-email"
		cmd.Customer.Address = "short"

		order, err := handler.Handle(context.Background(), cmd)

		if !errors.Is(err, domain.ErrValidationFailed) {
			t.Fatalf("expected validation error, got: %v", err)
		}

		var vErr *domain.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected *domain.ValidationError, got %T", err)
		}

		if len(vErr.Fields) != 2 {
			t.Errorf("expected 2 field errors, got %v", vErr.Fields)
		}

		if order != nil {
			t.Errorf("expected nil order, got %+v", order)
		}

		if len(repo.created) != 0 {
			t.Error("expected nothing to be stored")
		}
	})

	t.Run("rejects an order without items", func(t *testing.T) {
		handler := commands.NewCreateOrderCommandHandler(&mockRepository{}, &mockEventBus{}, nil)

		cmd := validCommand()
		cmd.Items = nil

		order, err := handler.Handle(context.Background(), cmd)

		if !errors.Is(err, domain.ErrValidationFailed) {
			t.Fatalf("expected validation error, got: %v", err)
		}

		if order != nil {
			t.Errorf("expected nil order, got %+v", order)
		}
	})

	t.Run("returns error when repository fails", func(t *testing.T) {
		repoErr := errors.New("database connection failed")
		repo := &mockRepository{
			createFn: func(ctx context.Context, order domain.Order) (string, error) {
				return "", repoErr
			},
		}
		events := &mockEventBus{}
		handler := commands.NewCreateOrderCommandHandler(repo, events, nil)

		order, err := handler.Handle(context.Background(), validCommand())

		if !errors.Is(err, repoErr) {
			t.Errorf("expected error to wrap repository error, got: %v", err)
		}

		if order != nil {
			t.Errorf("expected nil order, got %+v", order)
		}

		if len(events.created) != 0 {
			t.Error("expected no event for an order that was not stored")
		}
	})

	t.Run("returns order even when event publishing fails", func(t *testing.T) {
		eventErr := errors.New("broker unavailable")
		events := &mockEventBus{
			publishOrderCreatedFn: func(ctx context.Context, order domain.Order) error {
				return eventErr
			},
		}
		handler := commands.NewCreateOrderCommandHandler(&mockRepository{}, events, nil)

		order, err := handler.Handle(context.Background(), validCommand())

		if !errors.Is(err, commands.ErrEventPublish) {
			t.Fatalf("expected ErrEventPublish, got: %v", err)
		}

		if !errors.Is(err, eventErr) {
			t.Errorf("expected error to wrap the bus error, got: %v", err)
		}

		if order == nil {
			t.Fatal("expected order to be returned even on event bus error")
		}

		if order.ID == "" {
			t.Error("expected stored order to carry its ID")
		}
	})
}
