package commands_test

import (
	"context"

	"github.com/dejobratic/shoporders/internal/orders/app/commands"
	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/dejobratic/shoporders/internal/orders/ports"
	"github.com/shopspring/decimal"
)

type mockRepository struct {
	createFn       func(ctx context.Context, order domain.Order) (string, error)
	getByIDFn      func(ctx context.Context, id string) (*domain.Order, error)
	updateStatusFn func(ctx context.Context, update ports.StatusUpdate) (*domain.Order, error)

	created []domain.Order
	updates []ports.StatusUpdate
}

func (m *mockRepository) Create(ctx context.Context, order domain.Order) (string, error) {
	m.created = append(m.created, order)
	if m.createFn != nil {
		return m.createFn(ctx, order)
	}
	return "65f1c2a9e4b0d3a1b2c3d4e5", nil
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ports.ErrNotFound
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	return nil, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, update ports.StatusUpdate) (*domain.Order, error) {
	m.updates = append(m.updates, update)
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, update)
	}
	return &domain.Order{ID: update.ID, Status: update.Next, UpdatedAt: update.UpdatedAt}, nil
}

func (m *mockRepository) List(ctx context.Context, filter ports.ListFilter) (ports.ListResult, error) {
	return ports.ListResult{}, nil
}

type statusChangedEvent struct {
	orderID  string
	from, to domain.OrderStatus
}

type mockEventBus struct {
	publishOrderCreatedFn       func(ctx context.Context, order domain.Order) error
	publishOrderStatusChangedFn func(ctx context.Context, orderID string, from, to domain.OrderStatus) error

	created []domain.Order
	changed []statusChangedEvent
}

func (m *mockEventBus) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	m.created = append(m.created, order)
	if m.publishOrderCreatedFn != nil {
		return m.publishOrderCreatedFn(ctx, order)
	}
	return nil
}

func (m *mockEventBus) PublishOrderStatusChanged(ctx context.Context, orderID string, from, to domain.OrderStatus) error {
	m.changed = append(m.changed, statusChangedEvent{orderID: orderID, from: from, to: to})
	if m.publishOrderStatusChangedFn != nil {
		return m.publishOrderStatusChangedFn(ctx, orderID, from, to)
	}
	return nil
}

func validCommand() commands.CreateOrderCommand {
	return commands.CreateOrderCommand{
		Customer: domain.CustomerInfo{
			FirstName: "Dana",
			LastName:  "Levi",
			Email:     "Dana@Example.com",
			Address:   "123 Main Street Apt 4",
		},
		Items: []domain.LineItem{
			{
				ProductID:    1,
				ProductName:  "Apples",
				CategoryID:   1,
				CategoryName: "Produce",
				Unit:         "kg",
				UnitPrice:    decimal.RequireFromString("8.90"),
				Quantity:     3,
			},
		},
	}
}
