package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/dejobratic/shoporders/internal/orders/app/commands"
	"github.com/dejobratic/shoporders/internal/orders/app/queries"
	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/dejobratic/shoporders/internal/orders/metrics"
	"github.com/dejobratic/shoporders/internal/orders/ports"
)

// ErrEventPublish is returned alongside a persisted result whose event was lost.
var ErrEventPublish = commands.ErrEventPublish

// Options tunes the order use cases. Zero values pick defaults.
type Options struct {
	Currency             string
	MaxPageSize          int
	StatusUpdateAttempts int
	Clock                func() time.Time
}

// Service bundles use cases for handling orders via the API.
type Service struct {
	idemStore    ports.IdempotencyStore
	aggregator   *domain.Aggregator
	createOrder  commands.CommandHandler
	changeStatus commands.StatusCommandHandler
	getOrder     *queries.GetOrderQueryHandler
	listOrders   *queries.ListOrdersQueryHandler
	findByEmail  *queries.FindByEmailQueryHandler
}

// NewService wires required dependencies.
func NewService(
	repo ports.OrderRepository,
	events ports.EventBus,
	idem ports.IdempotencyStore,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	opts Options,
) *Service {
	aggOpts := []domain.Option{domain.WithClock(opts.Clock)}
	if opts.Currency != "" {
		aggOpts = append(aggOpts, domain.WithCurrency(opts.Currency))
	}
	aggregator := domain.NewAggregator(aggOpts...)

	createHandler := commands.NewCreateOrderCommandHandler(repo, events, aggregator)
	statusHandler := commands.NewChangeStatusCommandHandler(repo, events, aggregator, opts.StatusUpdateAttempts)

	return &Service{
		idemStore:    idem,
		aggregator:   aggregator,
		createOrder:  commands.NewObservableCommandHandler(createHandler, logger, metrics),
		changeStatus: commands.NewObservableStatusCommandHandler(statusHandler, logger, metrics),
		getOrder:     queries.NewGetOrderQueryHandler(repo),
		listOrders:   queries.NewListOrdersQueryHandler(repo, opts.MaxPageSize),
		findByEmail:  queries.NewFindByEmailQueryHandler(repo),
	}
}

// CreateOrderInput captures a submission. Line totals and summaries sent by
// clients are not part of it; they are always recomputed.
type CreateOrderInput struct {
	Customer domain.CustomerInfo
	Items    []domain.LineItem
}

// CreateOrder validates, prices and stores a new pending order.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	return s.createOrder.Handle(ctx, commands.CreateOrderCommand{
		Customer: input.Customer,
		Items:    input.Items,
	})
}

// GetOrder retrieves an order by ID.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.getOrder.Handle(ctx, queries.GetOrderQuery{OrderID: id})
}

// ListOrders returns one page of orders, newest first.
func (s *Service) ListOrders(ctx context.Context, query queries.ListOrdersQuery) (*queries.OrderPage, error) {
	return s.listOrders.Handle(ctx, query)
}

// FindOrdersByEmail returns a customer's order history.
func (s *Service) FindOrdersByEmail(ctx context.Context, email string) (*queries.CustomerOrders, error) {
	return s.findByEmail.Handle(ctx, queries.FindByEmailQuery{Email: email})
}

// UpdateStatus moves an order along its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*commands.StatusChange, error) {
	return s.changeStatus.Handle(ctx, commands.ChangeStatusCommand{OrderID: id, Status: status})
}

// CancelOrder cancels any order that is not already cancelled.
func (s *Service) CancelOrder(ctx context.Context, id string) (*commands.StatusChange, error) {
	return s.UpdateStatus(ctx, id, domain.StatusCancelled)
}

// Summarize projects an order for listings.
func (s *Service) Summarize(order domain.Order) domain.SummaryView {
	return s.aggregator.Summarize(order)
}

// SaveIdempotentResponse writes response details for a key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, key)
}
