package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/dejobratic/shoporders/internal/orders/ports"
	"github.com/google/uuid"
)

// Repository provides an in-memory store useful for local development and tests.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{orders: make(map[string]domain.Order)}
}

// Create stores a copy of order under a fresh UUID.
func (r *Repository) Create(_ context.Context, order domain.Order) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = uuid.NewString()
	r.orders[order.ID] = clone(order)
	return order.ID, nil
}

// GetByID fetches a single order by identifier.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	found := clone(order)
	return &found, nil
}

// FindByEmail returns the orders placed with email, newest first.
func (r *Repository) FindByEmail(_ context.Context, email string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []domain.Order{}
	for _, order := range r.orders {
		if order.Customer.Email == email {
			result = append(result, clone(order))
		}
	}
	newestFirst(result)
	return result, nil
}

// List returns orders respecting the provided filter. Pagination is 1-based.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) (ports.ListResult, error) {
	filter = filter.Normalize()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []domain.Order
	for _, order := range r.orders {
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		matched = append(matched, order)
	}
	newestFirst(matched)

	total := int64(len(matched))
	start := filter.Offset()
	if start >= len(matched) {
		return ports.ListResult{Orders: []domain.Order{}, Total: total}, nil
	}
	end := min(start+filter.PageSize, len(matched))

	page := make([]domain.Order, 0, end-start)
	for _, order := range matched[start:end] {
		page = append(page, clone(order))
	}
	return ports.ListResult{Orders: page, Total: total}, nil
}

// UpdateStatus applies the update only when the stored status equals update.Expected.
func (r *Repository) UpdateStatus(_ context.Context, update ports.StatusUpdate) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[update.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if order.Status != update.Expected {
		return nil, ports.ErrConflict
	}

	order.Status = update.Next
	order.UpdatedAt = update.UpdatedAt
	r.orders[update.ID] = order

	updated := clone(order)
	return &updated, nil
}

// Ping always succeeds; it lets the memory store stand in for readiness checks.
func (r *Repository) Ping(context.Context) error {
	return nil
}

func clone(order domain.Order) domain.Order {
	order.Items = append([]domain.LineItem(nil), order.Items...)
	return order
}

func newestFirst(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].OrderDate.Equal(orders[j].OrderDate) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].OrderDate.After(orders[j].OrderDate)
	})
}
