package queries_test

import (
	"context"
	"sort"
	"sync"

	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/dejobratic/shoporders/internal/orders/ports"
)

type inMemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
	lists  []ports.ListFilter
}

func newInMemoryRepository() *inMemoryRepository {
	return &inMemoryRepository{
		orders: make(map[string]domain.Order),
	}
}

func (r *inMemoryRepository) Create(ctx context.Context, order domain.Order) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return order.ID, nil
}

func (r *inMemoryRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, exists := r.orders[id]
	if !exists {
		return nil, ports.ErrNotFound
	}
	return &order, nil
}

func (r *inMemoryRepository) FindByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Order
	for _, order := range r.sorted() {
		if order.Customer.Email == email {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *inMemoryRepository) UpdateStatus(ctx context.Context, update ports.StatusUpdate) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, exists := r.orders[update.ID]
	if !exists {
		return nil, ports.ErrNotFound
	}
	if order.Status != update.Expected {
		return nil, ports.ErrConflict
	}
	order.Status = update.Next
	order.UpdatedAt = update.UpdatedAt
	r.orders[update.ID] = order
	return &order, nil
}

func (r *inMemoryRepository) List(ctx context.Context, filter ports.ListFilter) (ports.ListResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists = append(r.lists, filter)

	var matched []domain.Order
	for _, order := range r.sorted() {
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		matched = append(matched, order)
	}

	start := min(filter.Offset(), len(matched))
	end := min(start+filter.PageSize, len(matched))
	return ports.ListResult{Orders: matched[start:end], Total: int64(len(matched))}, nil
}

// sorted returns orders newest first; callers hold the lock.
func (r *inMemoryRepository) sorted() []domain.Order {
	out := make([]domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		out = append(out, order)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OrderDate.After(out[j].OrderDate)
	})
	return out
}
