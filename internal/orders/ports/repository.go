package ports

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/dejobratic/shoporders/internal/orders/domain"
)

// OrderRepository exposes persistence operations required by the application layer.
type OrderRepository interface {
	// Create stores a new order and returns the identifier assigned to it.
	Create(ctx context.Context, order domain.Order) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// FindByEmail returns the customer's orders, newest first.
	FindByEmail(ctx context.Context, email string) ([]domain.Order, error)
	// UpdateStatus applies update only if the stored status still equals update.Expected.
	UpdateStatus(ctx context.Context, update StatusUpdate) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) (ListResult, error)
}

// StatusUpdate is a compare-and-swap request on an order's status.
type StatusUpdate struct {
	ID        string
	Expected  domain.OrderStatus
	Next      domain.OrderStatus
	UpdatedAt time.Time
}

// ListFilter narrows list queries by status and pagination. Pages are 1-based.
type ListFilter struct {
	Status   *domain.OrderStatus
	Page     int
	PageSize int
}

// ListResult is one page of orders, newest first, plus the total matching count.
type ListResult struct {
	Orders []domain.Order
	Total  int64
}

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Normalize replaces non-positive paging values with defaults.
func (f ListFilter) Normalize() ListFilter {
	if f.Page <= 0 {
		f.Page = DefaultPage
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	return f
}

// Offset is the number of rows skipped before the requested page. It saturates
// at math.MaxInt instead of overflowing.
func (f ListFilter) Offset() int {
	if f.Page <= 1 || f.PageSize <= 0 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.PageSize {
		return math.MaxInt
	}
	return (f.Page - 1) * f.PageSize
}

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrConflict is returned when the stored status no longer matches the expected one.
	ErrConflict = errors.New("order was modified concurrently")
)
