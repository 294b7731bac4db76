package queries

import (
	"context"
	"math"
	"strings"

	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/dejobratic/shoporders/internal/orders/ports"
)

const DefaultMaxPageSize = 100

// ListOrdersQuery asks for one page of orders, newest first. Zero values pick defaults.
type ListOrdersQuery struct {
	Status string
	Page   int
	Limit  int
}

// OrderPage is a page of orders with the pagination block the API reports.
type OrderPage struct {
	Orders      []domain.Order
	CurrentPage int
	PageSize    int
	TotalPages  int
	TotalOrders int64
	HasNextPage bool
	HasPrevPage bool
}

type ListOrdersQueryHandler struct {
	repo        ports.OrderRepository
	maxPageSize int
}

func NewListOrdersQueryHandler(repo ports.OrderRepository, maxPageSize int) *ListOrdersQueryHandler {
	if maxPageSize <= 0 {
		maxPageSize = DefaultMaxPageSize
	}
	return &ListOrdersQueryHandler{repo: repo, maxPageSize: maxPageSize}
}

func (h *ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) (*OrderPage, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	filter := h.filter(query)
	if filter.Page-1 > math.MaxInt/filter.PageSize {
		return nil, domain.FieldError("page", "page is beyond the last addressable page")
	}
	result, err := h.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	orders := result.Orders
	if orders == nil {
		orders = []domain.Order{}
	}

	totalPages := int((result.Total + int64(filter.PageSize) - 1) / int64(filter.PageSize))
	return &OrderPage{
		Orders:      orders,
		CurrentPage: filter.Page,
		PageSize:    filter.PageSize,
		TotalPages:  totalPages,
		TotalOrders: result.Total,
		HasNextPage: filter.Page < totalPages,
		HasPrevPage: filter.Page > 1,
	}, nil
}

func (h *ListOrdersQueryHandler) filter(query ListOrdersQuery) ports.ListFilter {
	filter := ports.ListFilter{Page: query.Page, PageSize: query.Limit}.Normalize()
	if filter.PageSize > h.maxPageSize {
		filter.PageSize = h.maxPageSize
	}
	if status := strings.TrimSpace(query.Status); status != "" {
		s := domain.OrderStatus(status)
		filter.Status = &s
	}
	return filter
}

func (q ListOrdersQuery) Validate() error {
	status := strings.TrimSpace(q.Status)
	if status != "" && !domain.OrderStatus(status).IsValid() {
		return domain.FieldError("status", "unknown order status "+status)
	}
	return nil
}
