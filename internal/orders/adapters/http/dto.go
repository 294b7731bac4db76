package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dejobratic/shoporders/internal/orders/app/commands"
	"github.com/dejobratic/shoporders/internal/orders/app/queries"
	"github.com/dejobratic/shoporders/internal/orders/domain"
)

type customerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Address   string `json:"address"`
}

// lineItemRequest ignores any totalPrice a client sends.
type lineItemRequest struct {
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	CategoryID   int64           `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
}

type createOrderRequest struct {
	CustomerInfo customerRequest   `json:"customerInfo"`
	Items        []lineItemRequest `json:"items"`
}

func (r createOrderRequest) customer() domain.CustomerInfo {
	return domain.CustomerInfo{
		FirstName: r.CustomerInfo.FirstName,
		LastName:  r.CustomerInfo.LastName,
		Email:     r.CustomerInfo.Email,
		Address:   r.CustomerInfo.Address,
	}
}

func (r createOrderRequest) lineItems() []domain.LineItem {
	items := make([]domain.LineItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = domain.LineItem{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			CategoryID:   it.CategoryID,
			CategoryName: it.CategoryName,
			Unit:         it.Unit,
			UnitPrice:    it.Price,
			Quantity:     it.Quantity,
		}
	}
	return items
}

type statusRequest struct {
	Status string `json:"status"`
}

type customerResponse struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Address   string `json:"address"`
}

type lineItemResponse struct {
	ProductID    int64   `json:"productId"`
	ProductName  string  `json:"productName"`
	CategoryID   int64   `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Unit         string  `json:"unit"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	TotalPrice   float64 `json:"totalPrice"`
}

type orderSummaryResponse struct {
	TotalItems  int     `json:"totalItems"`
	TotalAmount float64 `json:"totalAmount"`
	Currency    string  `json:"currency"`
}

type orderResponse struct {
	ID           string               `json:"id"`
	OrderNumber  string               `json:"orderNumber"`
	CustomerInfo customerResponse     `json:"customerInfo"`
	Items        []lineItemResponse   `json:"items"`
	OrderSummary orderSummaryResponse `json:"orderSummary"`
	Status       domain.OrderStatus   `json:"status"`
	OrderDate    time.Time            `json:"orderDate"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

type summaryResponse struct {
	OrderNumber  string             `json:"orderNumber"`
	CustomerName string             `json:"customerName"`
	TotalItems   int                `json:"totalItems"`
	TotalAmount  float64            `json:"totalAmount"`
	Status       domain.OrderStatus `json:"status"`
	OrderDate    time.Time          `json:"orderDate"`
}

type listedOrderResponse struct {
	ID string `json:"id"`
	summaryResponse
	CustomerEmail string `json:"customerEmail"`
}

type paginationResponse struct {
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalPages  int   `json:"totalPages"`
	TotalOrders int64 `json:"totalOrders"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

type orderListResponse struct {
	Orders     []listedOrderResponse `json:"orders"`
	Pagination paginationResponse    `json:"pagination"`
}

type createdOrderResponse struct {
	OrderID     string          `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	Summary     summaryResponse `json:"summary"`
}

type customerOrdersResponse struct {
	Email      string            `json:"email"`
	OrderCount int               `json:"orderCount"`
	Orders     []summaryResponse `json:"orders"`
}

type statusChangeResponse struct {
	summaryResponse
	PreviousStatus domain.OrderStatus `json:"previousStatus"`
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func toOrderResponse(o domain.Order) orderResponse {
	items := make([]lineItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = lineItemResponse{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			CategoryID:   it.CategoryID,
			CategoryName: it.CategoryName,
			Unit:         it.Unit,
			Price:        money(it.UnitPrice),
			Quantity:     it.Quantity,
			TotalPrice:   money(it.LineTotal),
		}
	}
	return orderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber(),
		CustomerInfo: customerResponse{
			FirstName: o.Customer.FirstName,
			LastName:  o.Customer.LastName,
			FullName:  o.Customer.FullName(),
			Email:     o.Customer.Email,
			Address:   o.Customer.Address,
		},
		Items: items,
		OrderSummary: orderSummaryResponse{
			TotalItems:  o.Summary.TotalItems,
			TotalAmount: money(o.Summary.TotalAmount),
			Currency:    o.Summary.Currency,
		},
		Status:    o.Status,
		OrderDate: o.OrderDate,
		UpdatedAt: o.UpdatedAt,
	}
}

func toSummaryResponse(v domain.SummaryView) summaryResponse {
	return summaryResponse{
		OrderNumber:  v.OrderNumber,
		CustomerName: v.CustomerFullName,
		TotalItems:   v.TotalItems,
		TotalAmount:  money(v.TotalAmount),
		Status:       v.Status,
		OrderDate:    v.OrderDate,
	}
}

func toOrderListResponse(page *queries.OrderPage) orderListResponse {
	orders := make([]listedOrderResponse, len(page.Orders))
	for i, o := range page.Orders {
		orders[i] = listedOrderResponse{
			ID:              o.ID,
			summaryResponse: toSummaryResponse(domain.Summarize(o)),
			CustomerEmail:   o.Customer.Email,
		}
	}
	return orderListResponse{
		Orders: orders,
		Pagination: paginationResponse{
			CurrentPage: page.CurrentPage,
			PageSize:    page.PageSize,
			TotalPages:  page.TotalPages,
			TotalOrders: page.TotalOrders,
			HasNextPage: page.HasNextPage,
			HasPrevPage: page.HasPrevPage,
		},
	}
}

func toCustomerOrdersResponse(result *queries.CustomerOrders) customerOrdersResponse {
	orders := make([]summaryResponse, len(result.Orders))
	for i, o := range result.Orders {
		orders[i] = toSummaryResponse(domain.Summarize(o))
	}
	return customerOrdersResponse{
		Email:      result.Email,
		OrderCount: len(orders),
		Orders:     orders,
	}
}

func toStatusChangeResponse(change *commands.StatusChange) statusChangeResponse {
	return statusChangeResponse{
		summaryResponse: toSummaryResponse(domain.Summarize(*change.Order)),
		PreviousStatus:  change.Previous,
	}
}
