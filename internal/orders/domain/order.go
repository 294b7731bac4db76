package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus captures the lifecycle of an order in the system.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

const (
	// DefaultUnit is applied to line items submitted without a unit.
	DefaultUnit = "יח׳"
	// DefaultCurrency is the ISO code stamped on new order summaries.
	DefaultCurrency = "ILS"

	orderNumberPrefix = "ORD-"
	orderNumberLength = 8
)

// Statuses lists every known status in lifecycle order, cancelled last.
func Statuses() []OrderStatus {
	return []OrderStatus{
		StatusPending,
		StatusConfirmed,
		StatusProcessing,
		StatusShipped,
		StatusDelivered,
		StatusCancelled,
	}
}

// IsValid reports whether s is a member of the status enum.
func (s OrderStatus) IsValid() bool {
	_, ok := progression[s]
	return ok || s == StatusCancelled
}

// IsTerminal reports whether no transition may leave s.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCancelled
}

// CustomerInfo identifies the person placing the order.
type CustomerInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Address   string `json:"address"`
}

// FullName joins first and last name. It is never stored.
func (c CustomerInfo) FullName() string {
	return c.FirstName + " " + c.LastName
}

func (c CustomerInfo) normalized() CustomerInfo {
	return CustomerInfo{
		FirstName: strings.TrimSpace(c.FirstName),
		LastName:  strings.TrimSpace(c.LastName),
		Email:     strings.ToLower(strings.TrimSpace(c.Email)),
		Address:   strings.TrimSpace(c.Address),
	}
}

// LineItem is a single product entry of an order.
type LineItem struct {
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	CategoryID   int64           `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Unit         string          `json:"unit"`
	UnitPrice    decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	LineTotal    decimal.Decimal `json:"totalPrice"`
}

// Summary holds the aggregate figures derived from the line items.
type Summary struct {
	TotalItems  int             `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Currency    string          `json:"currency"`
}

// Order is a customer purchase as owned by the aggregator until it is persisted.
type Order struct {
	ID        string       `json:"id"`
	Customer  CustomerInfo `json:"customerInfo"`
	Items     []LineItem   `json:"items"`
	Summary   Summary      `json:"orderSummary"`
	Status    OrderStatus  `json:"status"`
	OrderDate time.Time    `json:"orderDate"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// OrderNumber is the display number derived from the identifier, empty until one is assigned.
func (o Order) OrderNumber() string {
	return OrderNumber(o.ID)
}

// IsTerminal indicates whether the order is in a terminal state.
func (o Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// OrderNumber formats id as "ORD-" followed by its last eight characters, uppercased.
func OrderNumber(id string) string {
	if id == "" {
		return ""
	}
	if len(id) > orderNumberLength {
		id = id[len(id)-orderNumberLength:]
	}
	return orderNumberPrefix + strings.ToUpper(id)
}

// SummaryView is the read-only projection returned by list and lookup endpoints.
type SummaryView struct {
	OrderNumber      string          `json:"orderNumber"`
	CustomerFullName string          `json:"customerName"`
	TotalItems       int             `json:"totalItems"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	Status           OrderStatus     `json:"status"`
	OrderDate        time.Time       `json:"orderDate"`
}

// Summarize projects an order to its summary view without recomputing totals.
func Summarize(order Order) SummaryView {
	return SummaryView{
		OrderNumber:      order.OrderNumber(),
		CustomerFullName: order.Customer.FullName(),
		TotalItems:       order.Summary.TotalItems,
		TotalAmount:      order.Summary.TotalAmount,
		Status:           order.Status,
		OrderDate:        order.OrderDate,
	}
}
