package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/shopspring/decimal"
)

// lineItemRecord is one element of the items JSONB column. Money is stored as
// JSON numbers.
type lineItemRecord struct {
	ProductID    int64   `json:"productId"`
	ProductName  string  `json:"productName"`
	CategoryID   int64   `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Unit         string  `json:"unit"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	TotalPrice   float64 `json:"totalPrice"`
}

type summaryRecord struct {
	TotalItems  int     `json:"totalItems"`
	TotalAmount float64 `json:"totalAmount"`
	Currency    string  `json:"currency"`
}

type orderRow struct {
	ID           string
	CustomerInfo []byte
	Items        []byte
	OrderSummary []byte
	Status       string
	OrderDate    time.Time
	UpdatedAt    time.Time
}

func encodeOrder(order domain.Order) (customer, items, summary []byte, err error) {
	customer, err = json.Marshal(order.Customer)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode customer info: %w", err)
	}

	records := make([]lineItemRecord, len(order.Items))
	for i, item := range order.Items {
		records[i] = lineItemRecord{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			CategoryID:   item.CategoryID,
			CategoryName: item.CategoryName,
			Unit:         item.Unit,
			Price:        item.UnitPrice.InexactFloat64(),
			Quantity:     item.Quantity,
			TotalPrice:   item.LineTotal.InexactFloat64(),
		}
	}
	items, err = json.Marshal(records)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode items: %w", err)
	}

	summary, err = json.Marshal(summaryRecord{
		TotalItems:  order.Summary.TotalItems,
		TotalAmount: order.Summary.TotalAmount.InexactFloat64(),
		Currency:    order.Summary.Currency,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode order summary: %w", err)
	}

	return customer, items, summary, nil
}

func (r orderRow) toDomain() (domain.Order, error) {
	order := domain.Order{
		ID:        r.ID,
		Status:    domain.OrderStatus(r.Status),
		OrderDate: r.OrderDate.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}

	if err := json.Unmarshal(r.CustomerInfo, &order.Customer); err != nil {
		return domain.Order{}, fmt.Errorf("decode customer info: %w", err)
	}

	var items []lineItemRecord
	if err := json.Unmarshal(r.Items, &items); err != nil {
		return domain.Order{}, fmt.Errorf("decode items: %w", err)
	}
	order.Items = make([]domain.LineItem, len(items))
	for i, item := range items {
		order.Items[i] = domain.LineItem{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			CategoryID:   item.CategoryID,
			CategoryName: item.CategoryName,
			Unit:         item.Unit,
			UnitPrice:    decimal.NewFromFloat(item.Price),
			Quantity:     item.Quantity,
			LineTotal:    decimal.NewFromFloat(item.TotalPrice).Round(2),
		}
	}

	var summary summaryRecord
	if err := json.Unmarshal(r.OrderSummary, &summary); err != nil {
		return domain.Order{}, fmt.Errorf("decode order summary: %w", err)
	}
	order.Summary = domain.Summary{
		TotalItems:  summary.TotalItems,
		TotalAmount: decimal.NewFromFloat(summary.TotalAmount).Round(2),
		Currency:    summary.Currency,
	}

	return order, nil
}
