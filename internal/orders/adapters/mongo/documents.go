package mongo

import (
	"time"

	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type customerDocument struct {
	FirstName string `bson:"firstName"`
	LastName  string `bson:"lastName"`
	Email     string `bson:"email"`
	Address   string `bson:"address"`
}

type lineItemDocument struct {
	ProductID    int64   `bson:"productId"`
	ProductName  string  `bson:"productName"`
	CategoryID   int64   `bson:"categoryId"`
	CategoryName string  `bson:"categoryName"`
	Unit         string  `bson:"unit"`
	Price        float64 `bson:"price"`
	Quantity     int     `bson:"quantity"`
	TotalPrice   float64 `bson:"totalPrice"`
}

type summaryDocument struct {
	TotalItems  int     `bson:"totalItems"`
	TotalAmount float64 `bson:"totalAmount"`
	Currency    string  `bson:"currency"`
}

type orderDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	CustomerInfo customerDocument   `bson:"customerInfo"`
	Items        []lineItemDocument `bson:"items"`
	OrderSummary summaryDocument    `bson:"orderSummary"`
	Status       string             `bson:"status"`
	OrderDate    time.Time          `bson:"orderDate"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func toDocument(order domain.Order) orderDocument {
	items := make([]lineItemDocument, len(order.Items))
	for i, item := range order.Items {
		items[i] = lineItemDocument{
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

	return orderDocument{
		CustomerInfo: customerDocument{
			FirstName: order.Customer.FirstName,
			LastName:  order.Customer.LastName,
			Email:     order.Customer.Email,
			Address:   order.Customer.Address,
		},
		Items: items,
		OrderSummary: summaryDocument{
			TotalItems:  order.Summary.TotalItems,
			TotalAmount: order.Summary.TotalAmount.InexactFloat64(),
			Currency:    order.Summary.Currency,
		},
		Status:    string(order.Status),
		OrderDate: order.OrderDate,
		UpdatedAt: order.UpdatedAt,
	}
}

func (d orderDocument) toDomain() domain.Order {
	items := make([]domain.LineItem, len(d.Items))
	for i, item := range d.Items {
		items[i] = domain.LineItem{
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

	return domain.Order{
		ID: d.ID.Hex(),
		Customer: domain.CustomerInfo{
			FirstName: d.CustomerInfo.FirstName,
			LastName:  d.CustomerInfo.LastName,
			Email:     d.CustomerInfo.Email,
			Address:   d.CustomerInfo.Address,
		},
		Items: items,
		Summary: domain.Summary{
			TotalItems:  d.OrderSummary.TotalItems,
			TotalAmount: decimal.NewFromFloat(d.OrderSummary.TotalAmount).Round(2),
			Currency:    d.OrderSummary.Currency,
		},
		Status:    domain.OrderStatus(d.Status),
		OrderDate: d.OrderDate.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}
