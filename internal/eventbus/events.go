package eventbus

import (
	"time"

	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/google/uuid"
)

const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
)

// Event is the envelope every lifecycle message is published in.
type Event struct {
	ID         string    `json:"id"`
	Topic      string    `json:"topic"`
	OccurredAt time.Time `json:"occurredAt"`
	OrderID    string    `json:"orderId"`
	Payload    any       `json:"payload"`
}

type orderCreatedPayload struct {
	OrderNumber   string `json:"orderNumber"`
	CustomerEmail string `json:"customerEmail"`
	TotalItems    int    `json:"totalItems"`
	TotalAmount   string `json:"totalAmount"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
}

type statusChangedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func newEvent(topic, orderID string, occurredAt time.Time, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Topic:      topic,
		OccurredAt: occurredAt,
		OrderID:    orderID,
		Payload:    payload,
	}
}

// OrderCreated builds the event announcing a newly stored order.
func OrderCreated(order domain.Order, occurredAt time.Time) Event {
	return newEvent(TopicOrderCreated, order.ID, occurredAt, orderCreatedPayload{
		OrderNumber:   order.OrderNumber(),
		CustomerEmail: order.Customer.Email,
		TotalItems:    order.Summary.TotalItems,
		TotalAmount:   order.Summary.TotalAmount.StringFixed(2),
		Currency:      order.Summary.Currency,
		Status:        string(order.Status),
	})
}

// OrderStatusChanged builds the event for an applied status transition.
func OrderStatusChanged(orderID string, from, to domain.OrderStatus, occurredAt time.Time) Event {
	return newEvent(TopicOrderStatusChanged, orderID, occurredAt, statusChangedPayload{
		From: string(from),
		To:   string(to),
	})
}
