package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// progression maps each non-terminal status to its position on the forward path.
var progression = map[OrderStatus]int{
	StatusPending:    0,
	StatusConfirmed:  1,
	StatusProcessing: 2,
	StatusShipped:    3,
	StatusDelivered:  4,
}

// Aggregator builds orders from submissions and applies status transitions.
// It holds no mutable state and is safe for concurrent use.
type Aggregator struct {
	now      func() time.Time
	currency string
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock overrides the time source used for order timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithCurrency sets the currency code stamped on new orders.
func WithCurrency(code string) Option {
	return func(a *Aggregator) {
		if code = strings.ToUpper(strings.TrimSpace(code)); len(code) == 3 {
			a.currency = code
		}
	}
}

// timestampPrecision is the coarsest precision among the stores; Mongo keeps
// milliseconds and Postgres microseconds.
const timestampPrecision = time.Millisecond

// NewAggregator returns an Aggregator using UTC wall-clock time and DefaultCurrency.
// Timestamps are truncated so a created order reads back unchanged from any store.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		now:      func() time.Time { return time.Now().UTC().Truncate(timestampPrecision) },
		currency: DefaultCurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Validate is a convenience for the package-level Validate.
func (a *Aggregator) Validate(customer CustomerInfo, items []LineItem) ValidationResult {
	return Validate(customer, items)
}

// BuildOrder constructs a pending order with server-computed totals. A
// submission that does not pass Validate yields ErrInvalidOrderData.
func (a *Aggregator) BuildOrder(customer CustomerInfo, items []LineItem) (Order, error) {
	if len(items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	if !Validate(customer, items).Valid() {
		return Order{}, ErrInvalidOrderData
	}

	lines := make([]LineItem, len(items))
	totalItems := 0
	sum := decimal.Zero
	for i, item := range items {
		item.ProductName = strings.TrimSpace(item.ProductName)
		item.CategoryName = strings.TrimSpace(item.CategoryName)
		item.Unit = strings.TrimSpace(item.Unit)
		if item.Unit == "" {
			item.Unit = DefaultUnit
		}
		item.LineTotal = LineTotal(item.UnitPrice, item.Quantity)

		totalItems += item.Quantity
		sum = sum.Add(item.LineTotal)
		lines[i] = item
	}

	now := a.now()
	return Order{
		Customer: customer.normalized(),
		Items:    lines,
		Summary: Summary{
			TotalItems:  totalItems,
			TotalAmount: Round2(sum),
			Currency:    a.currency,
		},
		Status:    StatusPending,
		OrderDate: now,
		UpdatedAt: now,
	}, nil
}

// Transition moves order to next. Forward moves must advance exactly one step;
// cancellation is allowed from any non-terminal status.
func (a *Aggregator) Transition(order Order, next OrderStatus) (Order, error) {
	if err := CheckTransition(order.Status, next); err != nil {
		return order, err
	}
	order.Status = next
	order.UpdatedAt = a.now()
	return order, nil
}

// CheckTransition reports whether from -> to is allowed by the lifecycle.
func CheckTransition(from, to OrderStatus) error {
	if !to.IsValid() || from.IsTerminal() {
		return &TransitionError{From: from, To: to}
	}
	if to == StatusCancelled {
		return nil
	}
	fromRank, ok := progression[from]
	if !ok {
		return &TransitionError{From: from, To: to}
	}
	if progression[to] != fromRank+1 {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

// Summarize is a convenience for the package-level Summarize.
func (a *Aggregator) Summarize(order Order) SummaryView {
	return Summarize(order)
}

// LineTotal is round2(price × quantity).
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return Round2(price.Mul(decimal.NewFromInt(int64(quantity))))
}

// Round2 rounds to two decimal places, halves away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
